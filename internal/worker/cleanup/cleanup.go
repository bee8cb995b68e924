// Package cleanup は参照されなくなったアップロード画像の削除ジョブを提供する。
// Place削除後の画像削除はベストエフォートのため、取り残されたファイルを
// 運用コマンドから一括で削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/hitoshi/placeshare/internal/metrics"
	"github.com/hitoshi/placeshare/internal/storage"
)

// DefaultGracePeriod は削除対象とするまでの猶予期間。
// 作成処理中でまだDBに記録されていない画像を消さないために設ける。
const DefaultGracePeriod = 24 * time.Hour

// ImageStore は保存済み画像の列挙と削除を抽象化するインターフェース。
type ImageStore interface {
	List() ([]storage.StoredFile, error)
	Remove(path string) error
}

// ReferenceLister はDBが参照している画像パスを返すインターフェース。
type ReferenceLister interface {
	ListImagePaths(ctx context.Context) ([]string, error)
}

// Result はスイープ1回分の結果。
type Result struct {
	Scanned int
	Removed int
	Failed  int
}

// SweepJob はどのユーザー・Placeからも参照されていない画像を削除するジョブ。
// 何度実行しても同じ結果になる。
type SweepJob struct {
	images      ImageStore
	refs        ReferenceLister
	collector   metrics.MetricsCollector
	logger      *slog.Logger
	GracePeriod time.Duration
	now         func() time.Time
}

// NewSweepJob は新しいSweepJobを生成する。
func NewSweepJob(images ImageStore, refs ReferenceLister, collector metrics.MetricsCollector, logger *slog.Logger) *SweepJob {
	if collector == nil {
		collector = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepJob{
		images:      images,
		refs:        refs,
		collector:   collector,
		logger:      logger,
		GracePeriod: DefaultGracePeriod,
		now:         time.Now,
	}
}

// Run は参照されておらず猶予期間を過ぎた画像を削除する。
// 個々のファイルの削除失敗はログに記録して処理を続ける。
func (j *SweepJob) Run(ctx context.Context) (Result, error) {
	start := j.now()
	var res Result

	paths, err := j.refs.ListImagePaths(ctx)
	if err != nil {
		j.logger.Error("参照画像の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return res, fmt.Errorf("参照画像の取得に失敗: %w", err)
	}

	// 保存先ディレクトリの設定が変わってもファイル名で照合できるようにする
	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[path.Base(p)] = struct{}{}
	}

	files, err := j.images.List()
	if err != nil {
		j.logger.Error("画像一覧の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return res, fmt.Errorf("画像一覧の取得に失敗: %w", err)
	}

	cutoff := start.Add(-j.GracePeriod)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Scanned++

		if _, ok := referenced[path.Base(f.Path)]; ok {
			continue
		}
		if f.ModTime.After(cutoff) {
			continue
		}

		if err := j.images.Remove(f.Path); err != nil {
			res.Failed++
			j.logger.Warn("画像の削除に失敗しました",
				slog.String("path", f.Path),
				slog.String("error", err.Error()),
			)
			continue
		}
		res.Removed++
	}

	j.collector.RecordImagesSwept(res.Removed)

	j.logger.Info("画像スイープジョブが完了しました",
		slog.Int("scanned", res.Scanned),
		slog.Int("removed_count", res.Removed),
		slog.Int("failed_count", res.Failed),
		slog.Duration("grace_period", j.GracePeriod),
		slog.Float64("duration_ms", float64(j.now().Sub(start).Milliseconds())),
	)

	return res, nil
}
