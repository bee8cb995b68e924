// Package geocode は住所から座標を解決するジオコーディングAPIクライアントを提供する。
package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hitoshi/placeshare/internal/metrics"
	"github.com/hitoshi/placeshare/internal/model"
)

const (
	// DefaultEndpoint はGoogle Geocoding APIのエンドポイント。
	DefaultEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"
	// maxResponseBytes はレスポンスボディの読み取り上限。
	maxResponseBytes = 1 << 20
)

// 失敗理由のメトリクスラベル。
const (
	reasonNoMatch  = "no_match"
	reasonProvider = "provider"
)

// ErrNoMatch は住所に一致する地点が見つからなかったことを表す。
var ErrNoMatch = errors.New("geocode: no match for address")

// Config はクライアントの設定。
type Config struct {
	Endpoint string
	APIKey   string
}

// Client はジオコーディングAPIのクライアント。
// リトライは行わず、タイムアウトはhttpClient側で設定する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
	endpoint   string
	apiKey     string
}

// NewClient はClientの新しいインスタンスを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewClient(httpClient *http.Client, logger *slog.Logger, cfg Config, collector metrics.MetricsCollector) *Client {
	if collector == nil {
		collector = metrics.Nop{}
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		metrics:    collector,
		endpoint:   endpoint,
		apiKey:     cfg.APIKey,
	}
}

// Resolve は住所を座標に変換する。
// 一致する地点がない場合はErrNoMatchを返す。それ以外の失敗はプロバイダーエラーとして返す。
func (c *Client) Resolve(ctx context.Context, address string) (model.Location, error) {
	start := time.Now()
	loc, err := c.resolve(ctx, address)
	c.metrics.RecordGeocodeLatency(time.Since(start))

	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			c.metrics.RecordGeocodeFailure(reasonNoMatch)
		} else {
			c.metrics.RecordGeocodeFailure(reasonProvider)
			c.logger.Error("ジオコーディングに失敗しました",
				slog.String("error", err.Error()),
			)
		}
		return model.Location{}, err
	}
	return loc, nil
}

func (c *Client) resolve(ctx context.Context, address string) (model.Location, error) {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return model.Location{}, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}
	q := reqURL.Query()
	q.Set("address", address)
	q.Set("key", c.apiKey)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return model.Location{}, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// APIキーを含むURLをログに出さないため、url.Errorからはラップ元のみ取り出す
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return model.Location{}, fmt.Errorf("ジオコーディングAPIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Location{}, fmt.Errorf("ジオコーディングAPIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.Location{}, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	return parseLocation(body)
}

// parseLocation はGeocoding APIのレスポンスから先頭候補の座標を取り出す。
func parseLocation(body []byte) (model.Location, error) {
	if !gjson.ValidBytes(body) {
		return model.Location{}, fmt.Errorf("レスポンスJSONが不正です")
	}

	fields := gjson.GetManyBytes(body,
		"status",
		"results.0.geometry.location.lat",
		"results.0.geometry.location.lng",
	)
	status, lat, lng := fields[0], fields[1], fields[2]

	switch status.String() {
	case "OK":
	case "ZERO_RESULTS":
		return model.Location{}, ErrNoMatch
	default:
		return model.Location{}, fmt.Errorf("ジオコーディングAPIがstatus %q を返しました", status.String())
	}

	if lat.Type != gjson.Number || lng.Type != gjson.Number {
		return model.Location{}, fmt.Errorf("レスポンスに座標が含まれていません")
	}

	return model.Location{Lat: lat.Float(), Lng: lng.Float()}, nil
}
