// Package storage はアップロード画像のローカルディスク保存を提供する。
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	// DefaultDir は画像の保存先ディレクトリ。
	DefaultDir = "uploads/images"
	// DefaultMaxBytes は1ファイルあたりの最大サイズ。
	DefaultMaxBytes int64 = 500000
)

var (
	// ErrTooLarge はファイルサイズが上限を超えたことを表す。
	ErrTooLarge = errors.New("storage: image exceeds size limit")
	// ErrUnsupportedType は許可されていない画像形式であることを表す。
	ErrUnsupportedType = errors.New("storage: unsupported image type")
	// ErrOutsideDir は保存先ディレクトリ外のパスが指定されたことを表す。
	ErrOutsideDir = errors.New("storage: path outside image directory")
)

// allowedTypes は検出されたMIMEタイプと保存時の拡張子の対応。
var allowedTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// StoredFile は保存済み画像ファイルの情報。
type StoredFile struct {
	Path    string
	ModTime time.Time
}

// ImageStore はアップロード画像をディレクトリに保存する。
type ImageStore struct {
	dir      string
	maxBytes int64
}

// NewImageStore はImageStoreを生成する。保存先ディレクトリが存在しない場合は作成する。
func NewImageStore(dir string, maxBytes int64) (*ImageStore, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &ImageStore{dir: filepath.Clean(dir), maxBytes: maxBytes}, nil
}

// Dir は保存先ディレクトリを返す。
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save は画像を検証して保存し、保存先パスを返す。
// 形式はファイル名ではなく内容から判定する。
func (s *ImageStore) Save(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	ext, ok := allowedTypes[mimetype.Detect(data).String()]
	if !ok {
		return "", ErrUnsupportedType
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close image: %w", err)
	}

	path := filepath.Join(s.dir, uuid.New().String()+"."+ext)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return filepath.ToSlash(path), nil
}

// Remove は保存済み画像を削除する。保存先ディレクトリ外のパスは拒否する。
func (s *ImageStore) Remove(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

// List は保存先ディレクトリ直下の画像ファイルを返す。一時ファイルは含めない。
func (s *ImageStore) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	files := make([]StoredFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat image: %w", err)
		}
		files = append(files, StoredFile{
			Path:    filepath.ToSlash(filepath.Join(s.dir, e.Name())),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// resolve はパスが保存先ディレクトリ直下のファイルを指すことを確認する。
func (s *ImageStore) resolve(path string) (string, error) {
	full := filepath.Clean(filepath.FromSlash(path))
	if filepath.Dir(full) != s.dir {
		return "", fmt.Errorf("%w: %s", ErrOutsideDir, path)
	}
	return full, nil
}
