package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/placeshare/internal/model"
	"github.com/hitoshi/placeshare/internal/storage"
)

const (
	// multipartMemory はParseMultipartFormでメモリに保持する上限。超過分は一時ファイルになる。
	multipartMemory = 1 << 20
	// multipartOverhead は画像以外のフィールドと境界文字列に見込むバイト数。
	multipartOverhead = 64 << 10
	// imageField は画像ファイルのフォームフィールド名。
	imageField = "image"
)

const (
	msgInvalidImageType = "Invalid image type, only png, jpeg and jpg are allowed."
	msgImageTooLarge    = "Image is too large."
)

// ImageStore はアップロード画像の保存と削除のインターフェース。
type ImageStore interface {
	Save(ctx context.Context, r io.Reader) (string, error)
	Remove(path string) error
}

// uploadForm は解析済みのmultipartフォーム。
type uploadForm struct {
	values    map[string]string
	imagePath string
}

func (f *uploadForm) value(key string) string {
	return f.values[key]
}

// parseUploadForm はmultipartフォームを解析し、画像を保存する。
// 画像フィールドがない場合はimagePathが空になる。
// テキストフィールドは各キーの最初の値のみ使う。
func parseUploadForm(r *http.Request, w http.ResponseWriter, store ImageStore, maxImageBytes int64) (*uploadForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, model.NewValidationError(msgImageTooLarge)
		}
		return nil, model.NewInvalidInputsError(err)
	}
	defer r.MultipartForm.RemoveAll()

	form := &uploadForm{values: make(map[string]string, len(r.MultipartForm.Value))}
	for key, vals := range r.MultipartForm.Value {
		if len(vals) > 0 {
			form.values[key] = vals[0]
		}
	}

	file, _, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil
	}
	if err != nil {
		return nil, model.NewInvalidInputsError(err)
	}
	defer file.Close()

	path, err := store.Save(r.Context(), file)
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return nil, model.NewValidationError(msgInvalidImageType)
	case errors.Is(err, storage.ErrTooLarge):
		return nil, model.NewValidationError(msgImageTooLarge)
	case err != nil:
		return nil, model.NewInternalError(model.DefaultErrorMessage, err)
	}
	form.imagePath = path

	return form, nil
}

// discardUpload はリクエストが失敗した場合に保存済みの画像を削除する。
func discardUpload(ctx context.Context, store ImageStore, form *uploadForm) {
	if form == nil || form.imagePath == "" {
		return
	}
	if err := store.Remove(form.imagePath); err != nil {
		slog.WarnContext(ctx, "failed to remove uploaded image",
			slog.String("path", form.imagePath),
			slog.String("error", err.Error()),
		)
	}
}
