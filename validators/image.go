package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

var (
	ErrNoImage              = errors.New("no image provided")
	ErrImageTooLarge        = errors.New("image too large")
	ErrImageNameTooLong     = errors.New("image name is too long")
	ErrImageTypeUnsupported = errors.New("unsupported image type")
)

const maxImageNameSize = 200

// ImageValidator checks the uploaded photo before anything is written to
// storage. The declared Content-Type header is checked first because it's
// cheap, then the actual bytes are sniffed
func ImageValidator(fh *multipart.FileHeader) (int, multipart.File, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoImage
	}

	ct := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		return http.StatusBadRequest, nil, ErrImageTypeUnsupported
	}

	if len(fh.Filename) > maxImageNameSize {
		return http.StatusBadRequest, nil, ErrImageNameTooLong
	}

	if fh.Size > viper.GetInt64("upload.max_size") {
		return http.StatusRequestEntityTooLarge, nil, ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, err
	}

	if !strings.HasPrefix(mt.String(), "image/") {
		f.Close()
		return http.StatusBadRequest, nil, ErrImageTypeUnsupported
	}

	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, err
	}

	return http.StatusOK, f, nil
}
