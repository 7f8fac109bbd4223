package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dom/videotube-backend/internal/apperr"
	"github.com/dom/videotube-backend/internal/media"
)

var errBodyTooLarge = &apperr.Error{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large"}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v untouched
// when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && allowEmpty:
		return nil
	case isTooLarge(err):
		return errBodyTooLarge
	default:
		return apperr.Validation("Invalid request body")
	}
}

// parseMultipart bounds the whole request at limit bytes and keeps at most
// memory bytes of file data in RAM.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit, memory int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(memory); err != nil {
		if isTooLarge(err) {
			return errBodyTooLarge
		}
		return apperr.Validation("Invalid multipart form")
	}
	return nil
}

// stageUpload copies the named form file into dir. A missing file yields "".
func stageUpload(r *http.Request, dir, field string) (string, error) {
	fh := formFile(r.MultipartForm, field)
	if fh == nil {
		return "", nil
	}
	path, err := media.Stage(dir, field, fh)
	if err != nil {
		return "", apperr.Internal("Error saving upload", err)
	}
	return path, nil
}

func formFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	files := form.File[field]
	if len(files) == 0 || files[0].Size == 0 {
		return nil
	}
	return files[0]
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
