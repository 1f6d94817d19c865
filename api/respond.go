package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/garnizeh/frota/internal/apperr"
	"github.com/garnizeh/frota/internal/imagestore"
	"github.com/garnizeh/frota/internal/validate"
	"github.com/garnizeh/frota/pkg/models"
)

const maxBodyBytes = 1 << 20

// boolFields are multipart values that arrive as text but are booleans in
// the JSON schemas.
var boolFields = map[string]bool{"active": true, "unassignVehicle": true}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindBadRequest:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// writeError is the single place where errors become responses.
// Unclassified errors are logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind == apperr.KindInternal {
		logger.Error("request failed", zap.Error(err))
		writeJSON(w, errorBody{Error: "internal server error"}, http.StatusInternalServerError)
		return
	}
	writeJSON(w, errorBody{Error: ae.Message, Field: ae.Field}, statusFor(ae.Kind))
}

// binder validates request bodies against their schema before decoding.
type binder struct {
	schemas *validate.Registry
}

func (b binder) bind(r *http.Request, op string, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperr.BadRequest("failed to read body")
	}
	return b.decode(r, op, body, v)
}

func (b binder) decode(r *http.Request, op string, body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if b.schemas != nil {
		if err := b.schemas.Validate(r.Context(), op, body); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.BadRequest("invalid json body")
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// bindWithPhoto accepts either a JSON body or a multipart form whose text
// fields mirror the JSON body and whose optional "file" part is a photo.
func (b binder) bindWithPhoto(r *http.Request, op string, v any) ([]byte, error) {
	if !isMultipart(r) {
		return nil, b.bind(r, op, v)
	}

	if err := r.ParseMultipartForm(imagestore.MaxImageSize + maxBodyBytes); err != nil {
		return nil, apperr.BadRequest("invalid multipart body")
	}
	fields := make(map[string]any, len(r.MultipartForm.Value))
	for k, vals := range r.MultipartForm.Value {
		if len(vals) == 0 {
			continue
		}
		if boolFields[k] {
			flag, err := cast.ToBoolE(vals[0])
			if err != nil {
				return nil, apperr.InvalidField(k, k+" must be a boolean")
			}
			fields[k] = flag
			continue
		}
		fields[k] = vals[0]
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if err := b.decode(r, op, body, v); err != nil {
		return nil, err
	}

	file, _, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.InvalidField("file", "invalid file part")
	}
	defer file.Close()

	photo, err := io.ReadAll(io.LimitReader(file, imagestore.MaxImageSize+1))
	if err != nil {
		return nil, apperr.InvalidField("file", "failed to read file")
	}
	if len(photo) > imagestore.MaxImageSize {
		return nil, apperr.InvalidField("file", "file is too large")
	}
	return photo, nil
}

// pageParams reads ?page= and ?limit=; garbage falls back to defaults.
func pageParams(r *http.Request) models.PageParams {
	q := r.URL.Query()
	return models.PageParams{
		Page:  cast.ToInt(q.Get("page")),
		Limit: cast.ToInt(q.Get("limit")),
	}.Normalize()
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := cast.ToTimeE(*s)
	if err != nil {
		return nil, apperr.InvalidField(field, field+" must be a date")
	}
	t = t.UTC()
	return &t, nil
}
