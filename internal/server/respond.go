package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/desertthunder/mediatrack/internal/shared"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const conflictMessage = "User with this email already exists"

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// decode reads a JSON body into dst and validates it.
// All failures wrap [shared.ErrInvalidInput].
func decode(r *http.Request, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s is %s", fe.Field(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", shared.ErrInvalidInput, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	return nil
}

// fail maps a storage or decoding error onto a response.
//
// notFound is the 404 message for this endpoint; fallback is the 500 message, logged with the cause.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, notFound, fallback string) {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid request body: "+strings.TrimPrefix(err.Error(), shared.ErrInvalidInput.Error()+": "))
	case errors.Is(err, shared.ErrNotFound) && notFound != "":
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, shared.ErrConflict):
		writeError(w, http.StatusConflict, conflictMessage)
	default:
		requestLogger(r, s.logger).Error(fallback, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
