package common

import (
	"encoding/json"
	"go-auth-api/logger"
	"net/http"

	"github.com/sirupsen/logrus"
)

// AppError is the structured error body returned to clients on any
// authentication, authorization or processing failure.
type AppError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Path    string `json:"path"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// Send writes the error as a JSON response. The request is used only to
// stamp the path field; internal error detail is logged, never echoed.
func (e *AppError) Send(w http.ResponseWriter, r *http.Request) {
	if r != nil {
		e.Path = r.URL.Path
	}

	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status":         e.Status,
			"path":           e.Path,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(e)
}
