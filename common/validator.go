package common

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateAndDecode decodes the request body into payload and runs the
// struct validation tags. On failure it writes a 400 and returns false.
func ValidateAndDecode(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		NewAppError(http.StatusBadRequest, "Invalid request body", err).Send(w, r)
		return false
	}

	if err := validate.Struct(payload); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		NewAppError(http.StatusBadRequest, validationErrors.Error(), nil).Send(w, r)
		return false
	}

	return true
}
