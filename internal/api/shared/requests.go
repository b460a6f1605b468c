package shared

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate is the shared struct-tag validator for request models. A
// validator.Validate caches struct metadata and is safe for concurrent use,
// so one instance serves every handler.
var validate = validator.New()

// DecodeJSON decodes the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// ValidateRequest validates a decoded request model. Models that carry
// their own Validate method are checked with it; everything else goes
// through the struct-tag validator.
func ValidateRequest(req any) error {
	if v, ok := req.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return validate.Struct(req)
}
