// internal/validation/submission.go
//
// Package validation checks citizen submissions before they reach the
// store. The shape rules live in a JSON schema; validation failures come
// back as a single StandardError listing every failing field.
package validation

import (
	"encoding/json"
	"fmt"

	"clearance-portal/internal/common/errors"
	"clearance-portal/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

var submissionSchema = map[string]interface{}{
	"type": "object",
	"required": []interface{}{
		"fullName", "idNumber", "phoneNumber",
		"propertyAddress", "standNumber", "propertyType", "reason",
	},
	"properties": map[string]interface{}{
		"fullName": map[string]interface{}{
			"type":      "string",
			"minLength": 2,
			"maxLength": 200,
		},
		"idNumber": map[string]interface{}{
			"type":      "string",
			"minLength": 5,
			"maxLength": 40,
		},
		"phoneNumber": map[string]interface{}{
			"type":    "string",
			"pattern": `^\+?[0-9][0-9 \-]{6,19}$`,
		},
		"email": map[string]interface{}{
			"type":    "string",
			"pattern": `^[^@\s]+@[^@\s]+\.[^@\s]+$`,
		},
		"propertyAddress": map[string]interface{}{
			"type":      "string",
			"minLength": 3,
			"maxLength": 500,
		},
		"standNumber": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 60,
		},
		"propertyType": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"residential", "commercial", "industrial", "agricultural"},
		},
		"reason": map[string]interface{}{
			"type":      "string",
			"minLength": 3,
			"maxLength": 500,
		},
		"documents": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"uploadedDocuments": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
}

// ValidateSubmission checks a new clearance submission against the portal
// schema. Returns nil when the submission is acceptable.
func ValidateSubmission(input *models.ApplicationInput) error {
	// Round-trip through JSON so the schema sees exactly what the wire
	// format carries (omitempty drops the blank optional fields).
	raw, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode submission: %w", err)
	}

	schemaLoader := gojsonschema.NewGoLoader(submissionSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return errors.NewValidationFailedError(errs)
	}

	return nil
}
