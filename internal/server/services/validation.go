package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/dmitrijs2005/textify/internal/common"
	"github.com/dmitrijs2005/textify/internal/server/models"
	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validate runs struct validation and turns the first failure into a
// client-facing common.ErrorValidation.
func validate(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return common.Validation(fmt.Sprintf("%s is required", fe.Field()))
	case "min":
		if fe.Param() == "1" {
			return common.Validation(fmt.Sprintf("%s must not be empty", fe.Field()))
		}
		return common.Validation(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
	case "max":
		return common.Validation(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	case "email":
		return common.Validation(fmt.Sprintf("%s must be a valid email address", fe.Field()))
	default:
		return common.Validation(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}

// checkPatch rejects keys listed in readOnly (with the message registered for
// them, or a generic one) and keys missing from writable. Keys are visited
// in sorted order so the reported field is stable.
func checkPatch(p models.Patch, readOnly map[string]string, writable ...string) error {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if msg, ok := readOnly[k]; ok {
			if msg == "" {
				msg = fmt.Sprintf("Field '%s' cannot be updated", k)
			}
			return common.Validation(msg)
		}
	}
	for _, k := range keys {
		if !slices.Contains(writable, k) {
			return common.Validation(fmt.Sprintf("Unknown field '%s'", k))
		}
	}
	return nil
}

// patchString decodes a string member of p. Absent keys yield nil.
func patchString(p models.Patch, key string) (*string, error) {
	raw, ok := p[key]
	if !ok {
		return nil, nil
	}
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return nil, common.Validation(fmt.Sprintf("%s must be a string", key))
	}
	return &s, nil
}

// patchObject decodes a JSON object member of p. Absent keys yield nil.
func patchObject(p models.Patch, key string) (map[string]any, error) {
	raw, ok := p[key]
	if !ok {
		return nil, nil
	}
	var m map[string]any
	if isNull(raw) || json.Unmarshal(raw, &m) != nil {
		return nil, common.Validation(fmt.Sprintf("%s must be an object", key))
	}
	return m, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// sameJSON compares two values by their canonical JSON encoding, which sorts
// object keys.
func sameJSON(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}
