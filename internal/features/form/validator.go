package form

import (
	"context"
	"fmt"
	"time"

	"go-formflow/internal/apperrors"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// dateLayouts accepted for date fields, tried in order.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ValidateValues checks submitted values against the form's field
// definitions: required presence, per-type shape, option membership
// and custom validation expressions. Unknown field ids are rejected.
func ValidateValues(ctx context.Context, f *Form, values map[string]interface{}) error {
	var bad []string

	for key := range values {
		if _, ok := f.FieldByID(key); !ok {
			bad = append(bad, key)
		}
	}
	if len(bad) > 0 {
		return apperrors.NewValidation("unknown form fields", bad...)
	}

	for i := range f.Fields {
		field := &f.Fields[i]
		value, present := values[field.ID]

		if !present || isEmpty(value) {
			if field.Required {
				return apperrors.NewValidation(fmt.Sprintf("field %q is required", field.Label), field.ID)
			}
			continue
		}

		if err := checkType(field, value); err != nil {
			return err
		}
		if field.Validation != "" {
			if err := runValidationRule(ctx, field, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

func checkType(field *Field, value interface{}) error {
	switch field.Type {
	case FieldTypeText, FieldTypeTextarea, FieldTypeFile:
		if _, ok := value.(string); !ok {
			return apperrors.NewValidation(fmt.Sprintf("field %q expects text", field.Label), field.ID)
		}
	case FieldTypeNumber:
		switch value.(type) {
		case float64, int, int64:
		default:
			return apperrors.NewValidation(fmt.Sprintf("field %q expects a number", field.Label), field.ID)
		}
	case FieldTypeCheckbox:
		if _, ok := value.(bool); !ok {
			return apperrors.NewValidation(fmt.Sprintf("field %q expects a boolean", field.Label), field.ID)
		}
	case FieldTypeDate:
		s, ok := value.(string)
		if !ok {
			return apperrors.NewValidation(fmt.Sprintf("field %q expects a date string", field.Label), field.ID)
		}
		if !parseableDate(s) {
			return apperrors.NewValidation(fmt.Sprintf("field %q has an unparseable date", field.Label), field.ID)
		}
	case FieldTypeSelect, FieldTypeRadio:
		s, ok := value.(string)
		if !ok {
			return apperrors.NewValidation(fmt.Sprintf("field %q expects a string option", field.Label), field.ID)
		}
		if !contains(field.Options, s) {
			return apperrors.NewValidation(fmt.Sprintf("field %q value is not an allowed option", field.Label), field.ID)
		}
	default:
		return apperrors.NewValidation(fmt.Sprintf("field %q has unsupported type %q", field.Label, field.Type), field.ID)
	}
	return nil
}

func parseableDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func contains(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

// runValidationRule evaluates the field's expression with the
// submitted value bound to `value`. The expression must produce a
// boolean named result; anything else is treated as a broken rule.
func runValidationRule(ctx context.Context, field *Field, value interface{}) error {
	script := tengo.NewScript([]byte("ok := " + field.Validation))
	script.SetImports(stdlib.GetModuleMap("text", "math", "times"))

	if err := script.Add("value", value); err != nil {
		return apperrors.NewValidation(fmt.Sprintf("field %q validation rule rejects this value type", field.Label), field.ID)
	}

	compiled, err := script.Compile()
	if err != nil {
		return apperrors.NewValidation(fmt.Sprintf("field %q has a broken validation rule", field.Label), field.ID)
	}
	if err := compiled.RunContext(ctx); err != nil {
		return apperrors.NewValidation(fmt.Sprintf("field %q validation rule failed to run", field.Label), field.ID)
	}

	result := compiled.Get("ok")
	if result.ValueType() != "bool" {
		return apperrors.NewValidation(fmt.Sprintf("field %q validation rule must yield a boolean", field.Label), field.ID)
	}
	if !result.Bool() {
		return apperrors.NewValidation(fmt.Sprintf("field %q value failed validation", field.Label), field.ID)
	}
	return nil
}
