package action

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// normalizer is implemented by configs that clean up input before validation.
type normalizer interface {
	normalize()
}

// decodeConfig turns the free-form action config into T: defaults first, then
// the rule's values, then validation.
func decodeConfig[T any](raw map[string]any) (*T, error) {
	cfg := new(T)
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if n, ok := any(cfg).(normalizer); ok {
		n.normalize()
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, validationError(err)
	}
	return cfg, nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Field()+": "+formatError(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field missing"
	case "oneof":
		return fmt.Sprintf("invalid value: %v", fe.Value())
	case "url", "http_url":
		return "must be a valid URL"
	case "uuid":
		return "must be a UUID"
	}
	return fe.Error()
}
