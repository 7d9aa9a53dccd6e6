package providers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// OptionError reports a problem with a single section option.
type OptionError struct {
	Option string
	Err    error
}

func (e *OptionError) Error() string {
	if e.Option == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("option %q: %v", e.Option, e.Err)
}

func (e *OptionError) Unwrap() error {
	return e.Err
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report option names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("option"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeOptions fills out (a pointer to a typed config struct) from raw
// section options and validates the result. Unknown options are rejected.
func decodeOptions(opts Options, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "option",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("building options decoder: %w", err)
	}

	raw := make(map[string]string, len(opts))
	for k, v := range opts {
		raw[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	if err := dec.Decode(raw); err != nil {
		return &OptionError{Err: fmt.Errorf("%w: %v", ErrInvalidOption, err)}
	}

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &OptionError{
				Option: fe.Field(),
				Err:    fmt.Errorf("%w: failed %q check (value %v)", ErrInvalidOption, fe.Tag(), fe.Value()),
			}
		}
		return &OptionError{Err: fmt.Errorf("%w: %v", ErrInvalidOption, err)}
	}
	return nil
}
