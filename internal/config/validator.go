package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aleister1102/isolatedaudit/internal/urlhandler"
	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator with the config-specific rules registered.
func newValidator() *validator.Validate {
	validate := validator.New()

	// Register custom validation for file existence
	_ = validate.RegisterValidation("fileexists", func(fl validator.FieldLevel) bool {
		filePath := fl.Field().String()
		if filePath == "" {
			return true
		}
		_, err := os.Stat(filePath)
		return !os.IsNotExist(err)
	})

	_ = validate.RegisterValidation("targeturl", func(fl validator.FieldLevel) bool {
		return urlhandler.ValidateURLFormat(fl.Field().String()) == nil
	})

	_ = validate.RegisterValidation("failurepolicy", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case FailurePolicySkip, FailurePolicyAbort:
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("backend", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case BackendCDP, BackendLighthouse:
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("formfactor", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "mobile", "desktop":
			return true
		default:
			return false
		}
	})

	// Register custom validation for LogLevel
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
			return true
		default:
			return false
		}
	})

	// Register custom validation for LogFormat
	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	return validate
}

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("configuration is nil")
	}

	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("configuration validation error: %w", err)
	}

	validationErrorMessages := make([]string, 0, len(errs))
	for _, e := range errs {
		fieldName := strings.TrimPrefix(e.StructNamespace(), "GlobalConfig.")
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		validationErrorMessages = append(validationErrorMessages, msg)
	}
	return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(validationErrorMessages, "\n  "))
}
