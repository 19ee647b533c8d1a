package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Session store types
const (
	SessionMemory = "memory"
	SessionFile   = "file"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks struct tags first, then the rules that span fields.
// The first problem is returned as a *ConfigError.
func Validate(cfg *Config) error {
	if err := structValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}

	if cfg.Session.Type == SessionFile && cfg.Session.Path == "" {
		return NewMissingFieldError("session.path")
	}

	if cfg.Identity.TokenURL != "" && cfg.Identity.ClientID == "" {
		return NewMissingFieldError("identity.clientid")
	}

	if err := validateLog(&cfg.Log); err != nil {
		return err
	}

	return nil
}

// fieldError converts a validator failure to a ConfigError keyed by the koanf path.
func fieldError(fe validator.FieldError) *ConfigError {
	// Namespace is "Config.api.baseurl"; drop the root struct name.
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return NewMissingFieldError(field)
	case "oneof":
		return NewInvalidFieldError(field, fmt.Sprintf("invalid value %q", fmt.Sprint(fe.Value())), strings.Fields(fe.Param()))
	case "url":
		return NewInvalidFieldError(field, "must be an absolute url", nil)
	default:
		return NewInvalidFieldError(field, fmt.Sprintf("failed %s=%s (got %v)", fe.Tag(), fe.Param(), fe.Value()), nil)
	}
}

var validLogLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}

func validateLog(cfg *LogConfig) error {
	if slices.Contains(validLogLevels, strings.ToLower(cfg.Level)) {
		return nil
	}
	return NewInvalidFieldError("log.level", fmt.Sprintf("invalid log level %q", cfg.Level), validLogLevels)
}
