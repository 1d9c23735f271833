package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator() //nolint:gochecknoglobals // validators cache struct metadata

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(strings.TrimSpace(fl.Field().String())) {
		case "", "debug", "info", "warn", "warning", "error":
			return true
		}
		return false
	})
	return v
}

// Validate checks field constraints and the cross-field rules of cfg.
func Validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, port, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("%w: addr %q: %w", ErrInvalidConfig, cfg.Addr, err)
	} else if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("%w: addr %q: bad port", ErrInvalidConfig, cfg.Addr)
	}

	seen := make(map[string]bool, len(cfg.Categories))
	for _, c := range cfg.Categories {
		if seen[c.Key] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidConfig, c.Key)
		}
		seen[c.Key] = true
	}
	if !seen[cfg.DefaultCategory] {
		return fmt.Errorf("%w: default category %q is not configured", ErrInvalidConfig, cfg.DefaultCategory)
	}
	return nil
}

func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_unless":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Namespace(), fe.Param(), fe.Value()))
		case "loglevel":
			msgs = append(msgs, fmt.Sprintf("%s must be one of debug, info, warn, error", fe.Namespace()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}
