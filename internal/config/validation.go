package config

import (
	"fmt"
	"strings"
)

// ValidationError is a problem with one configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors collects every problem found in one validation run.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	switch len(ve) {
	case 0:
		return "no validation errors"
	case 1:
		return ve[0].Error()
	}

	messages := make([]string, 0, len(ve))
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add records a problem with field.
func (ve *ValidationErrors) Add(field, format string, args ...any) {
	*ve = append(*ve, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Require records field as missing when value is blank.
func (ve *ValidationErrors) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required")
	}
}

// OneOf records field as invalid when value is not in allowed.
func (ve *ValidationErrors) OneOf(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	ve.Add(field, "must be one of: %s (got %q)", strings.Join(allowed, ", "), value)
}

// FormatValidationError prefixes err with the file that failed validation.
func FormatValidationError(entityType, entityName string, err error) error {
	if err == nil {
		return nil
	}
	if entityName != "" {
		return fmt.Errorf("validation failed for %s '%s': %w", entityType, entityName, err)
	}
	return fmt.Errorf("validation failed for %s: %w", entityType, err)
}

// Validate checks the operator settings. Options are not validated here; their
// problems surface as unit status during reconciliation.
func (c Config) Validate() ValidationErrors {
	var errs ValidationErrors

	errs.Require("unit.appName", c.Unit.AppName)
	errs.Require("unit.container", c.Unit.Container)
	errs.Require("database.relation", c.Database.Relation)
	errs.Require("database.name", c.Database.Name)
	errs.Require("ingress.relation", c.Ingress.Relation)
	errs.Require("relations.labelKey", c.Relations.LabelKey)

	if c.Unit.Root == "" && c.Pebble.Socket == "" {
		errs.Add("pebble.socket", "is required unless unit.root is set")
	}
	if c.Database.Relation == c.Ingress.Relation && c.Database.Relation != "" {
		errs.Add("ingress.relation", "must differ from database.relation %q", c.Database.Relation)
	}

	if c.Reconcile.InitialBackoff <= 0 {
		errs.Add("reconcile.initialBackoff", "must be positive, got %s", c.Reconcile.InitialBackoff)
	}
	if c.Reconcile.MaxBackoff < c.Reconcile.InitialBackoff {
		errs.Add("reconcile.maxBackoff", "must not be smaller than reconcile.initialBackoff, got %s", c.Reconcile.MaxBackoff)
	}

	errs.OneOf("logging.level", strings.ToLower(c.Logging.Level), "debug", "info", "warn", "warning", "error")
	errs.OneOf("logging.format", c.Logging.Format, "text", "json")

	return errs
}
