package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxParams      = 100
	MaxParamKey    = 100
	MaxTargets     = 50
	MaxTitleLength = 100

	// Regular expressions
	paramKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	targetPattern   = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+$`)
)

func init() {
	validate = validator.New()
}

// ErrInvalid is wrapped by every payload validation failure
var ErrInvalid = errors.New("invalid payload")

// ValidateNodeData validates a node payload coming from a dialog or a record
func ValidateNodeData(data workflow.NodeData) error {
	if data == nil {
		return fmt.Errorf("%w: node data cannot be nil", ErrInvalid)
	}

	if err := validate.Struct(data); err != nil {
		return formatValidationError(err)
	}

	var (
		targets []string
		params  map[string]any
	)
	switch d := data.(type) {
	case workflow.EventData:
		targets, params = d.Targets, d.Params
	case workflow.JobData:
		targets, params = d.Targets, d.Params
	case workflow.ActionData:
		params = d.Params
	case workflow.LimitData:
		params = d.Params
	}

	if len(targets) > MaxTargets {
		return fmt.Errorf("%w: Targets: maximum %d targets allowed, got %d", ErrInvalid, MaxTargets, len(targets))
	}
	for i, target := range targets {
		if !targetPattern.MatchString(target) {
			return fmt.Errorf("%w: Targets: target %q at index %d contains invalid characters", ErrInvalid, target, i)
		}
	}
	return validateParams(params)
}

// ValidateTrigger validates a trigger record, including the fields each
// trigger type depends on.
func ValidateTrigger(t *workflow.Trigger) error {
	if t == nil {
		return fmt.Errorf("%w: trigger cannot be nil", ErrInvalid)
	}

	if err := validate.Struct(t); err != nil {
		return formatValidationError(err)
	}

	switch t.Type {
	case workflow.TriggerSingle:
		if t.Epoch <= 0 {
			return fmt.Errorf("%w: Epoch: single triggers need a launch time", ErrInvalid)
		}
	case workflow.TriggerInterval:
		if t.Interval <= 0 {
			return fmt.Errorf("%w: Interval: interval triggers need a positive interval", ErrInvalid)
		}
	case workflow.TriggerRange, workflow.TriggerBlackout:
		if t.Start == 0 && t.End == 0 {
			return fmt.Errorf("%w: Start: %s triggers need a start or end time", ErrInvalid, t.Type)
		}
		if t.Start != 0 && t.End != 0 && t.End <= t.Start {
			return fmt.Errorf("%w: End: must be after Start", ErrInvalid)
		}
	case workflow.TriggerPlugin:
		if t.Plugin == "" {
			return fmt.Errorf("%w: Plugin: field is required", ErrInvalid)
		}
	}

	return validateParams(t.Params)
}

func validateParams(params map[string]any) error {
	if len(params) > MaxParams {
		return fmt.Errorf("%w: Params: maximum %d params allowed, got %d", ErrInvalid, MaxParams, len(params))
	}
	for key := range params {
		if err := ValidateParamKey(key); err != nil {
			return fmt.Errorf("%w: Params: %w", ErrInvalid, err)
		}
	}
	return nil
}

// ValidateParamKey validates a plugin parameter key
func ValidateParamKey(key string) error {
	if key == "" {
		return errors.New("param key cannot be empty")
	}
	if len(key) > MaxParamKey {
		return fmt.Errorf("param key '%s' exceeds maximum length of %d characters", key, MaxParamKey)
	}
	if !paramKeyPattern.MatchString(key) {
		return fmt.Errorf("param key '%s' is invalid (must start with letter or underscore, followed by alphanumeric or underscore)", key)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly
// format, reporting every failing field.
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s: field is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s: must be at least %s", field, param))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s: must not exceed %s", field, param))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s: must be one of [%s]", field, param))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: validation failed (%s)", field, e.Tag()))
		}
	}

	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}
