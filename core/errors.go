package core

import (
	"fmt"
)

// ConfigError represents a configuration-related error with an actionable
// instruction for resolution.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeMissingConfig = "MISSING_CONFIG"
	ErrCodeInvalidConfig = "INVALID_CONFIG"
	ErrCodeMissingAuth   = "MISSING_AUTH"
	ErrCodePlansMissing  = "PLANS_MISSING"
)

// ErrMissingConfig returns an error for a required configuration value that
// was not set.
func ErrMissingConfig(envVar string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", envVar),
		Action:  fmt.Sprintf("Set %s in your environment or .env file", envVar),
	}
}

// ErrInvalidConfig returns an error for a configuration value that parsed but
// is out of range or otherwise unusable.
func ErrInvalidConfig(envVar, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf("Invalid value for %s: %s", envVar, reason),
		Action:  fmt.Sprintf("Correct %s in your environment or .env file", envVar),
	}
}

// ErrMissingAuth returns an error for missing service credentials.
func ErrMissingAuth(service string) *ConfigError {
	var action string
	switch service {
	case "openai":
		action = "Set OPENAI_API_KEY in your .env file"
	case "s3":
		action = "Configure AWS credentials (AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY) or set ASSET_STORE=local"
	default:
		action = fmt.Sprintf("Set the required API key for %s in your .env file", service)
	}
	return &ConfigError{
		Code:    ErrCodeMissingAuth,
		Message: fmt.Sprintf("Missing authentication credentials for %s", service),
		Action:  action,
	}
}

// ErrPlansMissing returns an error for a missing or unreadable plan catalog.
// The plan catalog is mandatory; there is no built-in fallback limit table.
func ErrPlansMissing(path, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodePlansMissing,
		Message: fmt.Sprintf("Plan catalog not usable at %s: %s", path, reason),
		Action:  "Point PLANS_PATH at a valid plans.yaml (see plans.example.yaml)",
	}
}
