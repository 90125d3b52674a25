package errors

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	ErrUnsupportedFormat = errors.New("unsupported source format")
	ErrParseFailed       = errors.New("source parse failed")
	ErrRuleConfigInvalid = errors.New("rule configuration invalid")
	ErrReconciliationKey = errors.New("identifier field absent from source schema")
	ErrEmptySource       = errors.New("source contains no data")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInternal          = errors.New("internal error")
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeFormat         ErrorType = "format"
	ErrorTypeParse          ErrorType = "parse"
	ErrorTypeRuleConfig     ErrorType = "rule_config"
	ErrorTypeReconciliation ErrorType = "reconciliation"
	ErrorTypeInternal       ErrorType = "internal"
)

// AppError represents an application-specific error with additional context.
// Format and parse errors are fatal for one source only; rule configuration
// errors are fatal for the whole run and must surface before any source is
// processed.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	SourceID   string                 `json:"source_id,omitempty"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	switch {
	case e.SourceID != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s (source %s): %v", e.Code, e.Message, e.SourceID, e.Cause)
	case e.SourceID != "":
		return fmt.Sprintf("%s: %s (source %s)", e.Code, e.Message, e.SourceID)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewUnsupportedFormatError reports a source kind the readers cannot handle.
// The caller must exclude the source and may continue the run.
func NewUnsupportedFormatError(sourceID, kind string) *AppError {
	return &AppError{
		Type:       ErrorTypeFormat,
		Code:       CodeUnsupportedFormat,
		Message:    fmt.Sprintf("unsupported source kind %q", kind),
		SourceID:   sourceID,
		Cause:      ErrUnsupportedFormat,
		HTTPStatus: 400,
	}
}

// NewParseError reports malformed or corrupt source input, carrying the
// source ID and the underlying cause for diagnostics. Never retried.
func NewParseError(sourceID string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeParse,
		Code:       CodeParseFailed,
		Message:    "failed to parse source",
		SourceID:   sourceID,
		Cause:      cause,
		HTTPStatus: 422,
	}
}

// NewRuleConfigError reports a self-contradictory rule set. This aborts the
// whole run: a corrupt rule set makes every downstream violation meaningless.
func NewRuleConfigError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeRuleConfig,
		Code:       code,
		Message:    message,
		Cause:      ErrRuleConfigInvalid,
		HTTPStatus: 400,
	}
}

// NewReconciliationKeyError reports a source whose schema lacks the declared
// identifier field. The source is excluded from reconciliation but still
// contributes its field-validation violations.
func NewReconciliationKeyError(sourceID, field string) *AppError {
	return &AppError{
		Type:       ErrorTypeReconciliation,
		Code:       CodeIdentifierMissing,
		Message:    fmt.Sprintf("identifier field %q not in source schema", field),
		SourceID:   sourceID,
		Cause:      ErrReconciliationKey,
		HTTPStatus: 422,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       CodeInternalError,
		Message:    message,
		Cause:      cause,
		HTTPStatus: 500,
	}
}

// IsSourceFatal reports whether the error invalidates one source but not the
// run (unsupported format or parse failure).
func IsSourceFatal(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Type == ErrorTypeFormat || appErr.Type == ErrorTypeParse
}

// IsRunFatal reports whether the error must abort the whole run.
func IsRunFatal(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return true
	}
	return appErr.Type == ErrorTypeRuleConfig || appErr.Type == ErrorTypeInternal
}

// AsAppError extracts the AppError from an error chain, if present.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// Error codes for different error scenarios
const (
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeParseFailed       = "PARSE_FAILED"
	CodeIdentifierMissing = "IDENTIFIER_MISSING"
	CodeInternalError     = "INTERNAL_ERROR"

	// Rule configuration error codes
	CodeRuleRangeInverted   = "RULE_RANGE_INVERTED"
	CodeRuleBadType         = "RULE_BAD_TYPE"
	CodeRuleBadPattern      = "RULE_BAD_PATTERN"
	CodeRuleEmptyEnum       = "RULE_EMPTY_ENUM"
	CodeRuleAliasConflict   = "RULE_ALIAS_CONFLICT"
	CodeRuleConfigMalformed = "RULE_CONFIG_MALFORMED"
)
