// Package errors defines the application error taxonomy shown to chat users.
package errors

import "fmt"

// DefaultUserMessage is shown when a failure carries no specific user message.
const DefaultUserMessage = "صار خلل، حاول مرة ثانية بعدين."

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const (
	CodeUsage       = "E100"
	CodeDatabase    = "E200"
	CodeExternalAPI = "E300"
	CodeRateLimit   = "E500"
	CodeInternal    = "E900"
)

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// NewUsageError reports missing or malformed command arguments; hint is sent to the user as is.
func NewUsageError(hint string, cause error) *AppError {
	return &AppError{
		Code:        CodeUsage,
		Message:     "invalid command arguments",
		UserMessage: hint,
		Severity:    SeverityLow,
		cause:       cause,
	}
}

func NewDatabaseError(cause error) *AppError {
	return &AppError{
		Code:        CodeDatabase,
		Message:     "database error",
		UserMessage: DefaultUserMessage,
		Severity:    SeverityHigh,
		cause:       cause,
	}
}

func NewExternalAPIError(apiName string, cause error) *AppError {
	return &AppError{
		Code:        CodeExternalAPI,
		Message:     fmt.Sprintf("external API error: %s", apiName),
		UserMessage: DefaultUserMessage,
		Severity:    SeverityMedium,
		cause:       cause,
	}
}

func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Code:        CodeRateLimit,
		Message:     fmt.Sprintf("rate limit exceeded: retry after %d seconds", retryAfter),
		UserMessage: fmt.Sprintf("طلبات كثيرة، جرب بعد %d ثانية.", retryAfter),
		Severity:    SeverityLow,
	}
}

// NewInternalError wraps failures that are bugs, such as a recovered panic.
func NewInternalError(cause error) *AppError {
	return &AppError{
		Code:        CodeInternal,
		Message:     "internal error",
		UserMessage: DefaultUserMessage,
		Severity:    SeverityCritical,
		cause:       cause,
	}
}
