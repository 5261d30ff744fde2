package errors

import "fmt"

// ErrorCode represents an agent error code.
type ErrorCode string

const (
	ErrConfigMissing      ErrorCode = "CONFIG_MISSING"      // fatal at startup
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // bad command arguments
	ErrNoActiveLead       ErrorCode = "NO_ACTIVE_LEAD"      // /report before /analyze
	ErrEnrichmentFailed   ErrorCode = "ENRICHMENT_FAILED"   // web search provider error
	ErrSynthesisFailed    ErrorCode = "SYNTHESIS_FAILED"    // completion provider error
	ErrCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE" // catalog file missing or malformed
	ErrLedgerWriteFailed  ErrorCode = "LEDGER_WRITE_FAILED" // usage accounting must never be lost
	ErrInternal           ErrorCode = "INTERNAL"
)

// AgentError represents a structured error with a code and an optional cause.
type AgentError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is/errors.As chains.
func (e *AgentError) Unwrap() error {
	return e.Cause
}

// NewConfigMissing creates a startup error for a missing required credential.
func NewConfigMissing(name string) *AgentError {
	return &AgentError{
		Code:    ErrConfigMissing,
		Message: fmt.Sprintf("required configuration %s is not set", name),
	}
}

// NewInvalidRequest creates an error for invalid command arguments.
func NewInvalidRequest(msg string) *AgentError {
	return &AgentError{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewNoActiveLead creates an error for a report request with no captured lead.
func NewNoActiveLead(chatID int64) *AgentError {
	return &AgentError{
		Code:    ErrNoActiveLead,
		Message: fmt.Sprintf("no lead captured for chat %d", chatID),
	}
}

// NewEnrichmentFailed wraps a web search provider failure.
func NewEnrichmentFailed(err error) *AgentError {
	return &AgentError{
		Code:    ErrEnrichmentFailed,
		Message: "web search failed",
		Cause:   err,
	}
}

// NewSynthesisFailed wraps a completion provider failure.
func NewSynthesisFailed(err error) *AgentError {
	return &AgentError{
		Code:    ErrSynthesisFailed,
		Message: "completion failed",
		Cause:   err,
	}
}

// NewCatalogUnavailable wraps a catalog load failure.
func NewCatalogUnavailable(err error) *AgentError {
	return &AgentError{
		Code:    ErrCatalogUnavailable,
		Message: "offer catalog could not be loaded",
		Cause:   err,
	}
}

// NewLedgerWriteFailed wraps a usage ledger storage failure.
func NewLedgerWriteFailed(err error) *AgentError {
	return &AgentError{
		Code:    ErrLedgerWriteFailed,
		Message: "usage record was not persisted",
		Cause:   err,
	}
}

// NewInternal creates an error for unexpected internal failures.
func NewInternal(err error) *AgentError {
	return &AgentError{
		Code:    ErrInternal,
		Message: "internal error",
		Cause:   err,
	}
}

// Is checks if an error is an AgentError with the given code.
func Is(err error, code ErrorCode) bool {
	if aErr, ok := err.(*AgentError); ok {
		return aErr.Code == code
	}
	return false
}
