// Package errors provides structured error handling for Nebula.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitRejected   = 3 // User declined a provider prompt
	ExitNotFound   = 4 // Resource not found
	ExitNoProvider = 5 // Wallet provider unreachable
)

// NebulaError is the structured error type for Nebula.
type NebulaError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *NebulaError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *NebulaError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for NebulaError.
func (e *NebulaError) Is(target error) bool {
	var t *NebulaError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &NebulaError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &NebulaError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &NebulaError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	// Provider boundary errors.
	ErrProviderUnavailable = &NebulaError{
		Code:       "PROVIDER_UNAVAILABLE",
		Message:    "no wallet provider available",
		Suggestion: "install a browser wallet or start the wallet bridge, then retry",
		ExitCode:   ExitNoProvider,
	}

	ErrUserRejected = &NebulaError{
		Code:     "USER_REJECTED",
		Message:  "request rejected in the wallet",
		ExitCode: ExitRejected,
	}

	ErrProvider = &NebulaError{
		Code:     "PROVIDER_ERROR",
		Message:  "wallet provider returned an unexpected error",
		ExitCode: ExitGeneral,
	}

	ErrChainNotRegistered = &NebulaError{
		Code:     "CHAIN_NOT_REGISTERED",
		Message:  "chain is not known to the wallet provider",
		ExitCode: ExitInput,
	}

	// Session errors.
	ErrNotConnected = &NebulaError{
		Code:       "NOT_CONNECTED",
		Message:    "wallet is not connected",
		Suggestion: "run 'nebula connect' first",
		ExitCode:   ExitGeneral,
	}

	ErrUnsupportedChain = &NebulaError{
		Code:       "UNSUPPORTED_CHAIN",
		Message:    "chain is not in the supported network registry",
		Suggestion: "switch to a supported network with 'nebula network switch'",
		ExitCode:   ExitInput,
	}

	// Transaction errors.
	ErrTxFailed = &NebulaError{
		Code:     "TX_FAILED",
		Message:  "transaction failed",
		ExitCode: ExitGeneral,
	}

	ErrTxTimeout = &NebulaError{
		Code:       "TX_TIMEOUT",
		Message:    "transaction still pending - no receipt before timeout",
		Suggestion: "the transaction may still confirm; re-check with 'nebula status'",
		ExitCode:   ExitGeneral,
	}

	ErrTxPending = &NebulaError{
		Code:     "TX_PENDING",
		Message:  "another transaction from this session is still pending",
		ExitCode: ExitInput,
	}

	ErrInvalidAddress = &NebulaError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrInvalidAmount = &NebulaError{
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount format",
		ExitCode: ExitInput,
	}

	// Config errors.
	ErrConfigNotFound = &NebulaError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &NebulaError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownConfigKey = &NebulaError{
		Code:     "UNKNOWN_CONFIG_KEY",
		Message:  "unknown config key",
		ExitCode: ExitInput,
	}

	// Product errors.
	ErrUnknownGPU = &NebulaError{
		Code:     "UNKNOWN_GPU",
		Message:  "unknown GPU model",
		ExitCode: ExitInput,
	}

	ErrUnknownNetwork = &NebulaError{
		Code:     "UNKNOWN_NETWORK",
		Message:  "unknown network",
		ExitCode: ExitInput,
	}

	ErrBelowMinimumStake = &NebulaError{
		Code:     "BELOW_MINIMUM_STAKE",
		Message:  "amount is below the minimum staking tier",
		ExitCode: ExitInput,
	}
)

// New creates a new NebulaError with the given code and message.
func New(code, message string) *NebulaError {
	return &NebulaError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var ne *NebulaError
	if errors.As(err, &ne) {
		return &NebulaError{
			Code:       ne.Code,
			Message:    fmt.Sprintf("%s: %s", msg, ne.Message),
			Details:    ne.Details,
			Suggestion: ne.Suggestion,
			Cause:      err,
			ExitCode:   ne.ExitCode,
		}
	}

	return &NebulaError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var ne *NebulaError
	if errors.As(err, &ne) {
		return &NebulaError{
			Code:       ne.Code,
			Message:    ne.Message,
			Details:    details,
			Suggestion: ne.Suggestion,
			Cause:      ne.Cause,
			ExitCode:   ne.ExitCode,
		}
	}

	return &NebulaError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var ne *NebulaError
	if errors.As(err, &ne) {
		return &NebulaError{
			Code:       ne.Code,
			Message:    ne.Message,
			Details:    ne.Details,
			Suggestion: suggestion,
			Cause:      ne.Cause,
			ExitCode:   ne.ExitCode,
		}
	}

	return &NebulaError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ne *NebulaError
	if errors.As(err, &ne) {
		return ne.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var ne *NebulaError
	if errors.As(err, &ne) {
		return ne.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
