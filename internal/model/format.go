package model

import (
	"fmt"
	"strings"
)

// BankFormat names a recognized (or inferred) bank export layout.
type BankFormat string

const (
	FormatUnknown         BankFormat = "Unknown"
	FormatGeneric         BankFormat = "Generic"
	FormatInternetBanking BankFormat = "InternetBanking"
)

// ValidationResult collects fatal errors and non-fatal warnings for one ingestion.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewValidationResult returns a valid result with empty (non-nil) lists.
func NewValidationResult() ValidationResult {
	return ValidationResult{IsValid: true, Errors: []string{}, Warnings: []string{}}
}

// AddError records a fatal error and marks the result invalid.
func (v *ValidationResult) AddError(format string, args ...any) {
	v.IsValid = false
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// AddWarning records a non-fatal warning.
func (v *ValidationResult) AddWarning(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

// Summary joins errors (or warnings when valid) for single-line display.
func (v ValidationResult) Summary() string {
	if !v.IsValid {
		return strings.Join(v.Errors, "; ")
	}
	return strings.Join(v.Warnings, "; ")
}
