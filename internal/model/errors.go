package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountConflictError reports base + VAT disagreeing with the stated total
// beyond tolerance. All three extracted values are preserved; nothing is
// overwritten.
type AmountConflictError struct {
	BaseRent    decimal.Decimal
	VATAmount   decimal.Decimal
	TotalAmount decimal.Decimal
	Delta       decimal.Decimal
}

func (e *AmountConflictError) Error() string {
	return fmt.Sprintf("amounts conflict: base %s + VAT %s = %s, stated total %s (delta %s)",
		e.BaseRent, e.VATAmount, e.BaseRent.Add(e.VATAmount), e.TotalAmount, e.Delta)
}

// NewAmountConflictError creates a new amount conflict error
func NewAmountConflictError(base, vat, total decimal.Decimal) *AmountConflictError {
	return &AmountConflictError{
		BaseRent:    base,
		VATAmount:   vat,
		TotalAmount: total,
		Delta:       base.Add(vat).Sub(total),
	}
}

// IncompleteRecordError reports too few monetary fields to reconcile
type IncompleteRecordError struct {
	Known   []string
	Missing []string
}

func (e *IncompleteRecordError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("no monetary fields found (missing %s)", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("only %s found, cannot reconcile (missing %s)",
		strings.Join(e.Known, ", "), strings.Join(e.Missing, ", "))
}

// NewIncompleteRecordError creates a new incomplete record error
func NewIncompleteRecordError(known, missing []string) *IncompleteRecordError {
	return &IncompleteRecordError{Known: known, Missing: missing}
}

// InvalidBaseRentError reports a base rent that withholding cannot be
// computed from: absent, zero, or negative
type InvalidBaseRentError struct {
	Value decimal.Decimal
	Known bool
}

func (e *InvalidBaseRentError) Error() string {
	if !e.Known {
		return "base rent unknown, cannot compute withholding"
	}
	return fmt.Sprintf("base rent %s is not positive, cannot compute withholding", e.Value)
}

// NewInvalidBaseRentError creates a new invalid base rent error
func NewInvalidBaseRentError(value decimal.Decimal, known bool) *InvalidBaseRentError {
	return &InvalidBaseRentError{Value: value, Known: known}
}

// MalformedFieldError reports a field fragment that matched a pattern but
// could not be parsed. Recovered locally during extraction, never fatal.
type MalformedFieldError struct {
	Field    string
	Fragment string
	Cause    error
}

func (e *MalformedFieldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed %s %q: %v", e.Field, e.Fragment, e.Cause)
	}
	return fmt.Sprintf("malformed %s %q", e.Field, e.Fragment)
}

func (e *MalformedFieldError) Unwrap() error {
	return e.Cause
}

// NewMalformedFieldError creates a new malformed field error
func NewMalformedFieldError(field, fragment string, cause error) *MalformedFieldError {
	return &MalformedFieldError{Field: field, Fragment: fragment, Cause: cause}
}
