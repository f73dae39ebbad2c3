// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package errors

import (
	"bytes"
	"fmt"
)

// Code identifies why a conversion failed. Every Code is an error on its own
// so callers can test failures with errors.Is(err, errors.Overflow).
type Code int

const (
	// InvalidNumber is returned when a literal does not match the numeric
	// grammar: digits with at most one decimal point, no sign, no exponent.
	InvalidNumber Code = iota + 1
	// UnknownUnit is returned when a unit token does not resolve.
	UnknownUnit
	// FractionalBaseUnit is returned when a fractional literal has no unit.
	FractionalBaseUnit
	// Overflow is returned when a result exceeds the integer width.
	Overflow
	// Underflow is returned when a subtraction would go negative.
	Underflow
	DivideByZero
	// InvalidMagnitude is returned for negative or non-finite magnitudes.
	InvalidMagnitude
)

var codeMessages = map[Code]string{
	InvalidNumber:      "Invalid number",
	UnknownUnit:        "Unknown unit",
	FractionalBaseUnit: "Fractional value without unit",
	Overflow:           "Overflow",
	Underflow:          "Underflow",
	DivideByZero:       "Divide by zero",
	InvalidMagnitude:   "Invalid magnitude",
}

func (c Code) Error() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is a Code paired with the input that triggered it.
type Error struct {
	Code  Code
	Input string
}

// New returns an *Error for the given code and offending input.
func New(code Code, input string) error {
	return &Error{Code: code, Input: input}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %q", e.Code, e.Input)
}

func (e *Error) Unwrap() error {
	return e.Code
}

// CodeOf extracts the Code of err, if any.
func CodeOf(err error) (Code, bool) {
	for err != nil {
		switch e := err.(type) {
		case Code:
			return e, true
		case *Error:
			return e.Code, true
		case interface{ Unwrap() error }:
			err = e.Unwrap()
		default:
			return 0, false
		}
	}
	return 0, false
}

// PositionalError is an error paired with a position. This is useful for APIs
// that perform bulk operations that can partially fail and the caller must bind
// which input(s) failed. Use the `Position` method to extract the position.
type PositionalError struct {
	pos int
	err error
}

// NewPositionalError creates an error paired with a position.
func NewPositionalError(pos int, err error) error {
	return &PositionalError{pos, err}
}

func (e *PositionalError) Error() string {
	return fmt.Sprintf("Positional(%d): %s", e.pos, e.err.Error())
}

func (e *PositionalError) Position() int {
	return e.pos
}

func (e *PositionalError) Unwrap() error {
	return e.err
}

// Errors is an error that wrap two or more errors. Unwrap only returns the
// first error, use the `Errors` method to extract all of them.
type Errors struct {
	errs []error
}

func (e *Errors) Error() string {
	buf := new(bytes.Buffer)

	buf.WriteString("Multiple errors: ")
	for i, err := range e.errs {
		fmt.Fprintf(buf, "(%d){%s}\t", i+1, err.Error())
	}

	return buf.String()
}

func (e *Errors) Errors() []error {
	return e.errs
}

func (e *Errors) Unwrap() error {
	return e.errs[0]
}

// NewErrors batches the non-nil errors. It returns nil when there is none and
// the error itself when there is exactly one.
func NewErrors(errs ...error) error {
	var errors []error
	for _, err := range errs {
		if err != nil {
			errors = append(errors, err)
		}
	}

	switch len(errors) {
	case 0:
		return nil
	case 1:
		return errors[0]
	default:
		return &Errors{errors}
	}
}
