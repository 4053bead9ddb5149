// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation parses and bounds-checks user-supplied algorithm input.
//
// Custom array and target text is validated here, before any frame is
// generated, so the generator layer never sees malformed data. Every failure
// is reported as a single user-visible message.
package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Limits on custom input.
const (
	MaxElements  = 20
	MaxMagnitude = 999
)

// User-visible messages.
const (
	MsgInvalidCharacters = "Invalid characters. Only numbers, commas, and dashes allowed."
	MsgInvalidNumbers    = "Array contains invalid numbers."
	MsgEmptyArray        = "Array cannot be empty."
	MsgTooManyElements   = "Maximum 20 elements allowed to maintain performance."
	MsgOutOfRange        = "Numbers must be between -999 and 999."
	MsgTargetFormat      = "Target must be a valid number."
	MsgTargetInvalid     = "Target is not a valid number."
)

// arrayPattern allows digits, commas, whitespace and minus signs.
var arrayPattern = regexp.MustCompile(`^[\d,\s-]+$`)

// targetPattern allows digits, whitespace and minus signs.
var targetPattern = regexp.MustCompile(`^[\d\s-]+$`)

// inputValidate checks the bounds of a parsed CustomInput.
var inputValidate = validator.New()

// InputError is a validation failure carrying the message to show the user.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func inputErr(msg string) error { return &InputError{Message: msg} }

// CustomInput is validated user input ready for a generator.
type CustomInput struct {
	Array  []int `validate:"required,min=1,max=20,dive,min=-999,max=999"`
	Target *int
}

// ParseCustomInput validates array text such as "5, 3, -2" and, when
// requireTarget is set, a target such as "-4".
//
// Checks run in a fixed order and the first failure wins: character set,
// numeric tokens, emptiness, element count, magnitude, then the target.
// Empty tokens between commas are ignored. The target is not parsed at all
// when requireTarget is false.
//
// Returns *InputError on invalid input.
//
// Example:
//
//	in, err := validation.ParseCustomInput("5,3,4", "4", true)
//	var ie *validation.InputError
//	if errors.As(err, &ie) {
//	    fmt.Println(ie.Message)
//	}
func ParseCustomInput(arrayText, targetText string, requireTarget bool) (CustomInput, error) {
	if !arrayPattern.MatchString(arrayText) {
		return CustomInput{}, inputErr(MsgInvalidCharacters)
	}

	values := []int{}
	for _, tok := range strings.Split(arrayText, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				// Far outside the bounds; the range check reports it.
				n = MaxMagnitude + 1
			} else {
				return CustomInput{}, inputErr(MsgInvalidNumbers)
			}
		}
		values = append(values, n)
	}

	in := CustomInput{Array: values}
	if err := checkBounds(in); err != nil {
		return CustomInput{}, err
	}

	if requireTarget {
		if !targetPattern.MatchString(targetText) {
			return CustomInput{}, inputErr(MsgTargetFormat)
		}
		t, err := strconv.Atoi(strings.TrimSpace(targetText))
		if err != nil {
			return CustomInput{}, inputErr(MsgTargetInvalid)
		}
		in.Target = &t
	}
	return in, nil
}

// checkBounds maps validator failures to messages, emptiness first, then
// size, then element magnitude.
func checkBounds(in CustomInput) error {
	err := inputValidate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return inputErr(MsgInvalidNumbers)
	}

	msg := ""
	rank := 0
	for _, fe := range verrs {
		var m string
		var r int
		switch {
		case strings.HasPrefix(fe.Field(), "Array["):
			m, r = MsgOutOfRange, 1
		case fe.Tag() == "max":
			m, r = MsgTooManyElements, 2
		default:
			m, r = MsgEmptyArray, 3
		}
		if r > rank {
			msg, rank = m, r
		}
	}
	return inputErr(msg)
}
