// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package validation

import (
	"errors"
	"fmt"
)

// ErrorCollector gathers every validation failure of a document so they can
// be reported together.
type ErrorCollector struct {
	errs []error
	ctx  string // prefix such as "segment 2"
}

// NewCollector creates an empty collector
func NewCollector() *ErrorCollector {
	return &ErrorCollector{}
}

// WithContext sets the prefix of errors collected from now on.
func (ec *ErrorCollector) WithContext(ctx string) *ErrorCollector {
	ec.ctx = ctx
	return ec
}

// Check records err unless it is nil
func (ec *ErrorCollector) Check(err error) {
	ec.add("", err)
}

// CheckMsg records err prefixed with msg unless it is nil
func (ec *ErrorCollector) CheckMsg(err error, msg string) {
	ec.add(msg, err)
}

func (ec *ErrorCollector) add(msg string, err error) {
	if err == nil {
		return
	}
	if msg != "" {
		err = fmt.Errorf("%s: %w", msg, err)
	}
	if ec.ctx != "" {
		err = fmt.Errorf("%s: %w", ec.ctx, err)
	}
	ec.errs = append(ec.errs, err)
}

// Len returns the number of collected errors
func (ec *ErrorCollector) Len() int {
	return len(ec.errs)
}

// Error joins the collected errors, nil when there are none.
func (ec *ErrorCollector) Error() error {
	return errors.Join(ec.errs...)
}
