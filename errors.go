// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package anything2md

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned by Slot.Convert when a newer request replaced
// the one being awaited.
var ErrSuperseded = errors.New("conversion superseded by a newer request")

// UnsupportedFormatError is returned when no converter is registered for a format.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q", e.Format)
}

// InputMismatchError reports a request whose input kind or payload does
// not fit the selected format. It is raised before any parsing.
type InputMismatchError struct {
	Format Format
	Kind   InputKind
	Reason string
}

func (e *InputMismatchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s input cannot be used with format %q: %s", e.Kind, e.Format, e.Reason)
	}
	return fmt.Sprintf("%s input cannot be used with format %q", e.Kind, e.Format)
}

// MalformedInputError reports input a parser could not make sense of.
type MalformedInputError struct {
	Format Format
	Err    error
}

func (e *MalformedInputError) Error() string {
	return e.Err.Error()
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// RemoteExtractionError reports a failed or timed out extraction call.
// Its message is the collaborator's message, passed through.
type RemoteExtractionError struct {
	Format Format
	Err    error
}

func (e *RemoteExtractionError) Error() string {
	return fmt.Sprintf("%s extraction failed: %v", e.Format, e.Err)
}

func (e *RemoteExtractionError) Unwrap() error {
	return e.Err
}

// IsUnsupportedFormat reports whether the error is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}

// IsInputMismatch reports whether the error is an InputMismatchError.
func IsInputMismatch(err error) bool {
	var target *InputMismatchError
	return errors.As(err, &target)
}

// IsMalformedInput reports whether the error is a MalformedInputError.
func IsMalformedInput(err error) bool {
	var target *MalformedInputError
	return errors.As(err, &target)
}

// IsRemoteExtraction reports whether the error is a RemoteExtractionError.
func IsRemoteExtraction(err error) bool {
	var target *RemoteExtractionError
	return errors.As(err, &target)
}

func malformed(f Format, msg string) error {
	return &MalformedInputError{Format: f, Err: errors.New(msg)}
}
