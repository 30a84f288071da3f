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

// Package anything2md converts pasted text, uploaded files and URLs in many
// formats into a single normalized Markdown document.
package anything2md

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultRemoteTimeout bounds an extraction call unless WithRemoteTimeout is used.
const DefaultRemoteTimeout = 30 * time.Second

// Engine is the document-to-markdown conversion engine. It is safe for
// concurrent use.
type Engine struct {
	mu      sync.RWMutex
	formats map[Format]Registration

	extractor     Extractor
	remoteTimeout time.Duration
	keepDataURIs  bool
	log           logrus.FieldLogger

	markup *HTMLConverter
	text   *TextConverter
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		formats:       make(map[Format]Registration),
		remoteTimeout: DefaultRemoteTimeout,
		log:           discardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.markup = NewHTMLConverter(e)
	e.text = NewTextConverter()
	e.enableBuiltins()
	return e
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Convert runs one request to completion. It always returns a result;
// failures are reported through Succeeded, Err and Diagnostics.
func (e *Engine) Convert(ctx context.Context, req ConversionRequest) *ConversionResult {
	return e.convert(ctx, req, func(State) {})
}

// ConvertText is a shorthand for converting pasted text.
func (e *Engine) ConvertText(format Format, text string) *ConversionResult {
	return e.Convert(context.Background(), ConversionRequest{Format: format, Kind: PastedText, Text: text})
}

func (e *Engine) convert(ctx context.Context, req ConversionRequest, observe func(State)) *ConversionResult {
	start := time.Now()
	log := e.log.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"format":     req.Format,
		"kind":       req.Kind.String(),
	})

	observe(StateValidating)
	var result *ConversionResult
	reg, err := e.validate(req)
	switch {
	case err != nil:
		result = failed(err, "")
	case reg.Mode == ModeLocal:
		observe(StateLocalParsing)
		result = e.convertLocal(reg, req)
	default:
		observe(StateAwaitingRemote)
		result = e.convertRemote(ctx, reg, req, log)
	}

	fields := logrus.Fields{
		"duration":    time.Since(start).String(),
		"diagnostics": len(result.Diagnostics),
	}
	if !result.Succeeded {
		observe(StateFailed)
		log.WithFields(fields).WithError(result.Err).Warn("conversion failed")
		return result
	}

	result.Markdown = normalizeOutput(result.Markdown)
	observe(StateRendered)
	log.WithFields(fields).Debug("conversion rendered")
	return result
}

// validate resolves the registration and checks the input kind and payload
// shape. Nothing is read or parsed yet.
func (e *Engine) validate(req ConversionRequest) (Registration, error) {
	reg, ok := e.Lookup(req.Format)
	if !ok {
		return Registration{}, &UnsupportedFormatError{Format: req.Format}
	}

	mismatch := func(reason string) error {
		return &InputMismatchError{Format: req.Format, Kind: req.Kind, Reason: reason}
	}

	if !reg.accepts(req.Kind) {
		kinds := make([]string, len(reg.Accepts))
		for i, k := range reg.Accepts {
			kinds[i] = k.String()
		}
		return reg, mismatch("expected " + strings.Join(kinds, " or "))
	}

	switch req.Kind {
	case PastedText:
		if req.File != nil || req.URL != "" {
			return reg, mismatch("pasted text requests must not carry a file or URL")
		}
	case UploadedFile:
		if req.File == nil {
			return reg, mismatch("no file provided")
		}
		if req.Text != "" || req.URL != "" {
			return reg, mismatch("file requests must not carry text or a URL")
		}
	case RemoteURL:
		if req.Text != "" || req.File != nil {
			return reg, mismatch("URL requests must not carry text or a file")
		}
		u, err := url.Parse(strings.TrimSpace(req.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return reg, mismatch(fmt.Sprintf("%q is not an absolute http(s) URL", req.URL))
		}
	default:
		return reg, mismatch("unknown input kind")
	}
	return reg, nil
}

func (e *Engine) convertLocal(reg Registration, req ConversionRequest) (result *ConversionResult) {
	text := req.Text
	if req.Kind == UploadedFile {
		var err error
		if text, err = readUpload(req); err != nil {
			return failed(err, "")
		}
	}

	defer func() {
		if r := recover(); r != nil {
			result = failed(&MalformedInputError{Format: reg.Format, Err: fmt.Errorf("converter panicked: %v", r)}, "")
		}
	}()
	if result = reg.Converter.Convert(text); result == nil {
		result = failed(malformed(reg.Format, "converter returned no result"), "")
	}
	return result
}

// readUpload reads a text upload and decodes it to UTF-8. Content that
// sniffs as binary is rejected.
func readUpload(req ConversionRequest) (string, error) {
	if _, err := req.File.Seek(0, io.SeekStart); err != nil {
		return "", &MalformedInputError{Format: req.Format, Err: fmt.Errorf("seek: %w", err)}
	}
	data, err := io.ReadAll(req.File)
	if err != nil {
		return "", &MalformedInputError{Format: req.Format, Err: fmt.Errorf("read input: %w", err)}
	}

	if mt := mimetype.Detect(data); !isTextMIME(mt) {
		return "", &InputMismatchError{
			Format: req.Format,
			Kind:   req.Kind,
			Reason: fmt.Sprintf("file content looks like %s, not text", mt.String()),
		}
	}
	return decodeText(data, req.Info.Charset), nil
}

func isTextMIME(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func (e *Engine) convertRemote(ctx context.Context, reg Registration, req ConversionRequest, log logrus.FieldLogger) *ConversionResult {
	if e.extractor == nil {
		return failed(&RemoteExtractionError{Format: reg.Format, Err: errors.New("no extractor configured")}, "")
	}

	ctx, cancel := context.WithTimeout(ctx, e.remoteTimeout)
	defer cancel()

	src := Source{Kind: req.Kind, File: req.File, Info: req.Info, URL: strings.TrimSpace(req.URL)}

	type outcome struct {
		ex  *Extraction
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		ex, err := e.extractor.Extract(ctx, src, reg.Format)
		done <- outcome{ex, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}

	if out.err != nil {
		err := out.err
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			err = fmt.Errorf("timed out after %s", e.remoteTimeout)
		case errors.Is(err, context.Canceled):
			err = errors.New("request cancelled")
		}
		return failed(&RemoteExtractionError{Format: reg.Format, Err: err}, "")
	}

	ex := out.ex
	if ex == nil {
		ex = &Extraction{}
	}
	log.WithField("warnings", len(ex.Warnings)).Debug("extraction finished")

	var result *ConversionResult
	switch reg.Output {
	case OutputMarkup:
		result = e.markup.Convert(ex.Text)
	case OutputPlainText:
		result = e.text.Convert(ex.Text)
	default:
		md := strings.TrimSpace(ex.Text)
		if md == "" {
			result = succeeded("", "no data")
		} else {
			result = succeeded(md)
		}
	}
	if result.Title == "" {
		result.Title = ex.Title
	}
	result.prependDiagnostics(ex.Warnings)
	return result
}
