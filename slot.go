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
	"context"
	"sync"
)

// State is the lifecycle position of the request a Slot is tracking.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateLocalParsing
	StateAwaitingRemote
	StateRendered
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateLocalParsing:
		return "localParsing"
	case StateAwaitingRemote:
		return "awaitingRemote"
	case StateRendered:
		return "rendered"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Slot is one logical conversion target, such as a tool page's output
// pane. Only the most recent request submitted to a Slot may publish its
// result: starting a new request cancels the pending one, and a result
// that arrives for a stale request is dropped.
type Slot struct {
	engine *Engine

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State
	latest *ConversionResult
}

// NewSlot creates an idle Slot bound to e.
func (e *Engine) NewSlot() *Slot {
	return &Slot{engine: e}
}

// Convert runs req in the slot, superseding any request still in flight.
// It returns ErrSuperseded if a newer request (or Cancel) replaced this one
// before it finished; the slot is then left untouched.
func (s *Slot) Convert(ctx context.Context, req ConversionRequest) (*ConversionResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.state = StateIdle
	s.mu.Unlock()

	result := s.engine.convert(ctx, req, func(st State) {
		s.mu.Lock()
		if s.gen == gen {
			s.state = st
		}
		s.mu.Unlock()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil, ErrSuperseded
	}
	s.cancel = nil
	s.latest = result
	return result, nil
}

// Cancel abandons the request in flight, if any. Its result will be
// discarded.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.gen++
	s.state = StateIdle
}

// State reports where the current request is in its lifecycle.
func (s *Slot) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Latest returns the result of the most recent request that completed
// without being superseded, or nil.
func (s *Slot) Latest() *ConversionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}
