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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingExtractor waits for ctx or release before answering.
func blockingExtractor(release <-chan struct{}) Extractor {
	return ExtractorFunc(func(ctx context.Context, src Source, _ Format) (*Extraction, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-release:
			return &Extraction{Text: "<p>" + src.URL + "</p>"}, nil
		}
	})
}

var pageRequest = ConversionRequest{Format: FormatWebpage, Kind: RemoteURL, URL: "https://example.com/first"}

func TestSlotSupersession(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slot := New(WithExtractor(blockingExtractor(release))).NewSlot()

	type outcome struct {
		res *ConversionResult
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := slot.Convert(context.Background(), pageRequest)
		first <- outcome{res, err}
	}()

	require.Eventually(t, func() bool { return slot.State() == StateAwaitingRemote }, time.Second, time.Millisecond)

	second, err := slot.Convert(context.Background(), ConversionRequest{Format: FormatCSV, Kind: PastedText, Text: "a\n1"})
	require.NoError(t, err)
	assert.Equal(t, "| a |\n| --- |\n| 1 |", second.Markdown)

	select {
	case out := <-first:
		assert.ErrorIs(t, out.err, ErrSuperseded)
		assert.Nil(t, out.res)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded request did not return")
	}

	assert.Same(t, second, slot.Latest())
	assert.Equal(t, StateRendered, slot.State())
}

func TestSlotCancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slot := New(WithExtractor(blockingExtractor(release))).NewSlot()

	errc := make(chan error, 1)
	go func() {
		_, err := slot.Convert(context.Background(), pageRequest)
		errc <- err
	}()
	require.Eventually(t, func() bool { return slot.State() == StateAwaitingRemote }, time.Second, time.Millisecond)

	slot.Cancel()
	assert.ErrorIs(t, <-errc, ErrSuperseded)
	assert.Equal(t, StateIdle, slot.State())
	assert.Nil(t, slot.Latest())

	// Cancel with nothing in flight is a no-op.
	slot.Cancel()
	assert.Equal(t, StateIdle, slot.State())
}

func TestSlotStates(t *testing.T) {
	release := make(chan struct{})
	close(release)
	slot := New(WithExtractor(blockingExtractor(release))).NewSlot()
	assert.Equal(t, StateIdle, slot.State())

	res, err := slot.Convert(context.Background(), pageRequest)
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Equal(t, "https://example.com/first", res.Markdown)
	assert.Equal(t, StateRendered, slot.State())

	res, err = slot.Convert(context.Background(), ConversionRequest{Format: FormatJSON, Kind: PastedText, Text: "{"})
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.Equal(t, StateFailed, slot.State())
	assert.Same(t, res, slot.Latest())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "awaitingRemote", StateAwaitingRemote.String())
	assert.Equal(t, "unknown", State(99).String())
}
