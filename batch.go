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

	"golang.org/x/sync/errgroup"
)

// ConvertAll converts independent requests concurrently, running at most
// parallelism at a time (unbounded when parallelism <= 0). Results are in
// request order.
func (e *Engine) ConvertAll(ctx context.Context, reqs []ConversionRequest, parallelism int) []*ConversionResult {
	results := make([]*ConversionResult, len(reqs))

	var g errgroup.Group
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = e.Convert(ctx, req)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
