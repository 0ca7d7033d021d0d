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

package convertmd

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers caps the number of conversions running in parallel during
// one scheduling run. Small batches get full parallelism; large batches are
// bounded to keep resource usage flat.
const DefaultWorkers = 5

// ProgressFunc receives completion progress during a scheduling run. It is
// called once per completed document with the running completed count and the
// run total; calls are serialized and the counts are non-decreasing.
type ProgressFunc func(completed, total int)

// Converter turns one document's raw bytes into markdown. Implementations
// must be stateless and safe for concurrent use; the scheduler may call
// Convert from multiple goroutines at once.
type Converter interface {
	Convert(ctx context.Context, name string, data []byte) (string, error)
}

// ConverterFunc adapts a plain function to the Converter interface.
type ConverterFunc func(ctx context.Context, name string, data []byte) (string, error)

// Convert calls f.
func (f ConverterFunc) Convert(ctx context.Context, name string, data []byte) (string, error) {
	return f(ctx, name, data)
}

// Scheduler runs document conversions through a Converter with bounded
// parallelism and per-document fault isolation: a converter error or panic
// becomes a failure outcome for that document only.
type Scheduler struct {
	converter Converter
	workers   int
	log       zerolog.Logger
}

// NewScheduler creates a Scheduler. workers <= 0 means DefaultWorkers.
func NewScheduler(c Converter, workers int, log zerolog.Logger) *Scheduler {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Scheduler{converter: c, workers: workers, log: log}
}

// Run converts docs and returns one result per document, in input order.
// A single document is converted inline on the calling goroutine; larger
// batches go through a worker pool limited to min(workers, len(docs)).
// Run always processes every document to completion; it has no per-document
// cancellation beyond the context handed to the converter.
func (s *Scheduler) Run(ctx context.Context, docs []Document, progress ProgressFunc) []Result {
	if len(docs) == 0 {
		return nil
	}

	results := make([]Result, len(docs))
	total := len(docs)

	if total == 1 {
		results[0] = Result{Name: docs[0].Name, Outcome: s.convertOne(ctx, docs[0])}
		if progress != nil {
			progress(1, 1)
		}
		return results
	}

	limit := s.workers
	if total < limit {
		limit = total
	}

	var (
		mu        sync.Mutex
		completed int
	)

	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i, doc := range docs {
		g.Go(func() error {
			// Each goroutine writes only its own slot.
			results[i] = Result{Name: doc.Name, Outcome: s.convertOne(ctx, doc)}

			mu.Lock()
			completed++
			if progress != nil {
				progress(completed, total)
			}
			mu.Unlock()
			return nil
		})
	}

	g.Wait() //nolint:errcheck // units never return errors; faults become outcomes
	return results
}

// convertOne invokes the converter for a single document and maps every
// failure mode, including panics inside the converter, onto a failure
// outcome.
func (s *Scheduler) convertOne(ctx context.Context, doc Document) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("document", doc.Name).Any("panic", r).Msg("converter panicked")
			out = Outcome{Reason: fmt.Sprintf("unexpected fault: %v", r)}
		}
	}()

	md, err := s.converter.Convert(ctx, doc.Name, doc.Data)
	if err != nil {
		s.log.Debug().Str("document", doc.Name).Err(err).Msg("conversion failed")
		return Outcome{Reason: err.Error()}
	}
	if strings.TrimSpace(md) == "" {
		s.log.Debug().Str("document", doc.Name).Msg("conversion produced no content")
		return Outcome{Reason: ErrNoContent.Error()}
	}
	return Outcome{Markdown: md}
}
