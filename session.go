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

// Package convertmd implements an incremental, cached, bounded-concurrency
// pipeline that converts batches of documents to Markdown. Each document-set
// change is diffed against the session cache so unchanged documents are never
// reconverted; only the delta runs through the worker pool, and successful
// outputs are packaged into a single markdown artifact or a ZIP archive.
package convertmd

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Session holds the conversion state for one interactive session: the active
// document set, in upload order, and the outcome cache. It is created on
// session start and discarded at session end; nothing is persisted.
//
// Session methods are safe for concurrent use, but runs are serialized: a
// SetDocuments call that arrives while a conversion run is in flight waits
// for it to finish before reconciling.
type Session struct {
	mu        sync.Mutex
	converter Converter
	cache     *ResultCache
	batch     []Document
	workers   int
	progress  ProgressFunc
	log       zerolog.Logger
}

// NewSession creates a session driving the given converter.
func NewSession(c Converter, opts ...Option) *Session {
	s := &Session{
		converter: c,
		cache:     NewResultCache(),
		workers:   DefaultWorkers,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetDocuments replaces the active document set with docs (the full current
// set, in upload order), reconciles the cache, converts the documents not
// already cached, and returns the deliverable for the new set.
func (s *Session) SetDocuments(ctx context.Context, docs []Document) (Deliverable, error) {
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		if seen[d.Name] {
			return Deliverable{}, &DuplicateNameError{Name: d.Name}
		}
		seen[d.Name] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.batch = docs
	pending := s.cache.Reconcile(docs)

	if len(pending) > 0 {
		s.log.Info().
			Int("total", len(docs)).
			Int("pending", len(pending)).
			Msg("converting new documents")

		sched := NewScheduler(s.converter, s.workers, s.log)
		results := sched.Run(ctx, pending, s.progress)

		// Merge happens single-threaded, after the run completes.
		s.cache.Merge(results)
	}

	return BuildDeliverable(s.batch, s.cache)
}

// Deliverable rebuilds the deliverable from the cached outcomes for the
// current document set without converting anything.
func (s *Session) Deliverable() (Deliverable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildDeliverable(s.batch, s.cache)
}

// Documents returns the names of the active document set, in upload order.
func (s *Session) Documents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.batch))
	for i, d := range s.batch {
		names[i] = d.Name
	}
	return names
}

// Clear empties the active set and the cache.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = nil
	s.cache.Clear()
	s.log.Debug().Msg("session cleared")
}
