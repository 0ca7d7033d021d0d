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

import "github.com/rs/zerolog"

// Option configures a Session.
type Option func(*Session)

// WithWorkers sets the parallel conversion cap for scheduling runs
// (default DefaultWorkers). Values <= 0 keep the default.
func WithWorkers(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithProgress sets the progress sink called after each document completes.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Session) {
		s.progress = fn
	}
}

// WithLogger sets the session logger (default: no logging).
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}
