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

// ResultCache maps document names to their last known conversion outcome for
// the lifetime of a session. Every entry belongs to a document that was, at
// some point, part of the active set; Reconcile evicts entries whose document
// has been removed, so a removed-then-re-added name is converted fresh.
//
// ResultCache is not safe for concurrent use; the Session serializes access.
type ResultCache struct {
	outcomes map[string]Outcome
}

// NewResultCache returns an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{outcomes: make(map[string]Outcome)}
}

// Reconcile diffs the cache against the current document set: entries for
// names no longer present are evicted, and the documents with no cached
// outcome are returned as the conversion work list, in batch order.
//
// A cached failure counts as processed. Retrying a failed document requires
// removing it from the set and re-adding it.
func (c *ResultCache) Reconcile(batch []Document) []Document {
	current := make(map[string]bool, len(batch))
	for _, d := range batch {
		current[d.Name] = true
	}

	for name := range c.outcomes {
		if !current[name] {
			delete(c.outcomes, name)
		}
	}

	var pending []Document
	for _, d := range batch {
		if _, ok := c.outcomes[d.Name]; !ok {
			pending = append(pending, d)
		}
	}
	return pending
}

// Get returns the cached outcome for name.
func (c *ResultCache) Get(name string) (Outcome, bool) {
	o, ok := c.outcomes[name]
	return o, ok
}

// Put stores an outcome, replacing any previous outcome for the same name.
func (c *ResultCache) Put(name string, o Outcome) {
	c.outcomes[name] = o
}

// Merge stores a batch of scheduler results.
func (c *ResultCache) Merge(results []Result) {
	for _, r := range results {
		c.outcomes[r.Name] = r.Outcome
	}
}

// Names returns the cached document names, in no particular order.
func (c *ResultCache) Names() []string {
	names := make([]string, 0, len(c.outcomes))
	for name := range c.outcomes {
		names = append(names, name)
	}
	return names
}

// Len returns the number of cached outcomes.
func (c *ResultCache) Len() int {
	return len(c.outcomes)
}

// Clear removes all cached outcomes.
func (c *ResultCache) Clear() {
	c.outcomes = make(map[string]Outcome)
}
