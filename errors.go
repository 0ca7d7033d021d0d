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
	"errors"
	"fmt"
)

// ErrNoContent indicates the converter succeeded but produced no usable text.
var ErrNoContent = errors.New("no content extracted")

// DuplicateNameError is returned when a submitted document set contains the
// same name twice. Names are the identity key, so duplicates are rejected up
// front rather than silently collapsed.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate document name %q", e.Name)
}

// IsDuplicateName reports whether the error is a DuplicateNameError.
func IsDuplicateName(err error) bool {
	var target *DuplicateNameError
	return errors.As(err, &target)
}
