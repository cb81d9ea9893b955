/*
Copyright 2025 Mirantis IT.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cluster

import (
	"fmt"

	"github.com/pkg/errors"
)

// CommandError is returned when cluster replied with non-zero status or
// with an empty output where data is expected
type CommandError struct {
	Prefix  string
	Status  int
	Message string
}

func (e *CommandError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("'%s' command failed: %s", e.Prefix, e.Message)
	}
	return fmt.Sprintf("'%s' command failed with status %d: %s", e.Prefix, e.Status, e.Message)
}

func IsCommandError(err error) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr)
}

// errorCoder is implemented by go-ceph errors
type errorCoder interface {
	ErrorCode() int
}

func errorCode(err error) (int, bool) {
	var coder errorCoder
	if errors.As(err, &coder) {
		return coder.ErrorCode(), true
	}
	return 0, false
}
