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

package cephcommon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty",
			input:    "",
			expected: []string{},
		},
		{
			name:     "comma separated",
			input:    "10.0.0.1,10.0.0.2",
			expected: []string{"10.0.0.1", "10.0.0.2"},
		},
		{
			name:     "mixed separators",
			input:    " 10.0.0.1, 10.0.0.2 host-3,,",
			expected: []string{"10.0.0.1", "10.0.0.2", "host-3"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, SplitList(test.input))
		})
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("flag '%s' is wrong", "--format")
	assert.Equal(t, "flag '--format' is wrong", err.Error())
	assert.True(t, IsConfigError(err))
	assert.False(t, IsConfigError(nil))
}
