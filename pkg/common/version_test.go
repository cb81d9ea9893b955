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

func TestParseCephVersion(t *testing.T) {
	tests := []struct {
		name            string
		output          string
		expectedVersion *CephVersion
		expectedError   string
	}{
		{
			name:   "squid cluster",
			output: "ceph version 19.2.3 (c92aebb279828e9c3c1f5d24613efca272649e62) squid (stable)",
			expectedVersion: &CephVersion{
				Name:         "Squid",
				MajorVersion: "v19.2",
				MinorVersion: "3",
				Order:        19,
			},
		},
		{
			name:   "reef cluster",
			output: "ceph version 18.2.4 (e7ad5345525c7aa95470c26863873b581076945d) reef (stable)",
			expectedVersion: &CephVersion{
				Name:         "Reef",
				MajorVersion: "v18.2",
				MinorVersion: "4",
				Order:        18,
			},
		},
		{
			name:          "quincy cluster is unknown",
			output:        "ceph version 17.2.7 (b12291d110049b2f35e32e0de30d70e9a4c060d2) quincy (stable)",
			expectedError: "failed to find supported Ceph release for 'v17.2.7' version",
		},
		{
			name:          "garbage output",
			output:        "unknown",
			expectedError: "failed to find supported Ceph release for 'v' version",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			version, err := ParseCephVersion(GetCephVersionFromOutput(test.output))
			if test.expectedError != "" {
				assert.NotNil(t, err)
				assert.Equal(t, test.expectedError, err.Error())
			} else {
				assert.Nil(t, err)
			}
			assert.Equal(t, test.expectedVersion, version)
		})
	}
}

func TestGetCodeVersion(t *testing.T) {
	oldVersion := Version
	Version = ""
	assert.Equal(t, "connector version: unknown", GetCodeVersion("connector"))
	Version = "1.0.0"
	assert.Equal(t, "App version: 1.0.0", GetCodeVersion(""))
	Version = oldVersion
}
