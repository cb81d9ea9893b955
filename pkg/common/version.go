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
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Version is set at build time
var Version string

type CephVersion struct {
	// ceph release name
	Name string
	// ceph major version
	MajorVersion string
	// ceph minor version
	MinorVersion string
	// major version for simple compare with other versions
	Order int
}

var AvailableCephVersions = []*CephVersion{Tentacle, Squid, Reef}

var (
	Tentacle = &CephVersion{
		Name:         "Tentacle",
		MajorVersion: "v20.2",
		Order:        20,
	}
	Squid = &CephVersion{
		Name:         "Squid",
		MajorVersion: "v19.2",
		Order:        19,
	}
	Reef = &CephVersion{
		Name:         "Reef",
		MajorVersion: "v18.2",
		Order:        18,
	}
	MinimalSupportedRelease = Reef
)

var cephVersionRegexp = regexp.MustCompile(`ceph version (\d+\.\d+\.\d+)`)

// GetCephVersionFromOutput extracts version in format v1.1.1 from
// 'ceph version' command output
func GetCephVersionFromOutput(output string) string {
	match := cephVersionRegexp.FindStringSubmatch(output)
	if len(match) < 2 {
		return ""
	}
	return "v" + match[1]
}

func ParseCephVersion(version string) (*CephVersion, error) {
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	for _, supported := range AvailableCephVersions {
		if strings.HasPrefix(version, supported.MajorVersion+".") {
			return &CephVersion{
				Name:         supported.Name,
				MajorVersion: supported.MajorVersion,
				MinorVersion: strings.TrimPrefix(version, supported.MajorVersion+"."),
				Order:        supported.Order,
			}, nil
		}
	}
	return nil, errors.Errorf("failed to find supported Ceph release for '%s' version", version)
}

func GetGoRuntimeVersion() string {
	return fmt.Sprintf("Go version: %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func GetCodeVersion(app string) string {
	if app == "" {
		app = "App"
	}
	if Version == "" {
		return fmt.Sprintf("%s version: unknown", app)
	}
	return fmt.Sprintf("%s version: %s", app, Version)
}
