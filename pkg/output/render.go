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

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatBash Format = "bash"
	FormatYAML Format = "yaml"
)

var SupportedFormats = []string{string(FormatJSON), string(FormatBash), string(FormatYAML)}

func ParseFormat(format string) (Format, error) {
	if !cephcommon.Contains(SupportedFormats, format) {
		return "", cephcommon.NewConfigError("Unsupported format: %s", format)
	}
	return Format(format), nil
}

// Render writes result in requested format
func Render(w io.Writer, r *Result, format Format) error {
	var out string
	var err error
	switch format {
	case FormatJSON:
		out, err = JSON(r)
	case FormatYAML:
		out, err = YAML(r)
	case FormatBash:
		out = Bash(r)
	default:
		return cephcommon.NewConfigError("Unsupported format: %s", format)
	}
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, out); err != nil {
		return errors.Wrap(err, "failed to write output")
	}
	return nil
}

func JSON(r *Result) (string, error) {
	raw, err := json.Marshal(r.Records())
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal records")
	}
	return string(raw) + "\n", nil
}

func YAML(r *Result) (string, error) {
	raw, err := yaml.Marshal(r.Records())
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal records")
	}
	return string(raw), nil
}

// Bash returns 'export KEY=VALUE' line for each non empty value
func Bash(r *Result) string {
	var sb strings.Builder
	for _, kv := range r.Values() {
		if kv.Value == "" || cephcommon.Contains(excludedKeys, kv.Key) {
			continue
		}
		fmt.Fprintf(&sb, "export %s=%s\n", kv.Key, shellQuote(kv.Value))
	}
	return sb.String()
}

// shellQuote single-quotes values which shell would otherwise split or
// expand
func shellQuote(value string) string {
	if !strings.ContainsAny(value, " \t\n\"'$`\\;&|<>()*?[]#~!{}") {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
