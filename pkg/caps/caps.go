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

package caps

import (
	"sort"
	"strings"

	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
)

// Tokens is an ordered set of grant tokens of one subsystem
type Tokens []string

// ParseTokens splits grant expression on commas, empty tokens are dropped
// and duplicates removed keeping first seen order
func ParseTokens(expr string) Tokens {
	return Tokens{}.Add(strings.Split(expr, ",")...)
}

// Add appends tokens which are not present yet, receiver is not modified
func (t Tokens) Add(tokens ...string) Tokens {
	merged := make(Tokens, 0, len(t)+len(tokens))
	seen := map[string]bool{}
	for _, token := range append(append([]string{}, t...), tokens...) {
		token = strings.TrimSpace(token)
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		merged = append(merged, token)
	}
	return merged
}

// Merge is append-only: existing tokens go first and are never dropped
func (t Tokens) Merge(other Tokens) Tokens {
	return t.Add(other...)
}

func (t Tokens) Contains(token string) bool {
	return cephcommon.Contains(t, token)
}

func (t Tokens) String() string {
	return strings.Join(t, ", ")
}

// Set maps subsystem to its grants, subsystems are always iterated in
// mon, mgr, osd, mds order
type Set map[string]Tokens

func NewSet(caps map[string]string) Set {
	set := Set{}
	for subsystem, expr := range caps {
		if tokens := ParseTokens(expr); len(tokens) > 0 {
			set[subsystem] = tokens
		}
	}
	return set
}

func (s Set) Merge(other Set) Set {
	merged := Set{}
	for _, subsystem := range s.subsystems(other) {
		if tokens := s[subsystem].Merge(other[subsystem]); len(tokens) > 0 {
			merged[subsystem] = tokens
		}
	}
	return merged
}

// FlatList returns alternating subsystem and grants list for non-empty
// subsystems, as auth commands expect
func (s Set) FlatList() []string {
	flat := []string{}
	for _, subsystem := range s.subsystems(nil) {
		if len(s[subsystem]) > 0 {
			flat = append(flat, subsystem, s[subsystem].String())
		}
	}
	return flat
}

func (s Set) Strings() map[string]string {
	out := map[string]string{}
	for subsystem, tokens := range s {
		if len(tokens) > 0 {
			out[subsystem] = tokens.String()
		}
	}
	return out
}

// unknown subsystems are kept after the known ones in sorted order
func (s Set) subsystems(other Set) []string {
	extra := []string{}
	for _, set := range []Set{s, other} {
		for subsystem := range set {
			if !cephcommon.Contains(cephcommon.CephCapsSubsystems, subsystem) && !cephcommon.Contains(extra, subsystem) {
				extra = append(extra, subsystem)
			}
		}
	}
	sort.Strings(extra)
	return append(append([]string{}, cephcommon.CephCapsSubsystems...), extra...)
}
