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
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"k8s.io/apimachinery/pkg/api/resource"
)

func Contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// SplitList splits comma and/or space separated values, e.g. "a, b c"
func SplitList(s string) []string {
	return strings.Fields(strings.ReplaceAll(s, ",", " "))
}

func ShowObjectDiff(l zerolog.Logger, oldObject, newObject interface{}) {
	oldObjectType := fmt.Sprintf("%T", oldObject)
	newObjectType := fmt.Sprintf("%T", newObject)
	if oldObjectType != newObjectType {
		l.Error().Msgf("can't compare two different object types: %s and %s", oldObjectType, newObjectType)
		return
	}
	resourceQtyComparer := cmp.Comparer(func(x, y resource.Quantity) bool { return x.Cmp(y) == 0 })
	diff := cmp.Diff(oldObject, newObject, resourceQtyComparer)
	if diff != "" {
		l.Debug().Msgf("object %s has changed, diff:\n%s", oldObjectType, diff)
	}
}

