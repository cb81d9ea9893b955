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

package helpers

import (
	"fmt"

	"github.com/pkg/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	gotesting "k8s.io/client-go/testing"
)

// kindFixture serves fake clientset actions for a single resource kind,
// objects are kept in the list object passed from test, so all changes
// done by code under test are visible in test resources map
type kindFixture struct {
	resource  string
	list      runtime.Object
	apiErrors map[string]error
}

func newKindFixture(verb, resource string, resources map[string]runtime.Object, apiErrors map[string]error) *kindFixture {
	f := &kindFixture{resource: resource, apiErrors: apiErrors}
	if resources != nil {
		f.list = resources[resource]
	}
	switch {
	case f.list == nil:
		f.apiErrors = map[string]error{f.errorKey(verb, ""): f.fixtureError(verb, "list object is not specified in test")}
	case !supportedKinds[resource]:
		f.apiErrors = map[string]error{f.errorKey(verb, ""): f.fixtureError(verb, "type is not supported in fakeclient fixture")}
	}
	return f
}

func (f *kindFixture) errorKey(verb, name string) string {
	if name == "" {
		return fmt.Sprintf("%s-%s", verb, f.resource)
	}
	return fmt.Sprintf("%s-%s-%s", verb, f.resource, name)
}

func (f *kindFixture) fixtureError(verb, reason string) error {
	return errors.Errorf("failed to %s resource(s) kind of '%s': %s", verb, f.resource, reason)
}

// apiError returns error set for the whole kind first, then for the object
func (f *kindFixture) apiError(verb, name string) error {
	if err := f.apiErrors[f.errorKey(verb, "")]; err != nil {
		return err
	}
	if name != "" {
		return f.apiErrors[f.errorKey(verb, name)]
	}
	return nil
}

func (f *kindFixture) notFound(name string) error {
	return apierrors.NewNotFound(schema.GroupResource{Group: f.list.GetObjectKind().GroupVersionKind().Group, Resource: f.resource}, name)
}

// lookup returns list items and index of object with name and namespace,
// index is -1 when object is absent
func (f *kindFixture) lookup(name, namespace string) ([]runtime.Object, int, error) {
	items, err := meta.ExtractList(f.list)
	if err != nil {
		return nil, -1, err
	}
	for idx, item := range items {
		itemMeta, err := meta.Accessor(item)
		if err != nil {
			return nil, -1, err
		}
		if itemMeta.GetName() == name && itemMeta.GetNamespace() == namespace {
			return items, idx, nil
		}
	}
	return items, -1, nil
}

func (f *kindFixture) listAll(_ gotesting.Action) (bool, runtime.Object, error) {
	if err := f.apiError("list", ""); err != nil {
		return true, nil, err
	}
	// field and label selectors are ignored, whole list is returned
	return true, f.list.DeepCopyObject(), nil
}

func (f *kindFixture) get(action gotesting.Action) (bool, runtime.Object, error) {
	getAction := action.(gotesting.GetActionImpl)
	if err := f.apiError("get", getAction.Name); err != nil {
		return true, nil, err
	}
	items, idx, err := f.lookup(getAction.Name, getAction.Namespace)
	if err != nil {
		return true, nil, err
	}
	if idx < 0 {
		return true, nil, f.notFound(getAction.Name)
	}
	return true, items[idx].DeepCopyObject(), nil
}

func (f *kindFixture) create(action gotesting.Action) (bool, runtime.Object, error) {
	obj := action.(gotesting.CreateActionImpl).Object
	objMeta, err := meta.Accessor(obj)
	if err != nil {
		return true, nil, errors.Wrap(err, "failed to access meta")
	}
	if err := f.apiError("create", objMeta.GetName()); err != nil {
		return true, nil, err
	}
	items, idx, err := f.lookup(objMeta.GetName(), objMeta.GetNamespace())
	if err != nil {
		return true, nil, err
	}
	if idx >= 0 {
		return true, nil, errors.Errorf("can't create resource %s with name %s: already exists", f.resource, objMeta.GetName())
	}
	if err := meta.SetList(f.list, append(items, obj)); err != nil {
		return true, nil, err
	}
	return true, obj, nil
}

func (f *kindFixture) update(action gotesting.Action) (bool, runtime.Object, error) {
	obj := action.(gotesting.UpdateActionImpl).Object
	objMeta, err := meta.Accessor(obj)
	if err != nil {
		return true, nil, errors.Wrap(err, "failed to access meta")
	}
	if err := f.apiError("update", objMeta.GetName()); err != nil {
		return true, nil, err
	}
	items, idx, err := f.lookup(objMeta.GetName(), objMeta.GetNamespace())
	if err != nil {
		return true, nil, err
	}
	if idx < 0 {
		return true, nil, f.notFound(objMeta.GetName())
	}
	items[idx] = obj
	if err := meta.SetList(f.list, items); err != nil {
		return true, nil, err
	}
	return true, obj, nil
}

func addReaction(fakeClient *gotesting.Fake, verb, resource string, resources map[string]runtime.Object, apiErrors map[string]error) {
	f := newKindFixture(verb, resource, resources, apiErrors)
	var reaction gotesting.ReactionFunc
	switch verb {
	case "list":
		reaction = f.listAll
	case "get":
		reaction = f.get
	case "create":
		reaction = f.create
	case "update":
		reaction = f.update
	default:
		panic(fmt.Sprintf("verb '%s' is not supported by fakeclient fixture", verb))
	}
	fakeClient.AddReactor(verb, resource, reaction)
}

func cleanupFakeClientReactions(fakeClient *gotesting.Fake) {
	fakeClient.ReactionChain = nil
	fakeClient.WatchReactionChain = nil
	fakeClient.ProxyReactionChain = nil
	fakeClient.ClearActions()
}

// PrepareExpectedResources completes expected resources with copies of
// input lists, which are not changed by test
func PrepareExpectedResources(input, expected map[string]runtime.Object) map[string]runtime.Object {
	if input == nil {
		return expected
	}
	if expected == nil {
		expected = make(map[string]runtime.Object, len(input))
	}
	for kind, list := range input {
		if _, ok := expected[kind]; !ok {
			expected[kind] = list.DeepCopyObject()
		}
	}
	return expected
}
