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
	snapshotclient "github.com/kubernetes-csi/external-snapshotter/client/v6/clientset/versioned"
	fakesnapshot "github.com/kubernetes-csi/external-snapshotter/client/v6/clientset/versioned/fake"
	fakesnapshotv1 "github.com/kubernetes-csi/external-snapshotter/client/v6/clientset/versioned/typed/volumesnapshot/v1/fake"
	rookclient "github.com/rook/rook/pkg/client/clientset/versioned"
	fakerook "github.com/rook/rook/pkg/client/clientset/versioned/fake"
	fakecephv1 "github.com/rook/rook/pkg/client/clientset/versioned/typed/ceph.rook.io/v1/fake"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	fakekube "k8s.io/client-go/kubernetes/fake"
	fakeappsv1 "k8s.io/client-go/kubernetes/typed/apps/v1/fake"
	fakecorev1 "k8s.io/client-go/kubernetes/typed/core/v1/fake"
	fakestorage "k8s.io/client-go/kubernetes/typed/storage/v1/fake"
	gotesting "k8s.io/client-go/testing"
)

// kinds served by fixture reactions, grouped by clientset
var supportedKinds = map[string]bool{
	"cephclusters":                 true,
	"cephblockpoolradosnamespaces": true,

	"volumesnapshotclasses": true,

	"configmaps":     true,
	"deployments":    true,
	"pods":           true,
	"secrets":        true,
	"storageclasses": true,
}

// Fake clientsets are returned without default object tracker reactions,
// so every call made by tested code must have a fixture reaction added.

func GetFakeKubeclient(objects ...runtime.Object) kubernetes.Interface {
	cs := fakekube.NewSimpleClientset(objects...)
	cs.ReactionChain = nil
	return cs
}

func GetFakeRookclient(objects ...runtime.Object) rookclient.Interface {
	cs := fakerook.NewSimpleClientset(objects...)
	cs.ReactionChain = nil
	return cs
}

func GetFakeSnapshotclient(objects ...runtime.Object) snapshotclient.Interface {
	cs := fakesnapshot.NewSimpleClientset(objects...)
	cs.ReactionChain = nil
	return cs
}

// fakeFor returns testing fake behind clientset or typed client, empty
// fake is returned for unknown clients
func fakeFor(client interface{}) *gotesting.Fake {
	switch c := client.(type) {
	case *gotesting.Fake:
		return c
	case *fakekube.Clientset:
		return &c.Fake
	case *fakeappsv1.FakeAppsV1:
		return c.Fake
	case *fakecorev1.FakeCoreV1:
		return c.Fake
	case *fakestorage.FakeStorageV1:
		return c.Fake
	case *fakecephv1.FakeCephV1:
		return c.Fake
	case rookclient.Interface:
		return fakeFor(c.CephV1())
	case *fakesnapshotv1.FakeSnapshotV1:
		return c.Fake
	case snapshotclient.Interface:
		return fakeFor(c.SnapshotV1())
	}
	return &gotesting.Fake{}
}

// FakeReaction adds reaction for verb on each resource kind, objects are
// taken from and stored to inputResources lists; apiErrors keys are
// '<verb>-<kind>' or '<verb>-<kind>-<name>'
func FakeReaction(client interface{}, verb string, resources []string, inputResources map[string]runtime.Object, apiErrors map[string]error) {
	fake := fakeFor(client)
	for _, resource := range resources {
		addReaction(fake, verb, resource, inputResources, apiErrors)
	}
}

func CleanupFakeClientReactions(client interface{}) {
	cleanupFakeClientReactions(fakeFor(client))
}
