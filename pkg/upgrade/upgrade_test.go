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

package upgrade

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Mirantis/ceph-connector/pkg/caps"
	"github.com/Mirantis/ceph-connector/pkg/cluster"
	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	unitinputs "github.com/Mirantis/ceph-connector/test/unit/inputs"
)

const (
	cephfsProvisioner = "client.csi-cephfs-provisioner"
	rbdNodeRestricted = "client.csi-rbd-node-k8s-a-replicapool"
)

func newTestUpgrader(fc *cluster.FakeConnection, scope caps.Scope, dryRun bool, out *bytes.Buffer) *Upgrader {
	log := cephcommon.NewLogger(&bytes.Buffer{}, false)
	return New(cluster.NewSession(fc, log, cluster.Options{DryRun: dryRun, DryRunOut: out}), scope, log)
}

func TestIdentities(t *testing.T) {
	defaults := []string{
		"client.csi-cephfs-node",
		"client.csi-cephfs-provisioner",
		"client.csi-rbd-node",
		"client.csi-rbd-provisioner",
		"client.healthchecker",
	}
	assert.Equal(t, defaults, Identities(""))
	assert.Equal(t, defaults, Identities("client.csi-rbd-node"))
	assert.Equal(t, append(defaults, "client.healthchecker-k8s-a"), Identities("client.healthchecker-k8s-a"))
}

func TestUpgradeUser(t *testing.T) {
	tests := []struct {
		name          string
		entity        string
		scope         caps.Scope
		existingCaps  map[string]string
		notFound      bool
		capsFailed    bool
		expectedCaps  []string
		expectedState State
		expectedError string
	}{
		{
			name:          "user not found",
			entity:        cephfsProvisioner,
			notFound:      true,
			expectedState: NotFound,
		},
		{
			name:   "cephfs provisioner mon caps are extended",
			entity: cephfsProvisioner,
			existingCaps: map[string]string{
				"mon": "allow r",
				"mgr": "allow rw",
				"osd": "allow rw tag cephfs metadata=*",
			},
			expectedCaps:  []string{"mon", "allow r, allow command 'osd blocklist'", "mgr", "allow rw", "osd", "allow rw tag cephfs metadata=*"},
			expectedState: Applied,
		},
		{
			name:   "existing custom grants are kept",
			entity: "client.csi-rbd-provisioner",
			existingCaps: map[string]string{
				"mon": "profile rbd",
				"osd": "profile rbd pool=custom,profile rbd",
			},
			expectedCaps:  []string{"mon", "profile rbd, allow command 'osd blocklist'", "mgr", "allow rw", "osd", "profile rbd pool=custom, profile rbd"},
			expectedState: Applied,
		},
		{
			name:   "health checker rgw pool prefix is inferred",
			entity: cephcommon.HealthCheckerClientName,
			existingCaps: map[string]string{
				"mon": "allow r, allow command quorum_status",
				"osd": "profile rbd-read-only, allow rwx pool=store-a.rgw.meta, allow r pool=.rgw.root",
			},
			expectedCaps: []string{
				"mon", "allow r, allow command quorum_status, allow command version",
				"mgr", "allow command config",
				"osd", "profile rbd-read-only, allow rwx pool=store-a.rgw.meta, allow r pool=.rgw.root, allow rw pool=store-a.rgw.control, allow rx pool=store-a.rgw.log, allow x pool=store-a.rgw.buckets.index",
			},
			expectedState: Applied,
		},
		{
			name:   "health checker rgw pool prefix from flags wins",
			entity: cephcommon.HealthCheckerClientName,
			scope:  caps.Scope{RgwPoolPrefix: "store-b"},
			existingCaps: map[string]string{
				"mon": "allow r, allow command quorum_status, allow command version",
				"mgr": "allow command config",
				"osd": "profile rbd-read-only",
			},
			expectedCaps: []string{
				"mon", "allow r, allow command quorum_status, allow command version",
				"mgr", "allow command config",
				"osd", "profile rbd-read-only, allow rwx pool=store-b.rgw.meta, allow r pool=.rgw.root, allow rw pool=store-b.rgw.control, allow rx pool=store-b.rgw.log, allow x pool=store-b.rgw.buckets.index",
			},
			expectedState: Applied,
		},
		{
			name:   "custom run as user is upgraded as health checker",
			entity: "client.monitoring",
			scope:  caps.Scope{RunAsUser: "client.monitoring"},
			existingCaps: map[string]string{
				"mon": "allow r, allow command quorum_status, allow command version",
				"mgr": "allow command config",
				"osd": "profile rbd-read-only, allow rwx pool=default.rgw.meta, allow r pool=.rgw.root, allow rw pool=default.rgw.control, allow rx pool=default.rgw.log, allow x pool=default.rgw.buckets.index",
			},
			expectedCaps: []string{
				"mon", "allow r, allow command quorum_status, allow command version",
				"mgr", "allow command config",
				"osd", "profile rbd-read-only, allow rwx pool=default.rgw.meta, allow r pool=.rgw.root, allow rw pool=default.rgw.control, allow rx pool=default.rgw.log, allow x pool=default.rgw.buckets.index",
			},
			expectedState: Applied,
		},
		{
			name:   "restricted rbd node",
			entity: rbdNodeRestricted,
			scope:  caps.Scope{K8sClusterName: "k8s-a", Pool: "replicapool"},
			existingCaps: map[string]string{
				"mon": "profile rbd",
				"osd": "profile rbd pool=replicapool",
			},
			expectedCaps:  []string{"mon", "profile rbd, allow command 'osd blocklist'", "osd", "profile rbd pool=replicapool"},
			expectedState: Applied,
		},
		{
			name:   "restricted rbd node without scope flags",
			entity: rbdNodeRestricted,
			existingCaps: map[string]string{
				"mon": "profile rbd",
				"osd": "profile rbd pool=replicapool",
			},
			expectedState: Found,
			expectedError: "mandatory flags not found, please set the '--rbd-data-pool-name' and '--k8s-cluster-name' flags",
		},
		{
			name:   "unknown user",
			entity: "client.admin",
			existingCaps: map[string]string{
				"mon": "allow *",
			},
			expectedState: Found,
			expectedError: "no role found for user 'client.admin'",
		},
		{
			name:   "auth caps failed",
			entity: cephfsProvisioner,
			existingCaps: map[string]string{
				"mon": "allow r",
			},
			capsFailed:    true,
			expectedState: CapsMerged,
			expectedError: "failed to update caps of user 'client.csi-cephfs-provisioner': 'auth caps' command failed with status -13: access denied",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fc := cluster.NewFakeConnection(unitinputs.CephFsid)
			if test.notFound {
				fc.SeedError(unitinputs.CmdAuthGet(test.entity), -2, "failed to find "+test.entity+" in keyring")
			} else {
				fc.Seed(unitinputs.CmdAuthGet(test.entity), unitinputs.AuthEntry(test.entity, unitinputs.CephFSProvisionerKey, test.existingCaps))
			}
			capsCmd := unitinputs.CmdAuthCaps(test.entity, test.expectedCaps...)
			if test.capsFailed {
				merged, _, _ := caps.ForRole(caps.CephFSProvisioner, false, caps.Scope{})
				capsCmd = unitinputs.CmdAuthCaps(test.entity, caps.NewSet(test.existingCaps).Merge(merged).FlatList()...)
				fc.SeedError(capsCmd, -13, "access denied")
			} else {
				fc.Seed(capsCmd, "")
			}

			outcome, err := newTestUpgrader(fc, test.scope, false, nil).User(test.entity)
			if test.expectedError != "" {
				assert.NotNil(t, err)
				assert.Equal(t, test.expectedError, err.Error())
			} else {
				assert.Nil(t, err)
			}
			assert.Equal(t, test.entity, outcome.Entity)
			assert.Equal(t, test.expectedState, outcome.State)
			if test.expectedState == Applied {
				assert.Equal(t, test.expectedCaps, outcome.Caps.FlatList())
				assert.Equal(t, []string{"auth get", "auth caps"}, fc.IssuedPrefixes())
				assert.Equal(t, 0, fc.CountIssued("auth get-or-create"))
			}
		})
	}
}

func TestUpgradeIsIdempotent(t *testing.T) {
	existing := map[string]string{"mon": "allow r", "mgr": "allow rw", "osd": "allow rw tag cephfs metadata=*"}
	fc := cluster.NewFakeConnection(unitinputs.CephFsid).Seed(unitinputs.CmdAuthGet(cephfsProvisioner), unitinputs.AuthEntry(cephfsProvisioner, unitinputs.CephFSProvisionerKey, existing))
	merged := []string{"mon", "allow r, allow command 'osd blocklist'", "mgr", "allow rw", "osd", "allow rw tag cephfs metadata=*"}
	fc.Seed(unitinputs.CmdAuthCaps(cephfsProvisioner, merged...), "")
	upgrader := newTestUpgrader(fc, caps.Scope{}, false, nil)

	first, err := upgrader.User(cephfsProvisioner)
	assert.Nil(t, err)

	// second run sees already merged caps
	fc.Replies[unitinputs.CmdAuthGet(cephfsProvisioner)] = []cluster.FakeReply{{Out: unitinputs.AuthEntry(cephfsProvisioner, unitinputs.CephFSProvisionerKey, first.Caps.Strings())}}
	second, err := upgrader.User(cephfsProvisioner)
	assert.Nil(t, err)
	assert.Equal(t, first.Caps, second.Caps)
	assert.Equal(t, merged, second.Caps.FlatList())
	assert.Equal(t, 2, fc.CountIssued("auth caps"))
}

func TestUpgradeRun(t *testing.T) {
	out := &bytes.Buffer{}
	fc := cluster.NewFakeConnection(unitinputs.CephFsid).SeedMap(map[string]string{
		unitinputs.CmdAuthGet("client.csi-rbd-node"): unitinputs.AuthEntry("client.csi-rbd-node", unitinputs.RBDNodeKey, map[string]string{"mon": "profile rbd", "osd": "profile rbd"}),
	})
	outcomes, err := newTestUpgrader(fc, caps.Scope{}, true, out).Run(Identities(""))
	assert.Nil(t, err)
	assert.Equal(t, []Outcome{
		{Entity: "client.csi-cephfs-node", State: NotFound},
		{Entity: "client.csi-cephfs-provisioner", State: NotFound},
		{
			Entity: "client.csi-rbd-node",
			State:  CapsMerged,
			Caps:   caps.Set{"mon": caps.Tokens{"profile rbd", "allow command 'osd blocklist'"}, "osd": caps.Tokens{"profile rbd"}},
		},
		{Entity: "client.csi-rbd-provisioner", State: NotFound},
		{Entity: "client.healthchecker", State: NotFound},
	}, outcomes)
	// dry run only echoes caps update
	assert.Equal(t, "Execute: 'ceph auth caps client.csi-rbd-node mon \"profile rbd, allow command 'osd blocklist'\" osd \"profile rbd\"'\n", out.String())
	assert.Equal(t, 0, fc.CountIssued("auth caps"))
}

func TestInferRgwPoolPrefix(t *testing.T) {
	assert.Equal(t, "store-a", InferRgwPoolPrefix(caps.NewSet(map[string]string{"osd": "profile rbd-read-only, allow rwx pool=store-a.rgw.meta"})))
	assert.Equal(t, "default", InferRgwPoolPrefix(caps.NewSet(map[string]string{"osd": "profile rbd-read-only"})))
	assert.Equal(t, "default", InferRgwPoolPrefix(caps.Set{}))
}
