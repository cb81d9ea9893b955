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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTokens(t *testing.T) {
	assert.Equal(t, Tokens{}, ParseTokens(""))
	assert.Equal(t, Tokens{"allow r", "allow command 'osd blocklist'"}, ParseTokens(" allow r,, allow command 'osd blocklist' ,allow r"))
	assert.Equal(t, "allow r, allow command 'osd blocklist'", ParseTokens("allow r,allow command 'osd blocklist'").String())
}

func TestTokensMerge(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		required string
		expected string
	}{
		{
			name:     "new tokens appended",
			existing: "allow r",
			required: "allow r, allow command 'osd blocklist'",
			expected: "allow r, allow command 'osd blocklist'",
		},
		{
			name:     "existing tokens kept in place",
			existing: "allow rw tag cephfs metadata=*, allow rwx pool=extra",
			required: "allow rw tag cephfs metadata=*",
			expected: "allow rw tag cephfs metadata=*, allow rwx pool=extra",
		},
		{
			name:     "nothing existing",
			existing: "",
			required: "profile rbd",
			expected: "profile rbd",
		},
		{
			name:     "nothing required",
			existing: "profile rbd",
			required: "",
			expected: "profile rbd",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			existing := ParseTokens(test.existing)
			required := ParseTokens(test.required)
			merged := existing.Merge(required)
			assert.Equal(t, test.expected, merged.String())
			// monotonic
			for _, token := range existing {
				assert.True(t, merged.Contains(token))
			}
			// idempotent
			assert.Equal(t, merged, merged.Merge(required))
			// receiver is untouched
			assert.Equal(t, ParseTokens(test.existing), existing)
		})
	}
}

func TestSetMerge(t *testing.T) {
	existing := NewSet(map[string]string{
		"mon": "allow r",
		"mgr": "allow rw",
		"osd": "allow rw tag cephfs metadata=*",
	})
	required, _, err := ForRole(CephFSProvisioner, false, Scope{})
	assert.Nil(t, err)

	merged := existing.Merge(required)
	assert.Equal(t, map[string]string{
		"mon": "allow r, allow command 'osd blocklist'",
		"mgr": "allow rw",
		"osd": "allow rw tag cephfs metadata=*",
	}, merged.Strings())
	assert.Equal(t, []string{"mon", "allow r, allow command 'osd blocklist'", "mgr", "allow rw", "osd", "allow rw tag cephfs metadata=*"}, merged.FlatList())
	assert.Equal(t, merged, merged.Merge(required))

	withExtra := NewSet(map[string]string{"mds": "allow rw", "zz": "allow all", "mon": "allow r"})
	assert.Equal(t, []string{"mon", "allow r", "mds", "allow rw", "zz", "allow all"}, withExtra.FlatList())
}

func TestForRole(t *testing.T) {
	tests := []struct {
		name           string
		role           Role
		restricted     bool
		scope          Scope
		expectedCaps   map[string]string
		expectedEntity string
		expectedError  string
	}{
		{
			name: "health checker with default prefix",
			role: HealthChecker,
			expectedCaps: map[string]string{
				"mon": "allow r, allow command quorum_status, allow command version",
				"mgr": "allow command config",
				"osd": "profile rbd-read-only, allow rwx pool=default.rgw.meta, allow r pool=.rgw.root, allow rw pool=default.rgw.control, allow rx pool=default.rgw.log, allow x pool=default.rgw.buckets.index",
			},
			expectedEntity: "client.healthchecker",
		},
		{
			name:       "health checker is never restricted",
			role:       HealthChecker,
			restricted: true,
			scope:      Scope{RunAsUser: "client.checker", RgwPoolPrefix: "store", K8sClusterName: "k8s"},
			expectedCaps: map[string]string{
				"mon": "allow r, allow command quorum_status, allow command version",
				"mgr": "allow command config",
				"osd": "profile rbd-read-only, allow rwx pool=store.rgw.meta, allow r pool=.rgw.root, allow rw pool=store.rgw.control, allow rx pool=store.rgw.log, allow x pool=store.rgw.buckets.index",
			},
			expectedEntity: "client.checker",
		},
		{
			name: "rbd node",
			role: RBDNode,
			expectedCaps: map[string]string{
				"mon": "profile rbd, allow command 'osd blocklist'",
				"osd": "profile rbd",
			},
			expectedEntity: "client.csi-rbd-node",
		},
		{
			name: "rbd provisioner",
			role: RBDProvisioner,
			expectedCaps: map[string]string{
				"mon": "profile rbd, allow command 'osd blocklist'",
				"mgr": "allow rw",
				"osd": "profile rbd",
			},
			expectedEntity: "client.csi-rbd-provisioner",
		},
		{
			name:       "restricted rbd provisioner",
			role:       RBDProvisioner,
			restricted: true,
			scope:      Scope{K8sClusterName: "k8s", Pool: "replicapool"},
			expectedCaps: map[string]string{
				"mon": "profile rbd, allow command 'osd blocklist'",
				"mgr": "allow rw",
				"osd": "profile rbd pool=replicapool",
			},
			expectedEntity: "client.csi-rbd-provisioner-k8s-replicapool",
		},
		{
			name:       "restricted rbd node with namespace and alias",
			role:       RBDNode,
			restricted: true,
			scope:      Scope{K8sClusterName: "k8s", Pool: "replica.pool", PoolAlias: "replicapool", RadosNamespace: "ns-1"},
			expectedCaps: map[string]string{
				"mon": "profile rbd, allow command 'osd blocklist'",
				"osd": "profile rbd pool=replica.pool namespace=ns-1",
			},
			expectedEntity: "client.csi-rbd-node-k8s-replicapool-ns-1",
		},
		{
			name:          "restricted rbd without cluster name",
			role:          RBDNode,
			restricted:    true,
			scope:         Scope{Pool: "replicapool"},
			expectedError: "mandatory flags not found, please set the '--rbd-data-pool-name' and '--k8s-cluster-name' flags",
		},
		{
			name:          "restricted rbd with bad pool name",
			role:          RBDNode,
			restricted:    true,
			scope:         Scope{K8sClusterName: "k8s", Pool: "replica_pool"},
			expectedError: "pool name 'replica_pool' contains '.' or '_' characters which are not allowed in user names, please set '--alias-rbd-data-pool-name'",
		},
		{
			name: "cephfs node",
			role: CephFSNode,
			expectedCaps: map[string]string{
				"mon": "allow r, allow command 'osd blocklist'",
				"mgr": "allow rw",
				"osd": "allow rw tag cephfs *=*",
				"mds": "allow rw",
			},
			expectedEntity: "client.csi-cephfs-node",
		},
		{
			name:       "restricted cephfs node with filesystem",
			role:       CephFSNode,
			restricted: true,
			scope:      Scope{K8sClusterName: "k8s", Filesystem: "myfs"},
			expectedCaps: map[string]string{
				"mon": "allow r, allow command 'osd blocklist'",
				"mgr": "allow rw",
				"osd": "allow rw tag cephfs *=myfs",
				"mds": "allow rw",
			},
			expectedEntity: "client.csi-cephfs-node-k8s-myfs",
		},
		{
			name:       "restricted cephfs provisioner without filesystem",
			role:       CephFSProvisioner,
			restricted: true,
			scope:      Scope{K8sClusterName: "k8s"},
			expectedCaps: map[string]string{
				"mon": "allow r, allow command 'osd blocklist'",
				"mgr": "allow rw",
				"osd": "allow rw tag cephfs metadata=*",
			},
			expectedEntity: "client.csi-cephfs-provisioner-k8s",
		},
		{
			name:          "restricted cephfs without cluster name",
			role:          CephFSProvisioner,
			restricted:    true,
			expectedError: "k8s cluster name not found, please set the '--k8s-cluster-name' flag",
		},
		{
			name:          "unknown role",
			role:          Role("rgw"),
			expectedError: "unknown role 'rgw'",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			set, entity, err := ForRole(test.role, test.restricted, test.scope)
			if test.expectedError != "" {
				assert.NotNil(t, err)
				assert.Equal(t, test.expectedError, err.Error())
				assert.Nil(t, set)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, test.expectedCaps, set.Strings())
			}
			assert.Equal(t, test.expectedEntity, entity)
		})
	}
}

func TestRestrictedNamingIsDeterministic(t *testing.T) {
	scope := Scope{K8sClusterName: "k8s", Pool: "pool-a"}
	_, first, err := ForRole(RBDProvisioner, true, scope)
	assert.Nil(t, err)
	_, second, err := ForRole(RBDProvisioner, true, scope)
	assert.Nil(t, err)
	assert.Equal(t, first, second)

	_, otherPool, err := ForRole(RBDProvisioner, true, Scope{K8sClusterName: "k8s", Pool: "pool-b"})
	assert.Nil(t, err)
	_, otherCluster, err := ForRole(RBDProvisioner, true, Scope{K8sClusterName: "k8s-2", Pool: "pool-a"})
	assert.Nil(t, err)
	_, unscoped, err := ForRole(RBDProvisioner, false, scope)
	assert.Nil(t, err)
	assert.NotEqual(t, first, otherPool)
	assert.NotEqual(t, first, otherCluster)
	assert.NotEqual(t, first, unscoped)
}

func TestPoolSegment(t *testing.T) {
	tests := []struct {
		name          string
		pool          string
		alias         string
		expected      string
		expectedError string
	}{
		{
			name:     "plain pool",
			pool:     "replicapool",
			expected: "replicapool",
		},
		{
			name:     "alias wins",
			pool:     "replica.pool",
			alias:    "replicapool",
			expected: "replicapool",
		},
		{
			name:          "alias with bad characters",
			pool:          "replica.pool",
			alias:         "replica_pool",
			expectedError: "alias 'replica_pool' for pool 'replica.pool' must not contain '.' or '_' characters",
		},
		{
			name:          "pool with dot and no alias",
			pool:          "replica.pool",
			expectedError: "pool name 'replica.pool' contains '.' or '_' characters which are not allowed in user names, please set '--alias-rbd-data-pool-name'",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			segment, err := PoolSegment(test.pool, test.alias)
			if test.expectedError != "" {
				assert.NotNil(t, err)
				assert.Equal(t, test.expectedError, err.Error())
			} else {
				assert.Nil(t, err)
			}
			assert.Equal(t, test.expected, segment)
		})
	}
}

func TestRoleForEntity(t *testing.T) {
	tests := []struct {
		entity             string
		expectedRole       Role
		expectedRestricted bool
		expectedError      string
	}{
		{entity: "client.csi-rbd-node", expectedRole: RBDNode},
		{entity: "client.csi-rbd-node-k8s-replicapool", expectedRole: RBDNode, expectedRestricted: true},
		{entity: "client.csi-rbd-provisioner-k8s-replicapool-ns", expectedRole: RBDProvisioner, expectedRestricted: true},
		{entity: "client.csi-cephfs-node", expectedRole: CephFSNode},
		{entity: "client.csi-cephfs-provisioner-k8s-myfs", expectedRole: CephFSProvisioner, expectedRestricted: true},
		{entity: "client.healthchecker", expectedRole: HealthChecker},
		{entity: "client.healthchecker-k8s", expectedRole: HealthChecker},
		{entity: "client.admin", expectedError: "no role found for user 'client.admin'"},
		{entity: "client.csi-rbd-nodes", expectedError: "no role found for user 'client.csi-rbd-nodes'"},
	}
	for _, test := range tests {
		t.Run(test.entity, func(t *testing.T) {
			role, restricted, err := RoleForEntity(test.entity)
			if test.expectedError != "" {
				assert.NotNil(t, err)
				assert.Equal(t, test.expectedError, err.Error())
			} else {
				assert.Nil(t, err)
			}
			assert.Equal(t, test.expectedRole, role)
			assert.Equal(t, test.expectedRestricted, restricted)
		})
	}
}
