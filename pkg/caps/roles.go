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
	"fmt"
	"strings"

	"github.com/pkg/errors"

	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
)

type Role string

const (
	HealthChecker     Role = "healthchecker"
	RBDNode           Role = "rbd-node"
	RBDProvisioner    Role = "rbd-provisioner"
	CephFSNode        Role = "cephfs-node"
	CephFSProvisioner Role = "cephfs-provisioner"
)

// Scope holds everything identity names and restricted caps are built from
type Scope struct {
	// K8sClusterName is the consumer cluster name
	K8sClusterName string
	Pool           string
	PoolAlias      string
	RadosNamespace string
	Filesystem     string
	RgwPoolPrefix  string
	// RunAsUser is the health checker entity
	RunAsUser string
}

const (
	healthCheckerMonCaps = "allow r, allow command quorum_status, allow command version"
	healthCheckerMgrCaps = "allow command config"
	healthCheckerOsdCaps = "profile rbd-read-only, allow rwx pool={p}.rgw.meta, allow r pool=.rgw.root, allow rw pool={p}.rgw.control, allow rx pool={p}.rgw.log, allow x pool={p}.rgw.buckets.index"

	rbdMonCaps    = "profile rbd, allow command 'osd blocklist'"
	cephfsMonCaps = "allow r, allow command 'osd blocklist'"
)

var roleEntities = map[Role]string{
	HealthChecker:     cephcommon.HealthCheckerClientName,
	RBDNode:           cephcommon.CephCSIRBDNodeClientName,
	RBDProvisioner:    cephcommon.CephCSIRBDProvisionerClientName,
	CephFSNode:        cephcommon.CephCSICephFSNodeClientName,
	CephFSProvisioner: cephcommon.CephCSICephFSProvisionerClientName,
}

// ForRole returns minimal caps and entity name for a role. Restricted mode
// narrows osd caps and adds scope suffix to the name, health checker is
// never restricted.
func ForRole(role Role, restricted bool, scope Scope) (Set, string, error) {
	switch role {
	case HealthChecker:
		return healthChecker(scope)
	case RBDNode, RBDProvisioner:
		return rbd(role, restricted, scope)
	case CephFSNode, CephFSProvisioner:
		return cephfs(role, restricted, scope)
	}
	return nil, "", errors.Errorf("unknown role '%s'", role)
}

func healthChecker(scope Scope) (Set, string, error) {
	entity := scope.RunAsUser
	if entity == "" {
		entity = cephcommon.HealthCheckerClientName
	}
	prefix := scope.RgwPoolPrefix
	if prefix == "" {
		prefix = cephcommon.DefaultRgwPoolPrefix
	}
	return NewSet(map[string]string{
		"mon": healthCheckerMonCaps,
		"mgr": healthCheckerMgrCaps,
		"osd": strings.ReplaceAll(healthCheckerOsdCaps, "{p}", prefix),
	}), entity, nil
}

func rbd(role Role, restricted bool, scope Scope) (Set, string, error) {
	entity := roleEntities[role]
	caps := map[string]string{
		"mon": rbdMonCaps,
		"osd": "profile rbd",
	}
	if role == RBDProvisioner {
		caps["mgr"] = "allow rw"
	}
	if restricted {
		if scope.Pool == "" || scope.K8sClusterName == "" {
			return nil, "", cephcommon.NewConfigError("mandatory flags not found, please set the '--rbd-data-pool-name' and '--k8s-cluster-name' flags")
		}
		poolSegment, err := PoolSegment(scope.Pool, scope.PoolAlias)
		if err != nil {
			return nil, "", err
		}
		entity = fmt.Sprintf("%s-%s-%s", entity, scope.K8sClusterName, poolSegment)
		caps["osd"] = "profile rbd pool=" + scope.Pool
		if scope.RadosNamespace != "" {
			entity = fmt.Sprintf("%s-%s", entity, scope.RadosNamespace)
			caps["osd"] = fmt.Sprintf("%s namespace=%s", caps["osd"], scope.RadosNamespace)
		}
	}
	return NewSet(caps), entity, nil
}

func cephfs(role Role, restricted bool, scope Scope) (Set, string, error) {
	entity := roleEntities[role]
	caps := map[string]string{
		"mon": cephfsMonCaps,
		"mgr": "allow rw",
	}
	osdTag := "metadata"
	if role == CephFSNode {
		osdTag = "*"
		caps["mds"] = "allow rw"
	}
	fs := "*"
	if restricted {
		if scope.K8sClusterName == "" {
			return nil, "", cephcommon.NewConfigError("k8s cluster name not found, please set the '--k8s-cluster-name' flag")
		}
		entity = fmt.Sprintf("%s-%s", entity, scope.K8sClusterName)
		if scope.Filesystem != "" {
			entity = fmt.Sprintf("%s-%s", entity, scope.Filesystem)
			fs = scope.Filesystem
		}
	}
	caps["osd"] = fmt.Sprintf("allow rw tag cephfs %s=%s", osdTag, fs)
	return NewSet(caps), entity, nil
}

// PoolSegment returns pool name part for restricted user names. Pool names
// with '.' or '_' require an alias without them.
func PoolSegment(pool, alias string) (string, error) {
	if alias != "" {
		if strings.ContainsAny(alias, "._") {
			return "", cephcommon.NewConfigError("alias '%s' for pool '%s' must not contain '.' or '_' characters", alias, pool)
		}
		return alias, nil
	}
	if strings.ContainsAny(pool, "._") {
		return "", cephcommon.NewConfigError("pool name '%s' contains '.' or '_' characters which are not allowed in user names, please set '--alias-rbd-data-pool-name'", pool)
	}
	return pool, nil
}

// RoleForEntity detects role of an existing entity, names with a suffix
// are restricted ones
func RoleForEntity(entity string) (Role, bool, error) {
	for _, role := range []Role{CephFSProvisioner, CephFSNode, RBDProvisioner, RBDNode, HealthChecker} {
		base := roleEntities[role]
		if entity == base {
			return role, false, nil
		}
		if strings.HasPrefix(entity, base+"-") {
			// health checker user name is a free form
			return role, role != HealthChecker, nil
		}
	}
	return "", false, errors.Errorf("no role found for user '%s'", entity)
}
