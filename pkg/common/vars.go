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

const (
	// HealthCheckerClientName is the default user for cluster health checks
	HealthCheckerClientName = "client.healthchecker"
	// CephCSIRBDNodeClientName is the name of CSI RBD node client
	CephCSIRBDNodeClientName = "client.csi-rbd-node"
	// CephCSIRBDProvisionerClientName is the name of CSI RBD provisioner client
	CephCSIRBDProvisionerClientName = "client.csi-rbd-provisioner"
	// CephCSICephFSNodeClientName is the name of CSI CephFS node client
	CephCSICephFSNodeClientName = "client.csi-cephfs-node"
	// CephCSICephFSProvisionerClientName is the name of CSI CephFS provisioner client
	CephCSICephFSProvisionerClientName = "client.csi-cephfs-provisioner"

	// rgw admin ops user
	RgwAdminOpsUserName        = "rgw-admin-ops-user"
	RgwAdminOpsUserDisplayName = "Rook RGW Admin Ops user"
	RgwAdminOpsUserCaps        = "info=read;buckets=*;users=*;usage=read;metadata=read;zone=read"

	DefaultRgwPoolPrefix          = "default"
	DefaultMonitoringEndpointPort = "9283"
	DefaultSubvolumeGroup         = "csi"
	DefaultRookNamespace          = "rook-ceph"
	EmptyOutputList               = "Empty output list"

	// rook related objects
	RookCephMonSecretName        = "rook-ceph-mon"
	MonMapConfigMapName          = "rook-ceph-mon-endpoints"
	RookOperatorCredsSecretName  = "rook-ceph-operator-creds"
	RookDashboardLinkSecretName  = "rook-ceph-dashboard-link"
	RgwAdminOpsUserSecretName    = "rgw-admin-ops-user"
	RgwTLSCertSecretName         = "ceph-rgw-tls-cert"
	MonitoringEndpointRecordName = "monitoring-endpoint"
	RBDStorageClassName          = "ceph-rbd"
	RBDTopologyStorageClassName  = "ceph-rbd-topology"
	CephFSStorageClassName       = "cephfs"
	RgwStorageClassName          = "ceph-rgw"

	// toolbox to run radosgw-admin in
	RookToolBoxLabel      = "app=rook-ceph-tools"
	RunCephCommandTimeout = 10
)

var (
	// subsystems order is stable for caps commands
	CephCapsSubsystems = []string{"mon", "mgr", "osd", "mds"}
)
