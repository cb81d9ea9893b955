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
	"strings"

	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	"github.com/Mirantis/ceph-connector/pkg/validation"
)

const (
	KeyNamespace                   = "NAMESPACE"
	KeyK8sClusterName              = "K8S_CLUSTER_NAME"
	KeyFSID                        = "ROOK_EXTERNAL_FSID"
	KeyUsername                    = "ROOK_EXTERNAL_USERNAME"
	KeyMonData                     = "ROOK_EXTERNAL_CEPH_MON_DATA"
	KeyUserSecret                  = "ROOK_EXTERNAL_USER_SECRET"
	KeyDashboardLink               = "ROOK_EXTERNAL_DASHBOARD_LINK"
	KeyRBDNodeSecret               = "CSI_RBD_NODE_SECRET"
	KeyRBDNodeSecretName           = "CSI_RBD_NODE_SECRET_NAME"
	KeyRBDProvisionerSecret        = "CSI_RBD_PROVISIONER_SECRET"
	KeyRBDProvisionerSecretName    = "CSI_RBD_PROVISIONER_SECRET_NAME"
	KeyCephFSPoolName              = "CEPHFS_POOL_NAME"
	KeyCephFSMetadataPoolName      = "CEPHFS_METADATA_POOL_NAME"
	KeyCephFSName                  = "CEPHFS_FS_NAME"
	KeyRestrictedAuthPermission    = "RESTRICTED_AUTH_PERMISSION"
	KeyRadosNamespace              = "RADOS_NAMESPACE"
	KeySubvolumeGroup              = "SUBVOLUME_GROUP"
	KeyCephFSNodeSecret            = "CSI_CEPHFS_NODE_SECRET"
	KeyCephFSNodeSecretName        = "CSI_CEPHFS_NODE_SECRET_NAME"
	KeyCephFSProvisionerSecret     = "CSI_CEPHFS_PROVISIONER_SECRET"
	KeyCephFSProvisionerSecretName = "CSI_CEPHFS_PROVISIONER_SECRET_NAME"
	KeyRgwEndpoint                 = "RGW_ENDPOINT"
	KeyRgwTLSCert                  = "RGW_TLS_CERT"
	KeyMonitoringEndpoint          = "MONITORING_ENDPOINT"
	KeyMonitoringEndpointPort      = "MONITORING_ENDPOINT_PORT"
	KeyRBDPoolName                 = "RBD_POOL_NAME"
	KeyRBDMetadataECPoolName       = "RBD_METADATA_EC_POOL_NAME"
	KeyRgwPoolPrefix               = "RGW_POOL_PREFIX"
	KeyRgwRealmName                = "RGW_REALM_NAME"
	KeyRgwZoneGroupName            = "RGW_ZONEGROUP_NAME"
	KeyRgwZoneName                 = "RGW_ZONE_NAME"
	KeyRgwAdminOpsAccessKey        = "RGW_ADMIN_OPS_USER_ACCESS_KEY"
	KeyRgwAdminOpsSecretKey        = "RGW_ADMIN_OPS_USER_SECRET_KEY"
	KeyTopologyPools               = "TOPOLOGY_POOLS"
	KeyTopologyFailureDomainLabel  = "TOPOLOGY_FAILURE_DOMAIN_LABEL"
	KeyTopologyFailureDomainValues = "TOPOLOGY_FAILURE_DOMAIN_VALUES"
)

// keys never exported to shell
var excludedKeys = []string{KeyK8sClusterName}

// Result is the connection and credentials bundle built once per run.
// Users are full entity names, e.g. 'client.csi-rbd-node'.
type Result struct {
	Namespace      string
	K8sClusterName string
	FSID           string
	Username       string
	MonData        string
	UserSecret     string
	DashboardLink  string

	RBDNodeUser          string
	RBDNodeSecret        string
	RBDProvisionerUser   string
	RBDProvisionerSecret string
	RBDPoolName          string
	RBDMetadataECPool    string
	RadosNamespace       string

	CephFSName              string
	CephFSMetadataPool      string
	CephFSDataPool          string
	SubvolumeGroup          string
	CephFSNodeUser          string
	CephFSNodeSecret        string
	CephFSProvisionerUser   string
	CephFSProvisionerSecret string

	RestrictedAuthPermission bool

	RgwEndpoint          string
	RgwTLSCert           string
	RgwPoolPrefix        string
	RgwRealm             string
	RgwZoneGroup         string
	RgwZone              string
	RgwAdminOpsAccessKey string
	RgwAdminOpsSecretKey string

	MonitoringEndpoint     string
	MonitoringEndpointPort string

	TopologyPools               []string
	TopologyFailureDomainLabel  string
	TopologyFailureDomainValues []string

	Diagnostics []validation.Diagnostic
}

type KeyValue struct {
	Key   string
	Value string
}

// secretName returns user name without 'client.' prefix
func secretName(user string) string {
	return strings.TrimPrefix(user, "client.")
}

func boolValue(b bool) string {
	if b {
		return "true"
	}
	return ""
}

// Values flattens result into ordered key list, every key is present even
// when its value is empty
func (r *Result) Values() []KeyValue {
	return []KeyValue{
		{KeyNamespace, r.Namespace},
		{KeyK8sClusterName, r.K8sClusterName},
		{KeyFSID, r.FSID},
		{KeyUsername, r.Username},
		{KeyMonData, r.MonData},
		{KeyUserSecret, r.UserSecret},
		{KeyDashboardLink, r.DashboardLink},
		{KeyRBDNodeSecret, r.RBDNodeSecret},
		{KeyRBDNodeSecretName, secretName(r.RBDNodeUser)},
		{KeyRBDProvisionerSecret, r.RBDProvisionerSecret},
		{KeyRBDProvisionerSecretName, secretName(r.RBDProvisionerUser)},
		{KeyCephFSPoolName, r.CephFSDataPool},
		{KeyCephFSMetadataPoolName, r.CephFSMetadataPool},
		{KeyCephFSName, r.CephFSName},
		{KeyRestrictedAuthPermission, boolValue(r.RestrictedAuthPermission)},
		{KeyRadosNamespace, r.RadosNamespace},
		{KeySubvolumeGroup, r.SubvolumeGroup},
		{KeyCephFSNodeSecret, r.CephFSNodeSecret},
		{KeyCephFSNodeSecretName, secretName(r.CephFSNodeUser)},
		{KeyCephFSProvisionerSecret, r.CephFSProvisionerSecret},
		{KeyCephFSProvisionerSecretName, secretName(r.CephFSProvisionerUser)},
		{KeyRgwEndpoint, r.RgwEndpoint},
		{KeyRgwTLSCert, r.RgwTLSCert},
		{KeyMonitoringEndpoint, r.MonitoringEndpoint},
		{KeyMonitoringEndpointPort, r.MonitoringEndpointPort},
		{KeyRBDPoolName, r.RBDPoolName},
		{KeyRBDMetadataECPoolName, r.RBDMetadataECPool},
		{KeyRgwPoolPrefix, r.RgwPoolPrefix},
		{KeyRgwRealmName, r.RgwRealm},
		{KeyRgwZoneGroupName, r.RgwZoneGroup},
		{KeyRgwZoneName, r.RgwZone},
		{KeyRgwAdminOpsAccessKey, r.RgwAdminOpsAccessKey},
		{KeyRgwAdminOpsSecretKey, r.RgwAdminOpsSecretKey},
		{KeyTopologyPools, strings.Join(r.TopologyPools, ",")},
		{KeyTopologyFailureDomainLabel, r.TopologyFailureDomainLabel},
		{KeyTopologyFailureDomainValues, strings.Join(r.TopologyFailureDomainValues, ",")},
	}
}

// Value returns value by key, false for unknown key
func (r *Result) Value(key string) (string, bool) {
	for _, kv := range r.Values() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

const (
	KindConfigMap    = "ConfigMap"
	KindSecret       = "Secret"
	KindStorageClass = "StorageClass"
	KindCephCluster  = "CephCluster"
)

// Record is a single object to be created in consumer cluster
type Record struct {
	Name string            `json:"name" yaml:"name"`
	Kind string            `json:"kind" yaml:"kind"`
	Data map[string]string `json:"data" yaml:"data"`
}

// Records builds object list from result, optional objects are added only
// when data for them is present
func (r *Result) Records() []Record {
	records := []Record{
		{
			Name: cephcommon.MonMapConfigMapName,
			Kind: KindConfigMap,
			Data: map[string]string{"data": r.MonData, "maxMonId": "0", "mapping": "{}"},
		},
		{
			Name: cephcommon.RookCephMonSecretName,
			Kind: KindSecret,
			Data: map[string]string{"admin-secret": "admin-secret", "fsid": r.FSID, "mon-secret": "mon-secret"},
		},
		{
			Name: cephcommon.RookOperatorCredsSecretName,
			Kind: KindSecret,
			Data: map[string]string{"userID": r.Username, "userKey": r.UserSecret},
		},
		{
			Name: cephcommon.MonitoringEndpointRecordName,
			Kind: KindCephCluster,
			Data: map[string]string{"MonitoringEndpoint": r.MonitoringEndpoint, "MonitoringPort": r.MonitoringEndpointPort},
		},
	}

	rbdClass := map[string]string{"pool": r.RBDPoolName}
	if r.RBDMetadataECPool != "" {
		rbdClass = map[string]string{"dataPool": r.RBDPoolName, "pool": r.RBDMetadataECPool}
	}
	if r.RadosNamespace != "" {
		rbdClass["radosNamespaceName"] = r.RadosNamespace
	}
	records = append(records, Record{Name: cephcommon.RBDStorageClassName, Kind: KindStorageClass, Data: rbdClass})

	records = append(records, csiSecret(r.RBDNodeUser, r.RBDNodeSecret, "userID", "userKey"))
	if r.RBDProvisionerSecret != "" {
		records = append(records, csiSecret(r.RBDProvisionerUser, r.RBDProvisionerSecret, "userID", "userKey"))
	}
	if r.CephFSProvisionerSecret != "" {
		records = append(records, csiSecret(r.CephFSProvisionerUser, r.CephFSProvisionerSecret, "adminID", "adminKey"))
	}
	if r.CephFSNodeSecret != "" {
		records = append(records, csiSecret(r.CephFSNodeUser, r.CephFSNodeSecret, "adminID", "adminKey"))
	}
	if r.DashboardLink != "" {
		records = append(records, Record{
			Name: cephcommon.RookDashboardLinkSecretName,
			Kind: KindSecret,
			Data: map[string]string{"userID": "ceph-dashboard-link", "userKey": r.DashboardLink},
		})
	}
	if r.CephFSName != "" {
		data := map[string]string{"fsName": r.CephFSName, "pool": r.CephFSDataPool}
		if r.SubvolumeGroup != "" {
			data["subvolumeGroup"] = r.SubvolumeGroup
		}
		records = append(records, Record{Name: cephcommon.CephFSStorageClassName, Kind: KindStorageClass, Data: data})
	}
	if len(r.TopologyPools) > 0 {
		records = append(records, Record{
			Name: cephcommon.RBDTopologyStorageClassName,
			Kind: KindStorageClass,
			Data: map[string]string{
				"topologyFailureDomainLabel":  r.TopologyFailureDomainLabel,
				"topologyFailureDomainValues": strings.Join(r.TopologyFailureDomainValues, ","),
				"topologyPools":               strings.Join(r.TopologyPools, ","),
			},
		})
	}
	if r.RgwEndpoint != "" {
		data := map[string]string{"endpoint": r.RgwEndpoint, "poolPrefix": r.RgwPoolPrefix}
		if r.RgwZone != "" {
			data["realm"] = r.RgwRealm
			data["zoneGroup"] = r.RgwZoneGroup
			data["zone"] = r.RgwZone
		}
		records = append(records,
			Record{Name: cephcommon.RgwStorageClassName, Kind: KindStorageClass, Data: data},
			Record{
				Name: cephcommon.RgwAdminOpsUserSecretName,
				Kind: KindSecret,
				Data: map[string]string{"accessKey": r.RgwAdminOpsAccessKey, "secretKey": r.RgwAdminOpsSecretKey},
			},
		)
	}
	if r.RgwTLSCert != "" {
		records = append(records, Record{
			Name: cephcommon.RgwTLSCertSecretName,
			Kind: KindSecret,
			Data: map[string]string{"cert": r.RgwTLSCert},
		})
	}
	return records
}

// CSISecretName returns name of the Secret holding csi user credentials
func CSISecretName(user string) string {
	return "rook-" + secretName(user)
}

func csiSecret(user, key, idField, keyField string) Record {
	name := secretName(user)
	return Record{
		Name: CSISecretName(user),
		Kind: KindSecret,
		Data: map[string]string{idField: name, keyField: key},
	}
}
