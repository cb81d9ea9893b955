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

package input

import (
	vsapi "github.com/kubernetes-csi/external-snapshotter/client/v6/apis/volumesnapshot/v1"
	corev1 "k8s.io/api/core/v1"
	storagev1 "k8s.io/api/storage/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

var TrueVarForPointer = true
var ReclaimPolicyDelete = corev1.PersistentVolumeReclaimDelete

var CephRBDStorageClass = storagev1.StorageClass{
	ObjectMeta: metav1.ObjectMeta{
		Name: "ceph-rbd",
		Labels: map[string]string{
			"rook-ceph-storage-class": "true",
		},
	},
	Provisioner:          "rook-ceph.rbd.csi.ceph.com",
	ReclaimPolicy:        &ReclaimPolicyDelete,
	AllowVolumeExpansion: &TrueVarForPointer,
	Parameters: map[string]string{
		"clusterID":     RookNamespace,
		"pool":          "replicapool",
		"imageFormat":   "2",
		"imageFeatures": "layering",
		"csi.storage.k8s.io/provisioner-secret-name":            "rook-csi-rbd-provisioner",
		"csi.storage.k8s.io/provisioner-secret-namespace":       RookNamespace,
		"csi.storage.k8s.io/node-stage-secret-name":             "rook-csi-rbd-node",
		"csi.storage.k8s.io/node-stage-secret-namespace":        RookNamespace,
		"csi.storage.k8s.io/controller-expand-secret-name":      "rook-csi-rbd-provisioner",
		"csi.storage.k8s.io/controller-expand-secret-namespace": RookNamespace,
		"csi.storage.k8s.io/fstype":                             "ext4",
	},
}

// CephRBDStorageClassUnlabeled points to another pool and has no label
var CephRBDStorageClassUnlabeled = func() storagev1.StorageClass {
	sc := CephRBDStorageClass.DeepCopy()
	sc.Labels = nil
	sc.Parameters["pool"] = "oldpool"
	return *sc
}()

var CephRBDSnapshotClass = vsapi.VolumeSnapshotClass{
	ObjectMeta: metav1.ObjectMeta{
		Name: "csi-rbdplugin-snapclass",
	},
	Driver: "rook-ceph.rbd.csi.ceph.com",
	Parameters: map[string]string{
		"clusterID": RookNamespace,
		"csi.storage.k8s.io/snapshotter-secret-name":      "rook-csi-rbd-provisioner",
		"csi.storage.k8s.io/snapshotter-secret-namespace": RookNamespace,
	},
	DeletionPolicy: vsapi.VolumeSnapshotContentDelete,
}

var CephRBDSnapshotClassRetain = func() vsapi.VolumeSnapshotClass {
	class := CephRBDSnapshotClass.DeepCopy()
	class.DeletionPolicy = vsapi.VolumeSnapshotContentRetain
	return *class
}()
