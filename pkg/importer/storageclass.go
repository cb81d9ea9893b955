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

package importer

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	cephv1 "github.com/rook/rook/pkg/apis/ceph.rook.io/v1"
	corev1 "k8s.io/api/core/v1"
	storagev1 "k8s.io/api/storage/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	"github.com/Mirantis/ceph-connector/pkg/output"
)

const (
	storageClassLabelKey     = "rook-ceph-storage-class"
	radosNamespaceDataKey    = "radosNamespaceName"
	subvolumeGroupDataKey    = "subvolumeGroup"
	topologyPoolsParameter   = "topologyConstrainedPools"
	topologyLabelDataKey     = "topologyFailureDomainLabel"
	topologyValuesDataKey    = "topologyFailureDomainValues"
	topologyPoolsDataKey     = "topologyPools"
	clusterIDParameter       = "clusterID"
	clusterIDStatusInfoKey   = "clusterID"
	csiProvisionerSecretName = "csi.storage.k8s.io/provisioner-secret-name"
	csiProvisionerSecretNs   = "csi.storage.k8s.io/provisioner-secret-namespace"
	csiNodeSecretName        = "csi.storage.k8s.io/node-stage-secret-name"
	csiNodeSecretNs          = "csi.storage.k8s.io/node-stage-secret-namespace"
	csiExpandSecretName      = "csi.storage.k8s.io/controller-expand-secret-name"
	csiExpandSecretNs        = "csi.storage.k8s.io/controller-expand-secret-namespace"
)

func rbdDriverName(namespace string) string {
	return namespace + ".rbd.csi.ceph.com"
}

func cephFSDriverName(namespace string) string {
	return namespace + ".cephfs.csi.ceph.com"
}

func (i *Importer) newStorageClass(name, driver, clusterID, provisionerSecret, nodeSecret string) *storagev1.StorageClass {
	reclaimPolicy := corev1.PersistentVolumeReclaimDelete
	allowExpansion := true
	sc := &storagev1.StorageClass{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: map[string]string{storageClassLabelKey: "true"},
		},
		Provisioner:          driver,
		ReclaimPolicy:        &reclaimPolicy,
		AllowVolumeExpansion: &allowExpansion,
		Parameters: map[string]string{
			csiProvisionerSecretName: provisionerSecret,
			csiProvisionerSecretNs:   i.namespace,
			csiNodeSecretName:        nodeSecret,
			csiNodeSecretNs:          i.namespace,
			csiExpandSecretName:      provisionerSecret,
			csiExpandSecretNs:        i.namespace,
		},
	}
	sc.Parameters[clusterIDParameter] = clusterID
	return sc
}

func (i *Importer) newRBDStorageClass(name, clusterID string, result *output.Result) *storagev1.StorageClass {
	sc := i.newStorageClass(name, rbdDriverName(i.namespace), clusterID,
		output.CSISecretName(result.RBDProvisionerUser), output.CSISecretName(result.RBDNodeUser))
	sc.Parameters["imageFormat"] = "2"
	sc.Parameters["imageFeatures"] = "layering"
	sc.Parameters["csi.storage.k8s.io/fstype"] = "ext4"
	return sc
}

// storageClassFromRecord returns nil storage class when record can't be
// applied yet or is not applied at all
func (i *Importer) storageClassFromRecord(ctx context.Context, result *output.Result, record output.Record) (*storagev1.StorageClass, error) {
	switch record.Name {
	case cephcommon.RBDStorageClassName:
		clusterID := i.namespace
		if radosNamespace := record.Data[radosNamespaceDataKey]; radosNamespace != "" {
			var err error
			clusterID, err = i.radosNamespaceClusterID(ctx, radosNamespace, result.RBDPoolName)
			if err != nil || clusterID == "" {
				return nil, err
			}
		}
		sc := i.newRBDStorageClass(record.Name, clusterID, result)
		for k, v := range record.Data {
			if k != radosNamespaceDataKey {
				sc.Parameters[k] = v
			}
		}
		return sc, nil
	case cephcommon.CephFSStorageClassName:
		sc := i.newStorageClass(record.Name, cephFSDriverName(i.namespace), i.namespace,
			output.CSISecretName(result.CephFSProvisionerUser), output.CSISecretName(result.CephFSNodeUser))
		for k, v := range record.Data {
			if k != subvolumeGroupDataKey {
				sc.Parameters[k] = v
			}
		}
		if group := record.Data[subvolumeGroupDataKey]; group != "" && group != cephcommon.DefaultSubvolumeGroup {
			i.log.Warn().Msgf("subvolume group '%s' has to be set in ceph-csi config for cluster '%s'", group, i.namespace)
		}
		return sc, nil
	case cephcommon.RBDTopologyStorageClassName:
		pools, err := topologyConstrainedPools(record.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build %s storage class", record.Name)
		}
		sc := i.newRBDStorageClass(record.Name, i.namespace, result)
		sc.Parameters[topologyPoolsParameter] = pools
		bindingMode := storagev1.VolumeBindingWaitForFirstConsumer
		sc.VolumeBindingMode = &bindingMode
		return sc, nil
	}
	i.log.Info().Msgf("record '%s' is not applied as storage class, object store should be configured with CephObjectStore", record.Name)
	return nil, nil
}

func topologyConstrainedPools(data map[string]string) (string, error) {
	type topologySegment struct {
		DomainLabel string `json:"domainLabel"`
		DomainValue string `json:"value"`
	}
	type topologyConstrainedPool struct {
		PoolName       string            `json:"poolName"`
		DomainSegments []topologySegment `json:"domainSegments"`
	}

	pools := cephcommon.SplitList(data[topologyPoolsDataKey])
	values := cephcommon.SplitList(data[topologyValuesDataKey])
	if len(pools) != len(values) {
		return "", errors.Errorf("number of topology pools (%d) and failure domain values (%d) are not equal", len(pools), len(values))
	}
	constrainedPools := make([]topologyConstrainedPool, 0, len(pools))
	for idx, pool := range pools {
		constrainedPools = append(constrainedPools, topologyConstrainedPool{
			PoolName:       pool,
			DomainSegments: []topologySegment{{DomainLabel: data[topologyLabelDataKey], DomainValue: values[idx]}},
		})
	}
	raw, err := json.Marshal(constrainedPools)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// radosNamespaceClusterID ensures CephBlockPoolRadosNamespace exists and
// returns cluster id reported by rook, empty if not reported yet
func (i *Importer) radosNamespaceClusterID(ctx context.Context, name, pool string) (string, error) {
	radosNamespace, err := i.rookClient.CephV1().CephBlockPoolRadosNamespaces(i.namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if !apierrors.IsNotFound(err) {
			return "", errors.Wrapf(err, "failed to get %s/%s rados namespace", i.namespace, name)
		}
		radosNamespace = &cephv1.CephBlockPoolRadosNamespace{
			ObjectMeta: metav1.ObjectMeta{
				Name:      name,
				Namespace: i.namespace,
			},
			Spec: cephv1.CephBlockPoolRadosNamespaceSpec{
				BlockPoolName: pool,
			},
		}
		i.log.Info().Msgf("create %s/%s rados namespace", i.namespace, name)
		_, err = i.rookClient.CephV1().CephBlockPoolRadosNamespaces(i.namespace).Create(ctx, radosNamespace, metav1.CreateOptions{})
		if err != nil {
			return "", errors.Wrapf(err, "failed to create %s/%s rados namespace", i.namespace, name)
		}
	}
	if radosNamespace.Status != nil && radosNamespace.Status.Info[clusterIDStatusInfoKey] != "" {
		return radosNamespace.Status.Info[clusterIDStatusInfoKey], nil
	}
	i.log.Warn().Msgf("rados namespace %s/%s has no cluster id yet, storage class '%s' is skipped, apply again once rados namespace is ready",
		i.namespace, name, cephcommon.RBDStorageClassName)
	return "", nil
}

func (i *Importer) manageStorageClasses(ctx context.Context, result *output.Result, records []output.Record) (bool, error) {
	errs := []string{}
	updated := false
	for _, record := range records {
		sc, err := i.storageClassFromRecord(ctx, result, record)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if sc == nil {
			continue
		}
		changed, err := i.manageStorageClass(ctx, sc)
		if err != nil {
			errs = append(errs, err.Error())
		}
		updated = updated || changed
	}
	if len(errs) > 0 {
		return updated, errors.New(strings.Join(errs, ", "))
	}
	return updated, nil
}

func (i *Importer) manageStorageClass(ctx context.Context, sc *storagev1.StorageClass) (bool, error) {
	current, err := i.kubeClient.StorageV1().StorageClasses().Get(ctx, sc.Name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			i.log.Info().Msgf("create storage class %s", sc.Name)
			_, err = i.kubeClient.StorageV1().StorageClasses().Create(ctx, sc, metav1.CreateOptions{})
			if err != nil {
				return false, errors.Wrapf(err, "failed to create storage class %s", sc.Name)
			}
			return true, nil
		}
		return false, errors.Wrapf(err, "failed to get storage class %s", sc.Name)
	}
	if current.Provisioner != sc.Provisioner || !reflect.DeepEqual(current.Parameters, sc.Parameters) {
		cephcommon.ShowObjectDiff(i.log, current.Parameters, sc.Parameters)
		i.log.Warn().Msgf("storage class '%[1]s' parameters update won't be applied, since parameters section is immutable,"+
			" need to recreate storage class '%[1]s' to apply new parameters", sc.Name)
	}
	if current.Labels[storageClassLabelKey] == "true" {
		return false, nil
	}
	if current.Labels == nil {
		current.SetLabels(map[string]string{})
	}
	current.Labels[storageClassLabelKey] = "true"
	i.log.Info().Msgf("setting label '%s=true' for storage class %s", storageClassLabelKey, current.Name)
	_, err = i.kubeClient.StorageV1().StorageClasses().Update(ctx, current, metav1.UpdateOptions{})
	if err != nil {
		return false, errors.Wrapf(err, "failed to update storage class %s", current.Name)
	}
	return true, nil
}
