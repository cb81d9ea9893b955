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
	"reflect"
	"strings"

	vsapi "github.com/kubernetes-csi/external-snapshotter/client/v6/apis/volumesnapshot/v1"
	"github.com/pkg/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/Mirantis/ceph-connector/pkg/output"
)

const (
	rbdSnapshotClassName       = "csi-rbdplugin-snapclass"
	cephFSSnapshotClassName    = "csi-cephfsplugin-snapclass"
	snapshotterSecretName      = "csi.storage.k8s.io/snapshotter-secret-name"
	snapshotterSecretNamespace = "csi.storage.k8s.io/snapshotter-secret-namespace"
)

func (i *Importer) newSnapshotClass(name, driver, secretName string) *vsapi.VolumeSnapshotClass {
	return &vsapi.VolumeSnapshotClass{
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
		},
		Driver: driver,
		Parameters: map[string]string{
			clusterIDParameter:         i.namespace,
			snapshotterSecretName:      secretName,
			snapshotterSecretNamespace: i.namespace,
		},
		DeletionPolicy: vsapi.VolumeSnapshotContentDelete,
	}
}

// snapshotClasses returns rbd class always and cephfs class when filesystem
// is exported
func (i *Importer) snapshotClasses(result *output.Result) []*vsapi.VolumeSnapshotClass {
	classes := []*vsapi.VolumeSnapshotClass{
		i.newSnapshotClass(rbdSnapshotClassName, rbdDriverName(i.namespace), output.CSISecretName(result.RBDProvisionerUser)),
	}
	if result.CephFSName != "" {
		classes = append(classes,
			i.newSnapshotClass(cephFSSnapshotClassName, cephFSDriverName(i.namespace), output.CSISecretName(result.CephFSProvisionerUser)))
	}
	return classes
}

func (i *Importer) manageSnapshotClasses(ctx context.Context, result *output.Result) (bool, error) {
	errs := []string{}
	updated := false
	for _, class := range i.snapshotClasses(result) {
		current, err := i.snapshotClient.SnapshotV1().VolumeSnapshotClasses().Get(ctx, class.Name, metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				i.log.Info().Msgf("create volume snapshot class %s", class.Name)
				_, err = i.snapshotClient.SnapshotV1().VolumeSnapshotClasses().Create(ctx, class, metav1.CreateOptions{})
				if err != nil {
					errs = append(errs, errors.Wrapf(err, "failed to create volume snapshot class %s", class.Name).Error())
				} else {
					updated = true
				}
				continue
			}
			errs = append(errs, errors.Wrapf(err, "failed to get volume snapshot class %s", class.Name).Error())
			continue
		}
		if current.Driver == class.Driver && current.DeletionPolicy == class.DeletionPolicy && reflect.DeepEqual(current.Parameters, class.Parameters) {
			continue
		}
		if current.Driver != class.Driver {
			i.log.Warn().Msgf("volume snapshot class '%s' uses driver '%s' instead of '%s', skipping update", class.Name, current.Driver, class.Driver)
			continue
		}
		i.log.Info().Msgf("update volume snapshot class %s", class.Name)
		current.Parameters = class.Parameters
		current.DeletionPolicy = class.DeletionPolicy
		_, err = i.snapshotClient.SnapshotV1().VolumeSnapshotClasses().Update(ctx, current, metav1.UpdateOptions{})
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "failed to update volume snapshot class %s", class.Name).Error())
		} else {
			updated = true
		}
	}
	if len(errs) > 0 {
		return updated, errors.New(strings.Join(errs, ", "))
	}
	return updated, nil
}
