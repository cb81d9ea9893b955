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

	snapshotclient "github.com/kubernetes-csi/external-snapshotter/client/v6/clientset/versioned"
	"github.com/pkg/errors"
	rookclient "github.com/rook/rook/pkg/client/clientset/versioned"
	"github.com/rs/zerolog"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	"github.com/Mirantis/ceph-connector/pkg/output"
)

// Importer applies connection records to the consumer cluster namespace
type Importer struct {
	kubeClient     kubernetes.Interface
	rookClient     rookclient.Interface
	snapshotClient snapshotclient.Interface
	namespace      string
	log            zerolog.Logger
}

func New(kubeClient kubernetes.Interface, rookClient rookclient.Interface, snapshotClient snapshotclient.Interface, namespace string, log zerolog.Logger) *Importer {
	if namespace == "" {
		namespace = cephcommon.DefaultRookNamespace
	}
	return &Importer{
		kubeClient:     kubeClient,
		rookClient:     rookClient,
		snapshotClient: snapshotClient,
		namespace:      namespace,
		log:            cephcommon.SubLogger(log, "importer"),
	}
}

func NewForConfig(config *rest.Config, namespace string, log zerolog.Logger) (*Importer, error) {
	kubeClient, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create kubernetes client")
	}
	rookClient, err := rookclient.NewForConfig(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create rook client")
	}
	snapshotClient, err := snapshotclient.NewForConfig(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create snapshot client")
	}
	return New(kubeClient, rookClient, snapshotClient, namespace, log), nil
}

// Apply creates or updates objects described by result records. Returns
// true when anything in the cluster was changed.
func (i *Importer) Apply(ctx context.Context, result *output.Result) (bool, error) {
	i.log.Info().Msgf("apply connection data to namespace '%s'", i.namespace)
	configMaps := make([]*corev1.ConfigMap, 0)
	secrets := make([]*corev1.Secret, 0)
	storageClassRecords := make([]output.Record, 0)
	var monitoring *output.Record
	for _, record := range result.Records() {
		switch record.Kind {
		case output.KindConfigMap:
			configMaps = append(configMaps, i.configMapFromRecord(record))
		case output.KindSecret:
			secrets = append(secrets, i.secretFromRecord(record))
		case output.KindStorageClass:
			storageClassRecords = append(storageClassRecords, record)
		case output.KindCephCluster:
			monitoring = &record
		}
	}

	changed := false
	errMsg := make([]error, 0)
	for _, configMap := range configMaps {
		updated, err := i.manageConfigMap(ctx, configMap)
		if err != nil {
			errMsg = append(errMsg, err)
		}
		changed = changed || updated
	}
	updated, err := i.manageSecrets(ctx, secrets)
	if err != nil {
		errMsg = append(errMsg, errors.Wrap(err, "failed to manage secrets"))
	}
	changed = changed || updated
	updated, err = i.manageStorageClasses(ctx, result, storageClassRecords)
	if err != nil {
		errMsg = append(errMsg, errors.Wrap(err, "failed to manage storage classes"))
	}
	changed = changed || updated
	updated, err = i.manageSnapshotClasses(ctx, result)
	if err != nil {
		errMsg = append(errMsg, errors.Wrap(err, "failed to manage volume snapshot classes"))
	}
	changed = changed || updated
	if monitoring != nil {
		updated, err = i.manageMonitoringEndpoints(ctx, *monitoring)
		if err != nil {
			errMsg = append(errMsg, errors.Wrap(err, "failed to set external monitoring endpoints"))
		}
		changed = changed || updated
	}

	if len(errMsg) == 1 {
		return changed, errMsg[0]
	} else if len(errMsg) > 1 {
		for _, err := range errMsg {
			i.log.Error().Err(err).Msg("")
		}
		return changed, errors.New("multiple errors during connection data apply")
	}
	if !changed {
		i.log.Info().Msg("connection data is up to date")
	}
	return changed, nil
}

func (i *Importer) configMapFromRecord(record output.Record) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      record.Name,
			Namespace: i.namespace,
		},
		Data: record.Data,
	}
}

func (i *Importer) secretFromRecord(record output.Record) *corev1.Secret {
	data := make(map[string][]byte, len(record.Data))
	for k, v := range record.Data {
		data[k] = []byte(v)
	}
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      record.Name,
			Namespace: i.namespace,
		},
		Type: corev1.SecretTypeOpaque,
		Data: data,
	}
}

func (i *Importer) manageConfigMap(ctx context.Context, configMap *corev1.ConfigMap) (bool, error) {
	current, err := i.kubeClient.CoreV1().ConfigMaps(configMap.Namespace).Get(ctx, configMap.Name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			i.log.Info().Msgf("create %s/%s config map", configMap.Namespace, configMap.Name)
			_, err = i.kubeClient.CoreV1().ConfigMaps(configMap.Namespace).Create(ctx, configMap, metav1.CreateOptions{})
			if err != nil {
				return false, errors.Wrapf(err, "failed to create %s/%s config map", configMap.Namespace, configMap.Name)
			}
			return true, nil
		}
		return false, errors.Wrapf(err, "failed to get %s/%s config map", configMap.Namespace, configMap.Name)
	}
	if reflect.DeepEqual(current.Data, configMap.Data) {
		return false, nil
	}
	cephcommon.ShowObjectDiff(i.log, current.Data, configMap.Data)
	current.Data = configMap.Data
	i.log.Info().Msgf("update %s/%s config map", current.Namespace, current.Name)
	_, err = i.kubeClient.CoreV1().ConfigMaps(current.Namespace).Update(ctx, current, metav1.UpdateOptions{})
	if err != nil {
		return false, errors.Wrapf(err, "failed to update %s/%s config map", current.Namespace, current.Name)
	}
	return true, nil
}

// manageSecrets never shows data diff, only names of changed secrets
func (i *Importer) manageSecrets(ctx context.Context, secrets []*corev1.Secret) (bool, error) {
	errs := []string{}
	updated := false
	for _, secret := range secrets {
		current, err := i.kubeClient.CoreV1().Secrets(secret.Namespace).Get(ctx, secret.Name, metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				i.log.Info().Msgf("create %s/%s secret", secret.Namespace, secret.Name)
				_, err = i.kubeClient.CoreV1().Secrets(secret.Namespace).Create(ctx, secret, metav1.CreateOptions{})
				if err != nil {
					i.log.Error().Err(err).Msgf("failed to create %s/%s secret", secret.Namespace, secret.Name)
					errs = append(errs, err.Error())
				} else {
					updated = true
				}
				continue
			}
			i.log.Error().Err(err).Msgf("failed to get %s/%s secret", secret.Namespace, secret.Name)
			errs = append(errs, err.Error())
			continue
		}
		if reflect.DeepEqual(current.Data, secret.Data) {
			continue
		}
		current.Data = secret.Data
		i.log.Info().Msgf("update %s/%s secret", current.Namespace, current.Name)
		_, err = i.kubeClient.CoreV1().Secrets(current.Namespace).Update(ctx, current, metav1.UpdateOptions{})
		if err != nil {
			i.log.Error().Err(err).Msgf("failed to update %s/%s secret", current.Namespace, current.Name)
			errs = append(errs, err.Error())
		} else {
			updated = true
		}
	}
	if len(errs) > 0 {
		return updated, errors.New(strings.Join(errs, ", "))
	}
	return updated, nil
}
