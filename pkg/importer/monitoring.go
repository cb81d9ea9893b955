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
	"net"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	"github.com/Mirantis/ceph-connector/pkg/output"
)

func monitoringAddresses(endpoints string) []corev1.EndpointAddress {
	addresses := []corev1.EndpointAddress{}
	for _, endpoint := range cephcommon.SplitList(endpoints) {
		if net.ParseIP(endpoint) != nil {
			addresses = append(addresses, corev1.EndpointAddress{IP: endpoint})
		} else {
			addresses = append(addresses, corev1.EndpointAddress{Hostname: endpoint})
		}
	}
	return addresses
}

// manageMonitoringEndpoints sets external mgr endpoints for every external
// CephCluster in namespace, does nothing if there is no one
func (i *Importer) manageMonitoringEndpoints(ctx context.Context, record output.Record) (bool, error) {
	endpoints := record.Data["MonitoringEndpoint"]
	if endpoints == "" {
		i.log.Info().Msg("monitoring endpoint is not provided, skipping CephCluster monitoring update")
		return false, nil
	}
	var port uint64
	if record.Data["MonitoringPort"] != "" {
		var err error
		port, err = strconv.ParseUint(record.Data["MonitoringPort"], 10, 16)
		if err != nil {
			return false, errors.Wrapf(err, "invalid monitoring endpoint port '%s'", record.Data["MonitoringPort"])
		}
	}

	clusters, err := i.rookClient.CephV1().CephClusters(i.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return false, errors.Wrapf(err, "failed to list CephClusters in namespace '%s'", i.namespace)
	}
	updated := false
	found := false
	for _, cluster := range clusters.Items {
		if !cluster.Spec.External.Enable {
			continue
		}
		found = true
		monitoring := cluster.Spec.Monitoring.DeepCopy()
		monitoring.Enabled = true
		monitoring.ExternalMgrEndpoints = monitoringAddresses(endpoints)
		monitoring.ExternalMgrPrometheusPort = uint16(port)
		if reflect.DeepEqual(cluster.Spec.Monitoring, *monitoring) {
			continue
		}
		cephcommon.ShowObjectDiff(i.log, cluster.Spec.Monitoring, *monitoring)
		cluster.Spec.Monitoring = *monitoring
		i.log.Info().Msgf("update monitoring endpoints for CephCluster %s/%s", cluster.Namespace, cluster.Name)
		_, err := i.rookClient.CephV1().CephClusters(cluster.Namespace).Update(ctx, &cluster, metav1.UpdateOptions{})
		if err != nil {
			return updated, errors.Wrapf(err, "failed to update CephCluster %s/%s", cluster.Namespace, cluster.Name)
		}
		updated = true
	}
	if !found {
		i.log.Info().Msgf("no external CephCluster found in namespace '%s', monitoring endpoints are not applied", i.namespace)
	}
	return updated, nil
}
