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
	cephv1 "github.com/rook/rook/pkg/apis/ceph.rook.io/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

var CephClusterExternal = cephv1.CephCluster{
	ObjectMeta: metav1.ObjectMeta{
		Namespace: RookNamespace,
		Name:      "cephcluster",
	},
	Spec: cephv1.ClusterSpec{
		External: cephv1.ExternalSpec{Enable: true},
	},
}

var CephClusterExternalWithMonitoring = func() cephv1.CephCluster {
	cluster := CephClusterExternal.DeepCopy()
	cluster.Spec.Monitoring = cephv1.MonitoringSpec{
		Enabled: true,
		ExternalMgrEndpoints: []corev1.EndpointAddress{
			{IP: "10.110.205.174"},
			{IP: "10.110.205.175"},
		},
		ExternalMgrPrometheusPort: 9283,
	}
	return *cluster
}()

var CephClusterInternal = cephv1.CephCluster{
	ObjectMeta: metav1.ObjectMeta{
		Namespace: RookNamespace,
		Name:      "cephcluster-internal",
	},
	Spec: cephv1.ClusterSpec{
		Mon: cephv1.MonSpec{Count: 3},
	},
}

var CephBlockPoolRadosNamespace = cephv1.CephBlockPoolRadosNamespace{
	ObjectMeta: metav1.ObjectMeta{
		Namespace: RookNamespace,
		Name:      "ns-a",
	},
	Spec: cephv1.CephBlockPoolRadosNamespaceSpec{
		BlockPoolName: "replicapool",
	},
}

var CephBlockPoolRadosNamespaceReady = func() cephv1.CephBlockPoolRadosNamespace {
	radosNamespace := CephBlockPoolRadosNamespace.DeepCopy()
	radosNamespace.Status = &cephv1.CephBlockPoolRadosNamespaceStatus{
		Info: map[string]string{"clusterID": "80fc4f4bacc064be641633e6ed25ba7e"},
	}
	return *radosNamespace
}()
