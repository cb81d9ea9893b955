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
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const RookNamespace = "rook-ceph"

var RookCephMonEndpoints = corev1.ConfigMap{
	ObjectMeta: metav1.ObjectMeta{
		Namespace: RookNamespace,
		Name:      "rook-ceph-mon-endpoints",
	},
	Data: map[string]string{
		"data":     "a=10.110.205.174:6789",
		"mapping":  "{}",
		"maxMonId": "0",
	},
}

var RookCephMonEndpointsOutdated = func() corev1.ConfigMap {
	cm := RookCephMonEndpoints.DeepCopy()
	cm.Data["data"] = "a=10.110.205.170:6789"
	return *cm
}()
