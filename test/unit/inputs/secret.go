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

func opaqueSecret(name string, data map[string]string) corev1.Secret {
	secret := corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: RookNamespace,
			Name:      name,
		},
		Type: corev1.SecretTypeOpaque,
		Data: map[string][]byte{},
	}
	for k, v := range data {
		secret.Data[k] = []byte(v)
	}
	return secret
}

var RookCephMonSecret = opaqueSecret("rook-ceph-mon", map[string]string{
	"admin-secret": "admin-secret",
	"fsid":         CephFsid,
	"mon-secret":   "mon-secret",
})

var RookCephOperatorCredsSecret = opaqueSecret("rook-ceph-operator-creds", map[string]string{
	"userID":  "client.healthchecker",
	"userKey": HealthCheckerKey,
})

var CSIRBDNodeSecret = opaqueSecret("rook-csi-rbd-node", map[string]string{
	"userID":  "csi-rbd-node",
	"userKey": RBDNodeKey,
})

var CSIRBDProvisionerSecret = opaqueSecret("rook-csi-rbd-provisioner", map[string]string{
	"userID":  "csi-rbd-provisioner",
	"userKey": RBDProvisionerKey,
})

var CSIRBDNodeSecretOutdated = opaqueSecret("rook-csi-rbd-node", map[string]string{
	"userID":  "csi-rbd-node",
	"userKey": "AQBOgrNeHbK1AxAAoldoldoldoldoldoldold==",
})
