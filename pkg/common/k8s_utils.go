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

import (
	"context"

	"github.com/pkg/errors"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

func IsDeploymentReady(deploy *appsv1.Deployment) bool {
	return deploy.Status.Replicas > 0 &&
		deploy.Status.UpdatedReplicas == deploy.Status.Replicas &&
		deploy.Status.ReadyReplicas == deploy.Status.Replicas &&
		deploy.Status.AvailableReplicas == deploy.Status.Replicas
}

// CheckToolboxReady verifies Rook toolbox deployment is present and ready
// in a namespace before any command is executed inside
func CheckToolboxReady(ctx context.Context, kubeClient kubernetes.Interface, namespace string) error {
	deployments, err := kubeClient.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{LabelSelector: RookToolBoxLabel})
	if err != nil {
		return errors.Wrapf(err, "failed to list toolbox deployments in namespace '%s'", namespace)
	}
	if len(deployments.Items) == 0 {
		return errors.Errorf("no toolbox deployment with label '%s' found in namespace '%s'", RookToolBoxLabel, namespace)
	}
	for _, deploy := range deployments.Items {
		if IsDeploymentReady(&deploy) {
			return nil
		}
	}
	return errors.Errorf("toolbox deployment in namespace '%s' is not ready", namespace)
}

// GetKubeConfig loads config from kubeconfig path when provided,
// in-cluster config otherwise
func GetKubeConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig != "" {
		config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load kubeconfig '%s'", kubeconfig)
		}
		return config, nil
	}
	config, err := rest.InClusterConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get in-cluster config, provide '--kubeconfig'")
	}
	return config, nil
}
