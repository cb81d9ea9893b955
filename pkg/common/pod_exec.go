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
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
)

// PodCommand is a command executed in a container of running and ready
// pod, found by label selector.
type PodCommand struct {
	KubeClient kubernetes.Interface
	Config     *rest.Config
	Namespace  string
	Selector   string
	// first pod container is used if empty
	Container string
	Args      []string
}

// ExecInPod streams command through pods/exec subresource
var ExecInPod = execInPod

// RunPodCommand returns stdout and stderr of command, stderr is kept in
// error message when command fails.
func RunPodCommand(ctx context.Context, c PodCommand) (string, string, error) {
	if len(c.Args) == 0 {
		return "", "", errors.New("command is not specified")
	}
	if c.Config == nil {
		return "", "", errors.New("kubernetes rest config is not specified")
	}
	if c.Namespace == "" {
		c.Namespace = DefaultRookNamespace
	}
	pod, container, err := c.findPod(ctx)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to find pod to run command")
	}
	stdout, stderr, err := ExecInPod(ctx, c.Config, c.KubeClient, pod, container, c.Args)
	if err != nil {
		msg := fmt.Sprintf("failed to run command '%s'", strings.Join(c.Args, " "))
		if stderr != "" {
			msg = fmt.Sprintf("%s (stdErr: %s)", msg, stderr)
		}
		return stdout, stderr, errors.Wrap(err, msg)
	}
	return stdout, stderr, nil
}

// RunToolboxCommand runs command inside of Rook toolbox pod
func RunToolboxCommand(ctx context.Context, kubeClient kubernetes.Interface, config *rest.Config, namespace string, args []string) (string, string, error) {
	return RunPodCommand(ctx, PodCommand{
		KubeClient: kubeClient,
		Config:     config,
		Namespace:  namespace,
		Selector:   RookToolBoxLabel,
		Args:       args,
	})
}

func isPodReady(pod *corev1.Pod) bool {
	if pod.Status.Phase != corev1.PodRunning {
		return false
	}
	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodReady {
			return condition.Status == corev1.ConditionTrue
		}
	}
	return false
}

func (c PodCommand) findPod(ctx context.Context) (*corev1.Pod, string, error) {
	pods, err := c.KubeClient.CoreV1().Pods(c.Namespace).List(ctx, metav1.ListOptions{LabelSelector: c.Selector})
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to get pods list")
	}
	selector := c.Selector
	if selector == "" {
		selector = "<none>"
	}
	if len(pods.Items) == 0 {
		return nil, "", errors.Errorf("no pods found by selector '%s' in namespace '%s'", selector, c.Namespace)
	}
	for idx := range pods.Items {
		pod := &pods.Items[idx]
		if !isPodReady(pod) {
			continue
		}
		container := c.Container
		if container == "" && len(pod.Spec.Containers) > 0 {
			container = pod.Spec.Containers[0].Name
		}
		for _, status := range pod.Status.ContainerStatuses {
			if status.Name == container && status.Ready {
				return pod, container, nil
			}
		}
	}
	return nil, "", errors.Errorf("no ready pod with ready container found by selector '%s' in namespace '%s'", selector, c.Namespace)
}

func execInPod(ctx context.Context, config *rest.Config, kubeClient kubernetes.Interface, pod *corev1.Pod, container string, args []string) (string, string, error) {
	req := kubeClient.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(pod.Name).
		Namespace(pod.Namespace).
		SubResource("exec")
	req.VersionedParams(&corev1.PodExecOptions{
		Command:   args,
		Container: container,
		Stdout:    true,
		Stderr:    true,
	}, scheme.ParameterCodec)
	executor, err := remotecommand.NewSPDYExecutor(config, "POST", req.URL())
	if err != nil {
		return "", "", errors.Wrap(err, "error while creating executor")
	}
	var stdout, stderr bytes.Buffer
	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{Stdout: &stdout, Stderr: &stderr})
	return stdout.String(), stderr.String(), err
}
