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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	faketestclients "github.com/Mirantis/ceph-connector/test/unit/clients"
)

func toolboxPod(podReady, containerReady bool) v1.Pod {
	pod := v1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "rook-ceph-tools-5f8b6d9c4-x2x7q",
			Namespace: "rook-ceph",
			Labels:    map[string]string{"app": "rook-ceph-tools"},
		},
		Spec: v1.PodSpec{
			Containers: []v1.Container{{Name: "rook-ceph-tools"}},
		},
		Status: v1.PodStatus{
			Phase:             v1.PodRunning,
			ContainerStatuses: []v1.ContainerStatus{{Name: "rook-ceph-tools", Ready: containerReady}},
		},
	}
	if podReady {
		pod.Status.Conditions = []v1.PodCondition{{Type: v1.PodReady, Status: v1.ConditionTrue}}
	}
	return pod
}

func TestRunPodCommand(t *testing.T) {
	userInfo := []string{"radosgw-admin", "user", "info", "--uid", "rgw-admin-ops-user"}
	tests := []struct {
		name              string
		command           PodCommand
		pods              *v1.PodList
		execErr           error
		expectedContainer string
		expectedStdout    string
		expectedStderr    string
		expectedError     string
	}{
		{
			name:          "no command provided",
			command:       PodCommand{Config: &rest.Config{}},
			expectedError: "command is not specified",
		},
		{
			name:          "no rest config provided",
			command:       PodCommand{Args: userInfo},
			expectedError: "kubernetes rest config is not specified",
		},
		{
			name:          "failed to list pods",
			command:       PodCommand{Args: userInfo, Config: &rest.Config{}},
			expectedError: "failed to find pod to run command: failed to get pods list: failed to list resource(s) kind of 'pods': list object is not specified in test",
		},
		{
			name:          "no pods found",
			command:       PodCommand{Args: userInfo, Config: &rest.Config{}, Selector: RookToolBoxLabel},
			pods:          &v1.PodList{},
			expectedError: "failed to find pod to run command: no pods found by selector 'app=rook-ceph-tools' in namespace 'rook-ceph'",
		},
		{
			name:          "pod is not ready",
			command:       PodCommand{Args: userInfo, Config: &rest.Config{}},
			pods:          &v1.PodList{Items: []v1.Pod{toolboxPod(false, true)}},
			expectedError: "failed to find pod to run command: no ready pod with ready container found by selector '<none>' in namespace 'rook-ceph'",
		},
		{
			name:          "container is not ready",
			command:       PodCommand{Args: userInfo, Config: &rest.Config{}, Namespace: "rook-ceph", Selector: RookToolBoxLabel},
			pods:          &v1.PodList{Items: []v1.Pod{toolboxPod(true, false)}},
			expectedError: "failed to find pod to run command: no ready pod with ready container found by selector 'app=rook-ceph-tools' in namespace 'rook-ceph'",
		},
		{
			name:              "command failed",
			command:           PodCommand{Args: userInfo, Config: &rest.Config{}, Selector: RookToolBoxLabel},
			pods:              &v1.PodList{Items: []v1.Pod{toolboxPod(false, false), toolboxPod(true, true)}},
			execErr:           errors.New("command terminated with exit code 22"),
			expectedContainer: "rook-ceph-tools",
			expectedStderr:    "could not fetch user info: no user info saved",
			expectedError:     "failed to run command 'radosgw-admin user info --uid rgw-admin-ops-user' (stdErr: could not fetch user info: no user info saved): command terminated with exit code 22",
		},
		{
			name:              "command succeed",
			command:           PodCommand{Args: userInfo, Config: &rest.Config{}, Selector: RookToolBoxLabel},
			pods:              &v1.PodList{Items: []v1.Pod{toolboxPod(true, true)}},
			expectedContainer: "rook-ceph-tools",
			expectedStdout:    `{"user_id":"rgw-admin-ops-user"}`,
		},
	}
	oldFunc := ExecInPod
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			kubeClient := faketestclients.GetFakeKubeclient()
			res := map[string]runtime.Object{}
			if test.pods != nil {
				res["pods"] = test.pods
			}
			faketestclients.FakeReaction(kubeClient.CoreV1(), "list", []string{"pods"}, res, nil)
			test.command.KubeClient = kubeClient
			execCalled := false
			ExecInPod = func(_ context.Context, _ *rest.Config, _ kubernetes.Interface, pod *v1.Pod, container string, args []string) (string, string, error) {
				execCalled = true
				assert.Equal(t, "rook-ceph-tools-5f8b6d9c4-x2x7q", pod.Name)
				assert.Equal(t, test.expectedContainer, container)
				assert.Equal(t, userInfo, args)
				return test.expectedStdout, test.expectedStderr, test.execErr
			}

			stdout, stderr, err := RunPodCommand(context.TODO(), test.command)
			if test.expectedError != "" {
				assert.NotNil(t, err)
				assert.Equal(t, test.expectedError, err.Error())
			} else {
				assert.Nil(t, err)
			}
			assert.Equal(t, test.expectedContainer != "", execCalled)
			assert.Equal(t, test.expectedStdout, stdout)
			assert.Equal(t, test.expectedStderr, stderr)
		})
	}
	ExecInPod = oldFunc
}
