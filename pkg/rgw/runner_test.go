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

package rgw

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	appsv1 "k8s.io/api/apps/v1"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	faketestclients "github.com/Mirantis/ceph-connector/test/unit/clients"
)

// TestHelperProcess is not a real test, it is a command started by LocalRunner
func TestHelperProcess(_ *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Fprint(os.Stdout, os.Getenv("HELPER_STDOUT"))
	fmt.Fprint(os.Stderr, os.Getenv("HELPER_STDERR"))
	code := 0
	fmt.Sscanf(os.Getenv("HELPER_CODE"), "%d", &code)
	os.Exit(code)
}

func fakeExecCommand(stdout, stderr string, code int) func(context.Context, string, ...string) *exec.Cmd {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			"HELPER_STDOUT="+stdout,
			"HELPER_STDERR="+stderr,
			fmt.Sprintf("HELPER_CODE=%d", code),
		)
		return cmd
	}
}

func TestLocalRunner(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		stdout        string
		stderr        string
		code          int
		expectedOut   string
		expectedCode  int
		expectedError string
	}{
		{
			name:          "no command",
			expectedError: "command is not specified",
		},
		{
			name:        "command succeed",
			args:        []string{"radosgw-admin", "user", "info", "--uid", "rgw-admin-ops-user"},
			stdout:      `{"user_id":"rgw-admin-ops-user"}`,
			expectedOut: `{"user_id":"rgw-admin-ops-user"}`,
		},
		{
			name:          "command exited with non-zero code",
			args:          []string{"radosgw-admin", "user", "create", "--uid", "rgw-admin-ops-user"},
			stderr:        "could not create user: unable to create user, user: rgw-admin-ops-user exists",
			code:          17,
			expectedCode:  17,
			expectedError: "command 'radosgw-admin user create --uid rgw-admin-ops-user' exited with code 17: could not create user: unable to create user, user: rgw-admin-ops-user exists",
		},
	}
	oldExec := execCommand
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			execCommand = fakeExecCommand(test.stdout, test.stderr, test.code)
			out, err := LocalRunner{}.Run(context.TODO(), test.args...)
			if test.expectedError != "" {
				assert.NotNil(t, err)
				assert.Equal(t, test.expectedError, err.Error())
			} else {
				assert.Nil(t, err)
			}
			assert.Equal(t, test.expectedOut, out)
			if test.expectedCode != 0 {
				exitErr, ok := AsExitError(err)
				assert.True(t, ok)
				assert.Equal(t, test.expectedCode, exitErr.Code)
			}
		})
	}
	execCommand = oldExec
}

type fakeExitStatus struct {
	code int
}

func (f fakeExitStatus) Error() string {
	return fmt.Sprintf("command terminated with exit code %d", f.code)
}

func (f fakeExitStatus) ExitStatus() int {
	return f.code
}

func TestToolboxRunner(t *testing.T) {
	readyToolbox := &appsv1.DeploymentList{
		Items: []appsv1.Deployment{
			{
				ObjectMeta: metav1.ObjectMeta{Name: "rook-ceph-tools", Namespace: "rook-ceph", Labels: map[string]string{"app": "rook-ceph-tools"}},
				Status:     appsv1.DeploymentStatus{Replicas: 1, UpdatedReplicas: 1, ReadyReplicas: 1, AvailableReplicas: 1},
			},
		},
	}
	toolboxPods := &v1.PodList{
		Items: []v1.Pod{
			{
				ObjectMeta: metav1.ObjectMeta{Name: "rook-ceph-tools-7c9b5d6f8-abcde", Namespace: "rook-ceph", Labels: map[string]string{"app": "rook-ceph-tools"}},
				Spec:       v1.PodSpec{Containers: []v1.Container{{Name: "rook-ceph-tools"}}},
				Status: v1.PodStatus{
					Phase:             v1.PodRunning,
					Conditions:        []v1.PodCondition{{Type: v1.PodReady, Status: v1.ConditionTrue}},
					ContainerStatuses: []v1.ContainerStatus{{Name: "rook-ceph-tools", Ready: true}},
				},
			},
		},
	}
	tests := []struct {
		name          string
		deployments   *appsv1.DeploymentList
		runErr        error
		expectedOut   string
		expectedCode  int
		expectedError string
	}{
		{
			name:          "toolbox is absent",
			deployments:   &appsv1.DeploymentList{},
			expectedError: "no toolbox deployment with label 'app=rook-ceph-tools' found in namespace 'rook-ceph'",
		},
		{
			name:        "command succeed",
			deployments: readyToolbox,
			expectedOut: "stdout",
		},
		{
			name:          "command exit code is propagated",
			deployments:   readyToolbox,
			runErr:        fakeExitStatus{code: 244},
			expectedOut:   "stdout",
			expectedCode:  244,
			expectedError: "command 'radosgw-admin caps add --uid rgw-admin-ops-user --caps info=read' exited with code 244: stderr",
		},
		{
			name:          "exec failed",
			deployments:   readyToolbox,
			runErr:        errors.New("connection refused"),
			expectedOut:   "stdout",
			expectedError: "failed to run command 'radosgw-admin caps add --uid rgw-admin-ops-user --caps info=read' (stdErr: stderr): connection refused",
		},
	}
	oldFunc := cephcommon.ExecInPod
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			kubeClient := faketestclients.GetFakeKubeclient()
			faketestclients.FakeReaction(kubeClient.AppsV1(), "list", []string{"deployments"}, map[string]runtime.Object{"deployments": test.deployments}, nil)
			faketestclients.FakeReaction(kubeClient.CoreV1(), "list", []string{"pods"}, map[string]runtime.Object{"pods": toolboxPods}, nil)
			cephcommon.ExecInPod = func(_ context.Context, _ *rest.Config, _ kubernetes.Interface, pod *v1.Pod, _ string, args []string) (string, string, error) {
				assert.Equal(t, "rook-ceph-tools-7c9b5d6f8-abcde", pod.Name)
				assert.Equal(t, []string{"radosgw-admin", "caps", "add", "--uid", "rgw-admin-ops-user", "--caps", "info=read"}, args)
				return "stdout", "stderr", test.runErr
			}
			runner := &ToolboxRunner{KubeClient: kubeClient, Config: &rest.Config{}, Namespace: "rook-ceph"}
			out, err := runner.Run(context.TODO(), "radosgw-admin", "caps", "add", "--uid", "rgw-admin-ops-user", "--caps", "info=read")
			if test.expectedError != "" {
				assert.NotNil(t, err)
				assert.Equal(t, test.expectedError, err.Error())
			} else {
				assert.Nil(t, err)
			}
			assert.Equal(t, test.expectedOut, out)
			if test.expectedCode != 0 {
				exitErr, ok := AsExitError(err)
				assert.True(t, ok)
				assert.Equal(t, test.expectedCode, exitErr.Code)
			}
		})
	}
	cephcommon.ExecInPod = oldFunc
}

func TestFakeRunner(t *testing.T) {
	runner := NewFakeRunner(map[string]FakeRunReply{
		"radosgw-admin realm get --rgw-realm realm1": {Out: `{"name":"realm1"}`},
		"radosgw-admin zone get --rgw-zone zone2":    {Code: 2, Stderr: "zone not found"},
	})
	out, err := runner.Run(context.TODO(), "radosgw-admin", "realm", "get", "--rgw-realm", "realm1")
	assert.Nil(t, err)
	assert.Equal(t, `{"name":"realm1"}`, out)
	_, err = runner.Run(context.TODO(), "radosgw-admin", "zone", "get", "--rgw-zone", "zone2")
	exitErr, ok := AsExitError(err)
	assert.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
	assert.Equal(t, []string{"radosgw-admin realm get --rgw-realm realm1", "radosgw-admin zone get --rgw-zone zone2"}, runner.Calls)
}
