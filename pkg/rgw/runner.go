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
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
)

// CommandRunner runs radosgw-admin like tools, non-zero exit is
// returned as *ExitError
type CommandRunner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

type ExitError struct {
	Args   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command '%s' exited with code %d: %s", strings.Join(e.Args, " "), e.Code, strings.TrimSpace(e.Stderr))
}

// AsExitError returns exit error from error chain if any
func AsExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}

var execCommand = exec.CommandContext

// LocalRunner runs commands on the current host
type LocalRunner struct{}

func (LocalRunner) Run(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("command is not specified")
	}
	var stdout, stderr bytes.Buffer
	cmd := execCommand(ctx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &ExitError{Args: args, Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return stdout.String(), errors.Wrapf(err, "failed to run command '%s'", strings.Join(args, " "))
	}
	return stdout.String(), nil
}

// exitStatus is implemented by remote command exit errors
type exitStatus interface {
	ExitStatus() int
}

// ToolboxRunner runs commands inside of Rook toolbox pod
type ToolboxRunner struct {
	KubeClient kubernetes.Interface
	Config     *rest.Config
	Namespace  string
	ready      bool
}

func (r *ToolboxRunner) Run(ctx context.Context, args ...string) (string, error) {
	if !r.ready {
		if err := cephcommon.CheckToolboxReady(ctx, r.KubeClient, r.Namespace); err != nil {
			return "", err
		}
		r.ready = true
	}
	stdout, stderr, err := cephcommon.RunToolboxCommand(ctx, r.KubeClient, r.Config, r.Namespace, args)
	if err != nil {
		var status exitStatus
		if errors.As(err, &status) {
			return stdout, &ExitError{Args: args, Code: status.ExitStatus(), Stderr: stderr}
		}
		return stdout, err
	}
	return stdout, nil
}
