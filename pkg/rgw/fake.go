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
	"strings"
)

type FakeRunReply struct {
	Out    string
	Code   int
	Stderr string
}

// FakeRunner replies with canned outputs keyed by space joined args
type FakeRunner struct {
	Replies map[string]FakeRunReply
	Calls   []string
}

func NewFakeRunner(replies map[string]FakeRunReply) *FakeRunner {
	if replies == nil {
		replies = map[string]FakeRunReply{}
	}
	return &FakeRunner{Replies: replies}
}

func (f *FakeRunner) Run(_ context.Context, args ...string) (string, error) {
	command := strings.Join(args, " ")
	f.Calls = append(f.Calls, command)
	reply, ok := f.Replies[command]
	if !ok {
		return "", &ExitError{Args: args, Code: 22, Stderr: "unknown command"}
	}
	if reply.Code != 0 {
		return reply.Out, &ExitError{Args: args, Code: reply.Code, Stderr: reply.Stderr}
	}
	return reply.Out, nil
}
