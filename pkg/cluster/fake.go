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

package cluster

import (
	"encoding/json"
	"fmt"
)

// FakeReply is a canned reply, non-zero Code is returned as go-ceph like
// error carrying Status as message
type FakeReply struct {
	Out    string
	Status string
	Code   int
}

type FakeError struct {
	Code    int
	Message string
}

func (e *FakeError) Error() string {
	return fmt.Sprintf("ret=%d, %s", e.Code, e.Message)
}

func (e *FakeError) ErrorCode() int {
	return e.Code
}

// FakeConnection is an in-memory Connection seeded with canonical command
// JSON to reply pairs. When several replies are seeded for a command, they
// are returned one by one and the last one sticks.
type FakeConnection struct {
	Fsid             string
	Pools            []string
	Namespaces       map[string][]string
	Replies          map[string][]FakeReply
	Issued           []string
	InitializedPools []string
	ShutdownCalls    int
	// ConnectionError is returned for every command when set
	ConnectionError error
}

func NewFakeConnection(fsid string, pools ...string) *FakeConnection {
	return &FakeConnection{
		Fsid:       fsid,
		Pools:      pools,
		Namespaces: map[string][]string{},
		Replies:    map[string][]FakeReply{},
	}
}

func (fc *FakeConnection) Seed(command, out string) *FakeConnection {
	return fc.SeedSequence(command, FakeReply{Out: out})
}

func (fc *FakeConnection) SeedError(command string, code int, status string) *FakeConnection {
	return fc.SeedSequence(command, FakeReply{Code: code, Status: status})
}

func (fc *FakeConnection) SeedSequence(command string, replies ...FakeReply) *FakeConnection {
	fc.Replies[command] = append(fc.Replies[command], replies...)
	return fc
}

func (fc *FakeConnection) SeedMap(replies map[string]string) *FakeConnection {
	for command, out := range replies {
		fc.Seed(command, out)
	}
	return fc
}

func (fc *FakeConnection) MonCommand(args []byte) ([]byte, string, error) {
	return fc.reply(string(args))
}

func (fc *FakeConnection) MgrCommand(args []byte) ([]byte, string, error) {
	return fc.reply(string(args))
}

func (fc *FakeConnection) reply(command string) ([]byte, string, error) {
	fc.Issued = append(fc.Issued, command)
	if fc.ConnectionError != nil {
		return nil, "", fc.ConnectionError
	}
	replies := fc.Replies[command]
	if len(replies) == 0 {
		return nil, "unknown command", &FakeError{Code: -22, Message: "command is not seeded: " + command}
	}
	reply := replies[0]
	if len(replies) > 1 {
		fc.Replies[command] = replies[1:]
	}
	if reply.Code != 0 {
		return nil, reply.Status, &FakeError{Code: reply.Code, Message: reply.Status}
	}
	return []byte(reply.Out), reply.Status, nil
}

// IssuedPrefixes lists prefixes of issued commands in order
func (fc *FakeConnection) IssuedPrefixes() []string {
	prefixes := make([]string, 0, len(fc.Issued))
	for _, command := range fc.Issued {
		cmd := Command{}
		if err := json.Unmarshal([]byte(command), &cmd); err != nil {
			prefixes = append(prefixes, command)
			continue
		}
		prefixes = append(prefixes, cmd.Prefix())
	}
	return prefixes
}

// CountIssued returns how many times command with prefix was sent
func (fc *FakeConnection) CountIssued(prefix string) int {
	count := 0
	for _, issued := range fc.IssuedPrefixes() {
		if issued == prefix {
			count++
		}
	}
	return count
}

func (fc *FakeConnection) FSID() (string, error) {
	if fc.ConnectionError != nil {
		return "", fc.ConnectionError
	}
	return fc.Fsid, nil
}

func (fc *FakeConnection) PoolExists(pool string) (bool, error) {
	for _, p := range fc.Pools {
		if p == pool {
			return true, nil
		}
	}
	return false, nil
}

func (fc *FakeConnection) NamespaceExists(pool, namespace string) (bool, error) {
	exists, _ := fc.PoolExists(pool)
	if !exists {
		return false, &FakeError{Code: -2, Message: fmt.Sprintf("pool '%s' not found", pool)}
	}
	for _, ns := range fc.Namespaces[pool] {
		if ns == namespace {
			return true, nil
		}
	}
	return false, nil
}

func (fc *FakeConnection) InitRBDPool(pool string) error {
	fc.InitializedPools = append(fc.InitializedPools, pool)
	return nil
}

func (fc *FakeConnection) Shutdown() {
	fc.ShutdownCalls++
}
