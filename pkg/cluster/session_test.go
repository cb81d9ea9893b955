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
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
)

func TestCommandCanonical(t *testing.T) {
	cmd := Command{
		"prefix": "auth get-or-create",
		"entity": "client.csi-rbd-node",
		"format": "json",
		"caps":   []string{"mon", "profile rbd, allow command 'osd blocklist'", "osd", "profile rbd"},
	}
	payload, err := cmd.Canonical()
	assert.Nil(t, err)
	assert.Equal(t, `{"caps":["mon","profile rbd, allow command 'osd blocklist'","osd","profile rbd"],"entity":"client.csi-rbd-node","format":"json","prefix":"auth get-or-create"}`, payload)
	assert.Equal(t, `ceph auth get-or-create client.csi-rbd-node mon "profile rbd, allow command 'osd blocklist'" osd "profile rbd"`, cmd.String())

	pin := Command{"prefix": "fs subvolumegroup pin", "vol_name": "myfs", "group_name": "csi", "pin_type": "distributed", "pin_setting": "1", "format": "json"}
	payload, err = pin.Canonical()
	assert.Nil(t, err)
	assert.Equal(t, `{"format":"json","group_name":"csi","pin_setting":"1","pin_type":"distributed","prefix":"fs subvolumegroup pin","vol_name":"myfs"}`, payload)
	assert.Equal(t, "ceph fs subvolumegroup pin myfs csi distributed 1", pin.String())
}

func TestIssueCommand(t *testing.T) {
	quorumCmd := `{"format":"json","prefix":"quorum_status"}`
	tests := []struct {
		name          string
		conn          *FakeConnection
		expectedReply Reply
		expectedError string
	}{
		{
			name:          "reply is returned",
			conn:          NewFakeConnection("fsid").Seed(quorumCmd, `{"quorum_leader_name":"a"}`),
			expectedReply: Reply{Out: []byte(`{"quorum_leader_name":"a"}`)},
		},
		{
			name:          "non-zero status is not an error",
			conn:          NewFakeConnection("fsid").SeedError(quorumCmd, -13, "access denied"),
			expectedReply: Reply{Status: -13, ErrMsg: "access denied"},
		},
		{
			name: "transport failure",
			conn: func() *FakeConnection {
				fc := NewFakeConnection("fsid")
				fc.ConnectionError = errors.New("connection reset")
				return fc
			}(),
			expectedError: "failed to send 'quorum_status' command: connection reset",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			session := NewSession(test.conn, cephcommon.NewLogger(&bytes.Buffer{}, true), Options{Verbose: true})
			reply, err := session.IssueCommand(Command{"prefix": "quorum_status", "format": "json"})
			if test.expectedError != "" {
				assert.NotNil(t, err)
				assert.Equal(t, test.expectedError, err.Error())
			} else {
				assert.Nil(t, err)
			}
			assert.Equal(t, test.expectedReply, reply)
			assert.Equal(t, []string{quorumCmd}, test.conn.Issued)
		})
	}
}

func TestMustSucceed(t *testing.T) {
	statusCmd := `{"format":"json","prefix":"status"}`
	tests := []struct {
		name          string
		conn          *FakeConnection
		expected      map[string]interface{}
		expectedError string
	}{
		{
			name:     "output decoded",
			conn:     NewFakeConnection("fsid").Seed(statusCmd, `{"fsid":"abc"}`),
			expected: map[string]interface{}{"fsid": "abc"},
		},
		{
			name:          "non-zero status",
			conn:          NewFakeConnection("fsid").SeedError(statusCmd, -1, "permission denied"),
			expected:      map[string]interface{}{},
			expectedError: "failed to get cluster status: 'status' command failed with status -1: permission denied",
		},
		{
			name:          "empty output",
			conn:          NewFakeConnection("fsid").Seed(statusCmd, ""),
			expected:      map[string]interface{}{},
			expectedError: "failed to get cluster status: 'status' command failed: Empty output list",
		},
		{
			name:          "malformed output",
			conn:          NewFakeConnection("fsid").Seed(statusCmd, "{"),
			expected:      map[string]interface{}{},
			expectedError: "failed to get cluster status: failed to parse 'status' output: unexpected end of JSON input",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			session := NewSession(test.conn, cephcommon.NewLogger(&bytes.Buffer{}, false), Options{})
			out := map[string]interface{}{}
			err := session.MustSucceed("get cluster status", Command{"prefix": "status", "format": "json"}, &out)
			if test.expectedError != "" {
				assert.NotNil(t, err)
				assert.Equal(t, test.expectedError, err.Error())
			} else {
				assert.Nil(t, err)
			}
			assert.Equal(t, test.expected, out)
		})
	}
}

func TestDryRun(t *testing.T) {
	out := &bytes.Buffer{}
	fc := NewFakeConnection("fsid").Seed(`{"format":"json","prefix":"fs ls"}`, `[]`)
	session := NewSession(fc, cephcommon.NewLogger(&bytes.Buffer{}, false), Options{DryRun: true, DryRunOut: out})

	reply, err := session.IssueCommand(Command{"prefix": "auth caps", "entity": "client.healthchecker", "caps": []string{"mon", "allow r"}, "format": "json"})
	assert.Nil(t, err)
	assert.Equal(t, Reply{}, reply)
	assert.Nil(t, session.InitRBDPool("replicapool"))
	// reads are still sent
	reply, err = session.IssueCommand(Command{"prefix": "fs ls", "format": "json"})
	assert.Nil(t, err)
	assert.Equal(t, []byte(`[]`), reply.Out)

	assert.Equal(t, "Execute: 'ceph auth caps client.healthchecker mon \"allow r\"'\nExecute: 'rbd pool init replicapool'\n", out.String())
	assert.Equal(t, []string{"fs ls"}, fc.IssuedPrefixes())
	assert.Empty(t, fc.InitializedPools)
}

func TestSessionHelpers(t *testing.T) {
	fc := NewFakeConnection("af4e1673-0b72-402d-990a-22d2919d0f1c", "replicapool")
	fc.Namespaces["replicapool"] = []string{"ns-1"}
	session := NewSession(fc, cephcommon.NewLogger(&bytes.Buffer{}, false), Options{})

	fsid, err := session.FSID()
	assert.Nil(t, err)
	assert.Equal(t, "af4e1673-0b72-402d-990a-22d2919d0f1c", fsid)
	// fsid is cached
	fc.Fsid = "changed"
	fsid, _ = session.FSID()
	assert.Equal(t, "af4e1673-0b72-402d-990a-22d2919d0f1c", fsid)

	exists, err := session.PoolExists("replicapool")
	assert.Nil(t, err)
	assert.True(t, exists)
	exists, err = session.PoolExists("missing")
	assert.Nil(t, err)
	assert.False(t, exists)

	exists, err = session.NamespaceExists("replicapool", "ns-1")
	assert.Nil(t, err)
	assert.True(t, exists)
	_, err = session.NamespaceExists("missing", "ns-1")
	assert.NotNil(t, err)
	assert.Equal(t, "failed to check rados namespace 'ns-1' in pool 'missing': ret=-2, pool 'missing' not found", err.Error())

	assert.Nil(t, session.InitRBDPool("replicapool"))
	assert.Equal(t, []string{"replicapool"}, fc.InitializedPools)

	session.Shutdown()
	session.Shutdown()
	assert.Equal(t, 1, fc.ShutdownCalls)
}

func TestCommandErrorCode(t *testing.T) {
	err := errors.Wrap(&FakeError{Code: -17, Message: "exists"}, "wrapped")
	code, ok := errorCode(err)
	assert.True(t, ok)
	assert.Equal(t, -17, code)
	_, ok = errorCode(errors.New("plain"))
	assert.False(t, ok)
	assert.True(t, IsCommandError(errors.Wrap(&CommandError{Prefix: "status"}, "failed")))
}
