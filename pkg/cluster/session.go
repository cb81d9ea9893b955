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
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
)

// Connection is an administrative channel to a Ceph cluster
type Connection interface {
	MonCommand(args []byte) ([]byte, string, error)
	MgrCommand(args []byte) ([]byte, string, error)
	FSID() (string, error)
	PoolExists(pool string) (bool, error)
	NamespaceExists(pool, namespace string) (bool, error)
	InitRBDPool(pool string) error
	Shutdown()
}

// Command is a mon/mgr command descriptor, 'prefix' is mandatory
type Command map[string]interface{}

func (c Command) Prefix() string {
	prefix, _ := c["prefix"].(string)
	return prefix
}

// Canonical returns key sorted JSON without html escaping
func (c Command) Canonical() (string, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]interface{}(c)); err != nil {
		return "", errors.Wrapf(err, "failed to serialize '%s' command", c.Prefix())
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// leading arguments go in the order ceph cli expects them, rest are sorted
var positionalArgs = []string{"entity", "vol_name", "group_name", "pin_type", "pin_setting"}

// String renders command as it is typed with ceph cli
func (c Command) String() string {
	words := []string{"ceph", c.Prefix()}
	keys := []string{}
	for _, k := range positionalArgs {
		if _, ok := c[k]; ok {
			keys = append(keys, k)
		}
	}
	rest := []string{}
	for k := range c {
		if k != "prefix" && k != "format" && !cephcommon.Contains(positionalArgs, k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range append(keys, rest...) {
		switch v := c[k].(type) {
		case []string:
			for idx := 0; idx+1 < len(v); idx += 2 {
				words = append(words, v[idx], fmt.Sprintf("%q", v[idx+1]))
			}
		default:
			words = append(words, fmt.Sprintf("%v", v))
		}
	}
	return strings.Join(words, " ")
}

// Reply of a command, Out is filled when command succeed
type Reply struct {
	Status int
	Out    []byte
	ErrMsg string
}

func (r Reply) Succeed() bool {
	return r.Status == 0
}

func (r Reply) Decode(v interface{}) error {
	if len(r.Out) == 0 {
		return errors.New(cephcommon.EmptyOutputList)
	}
	return json.Unmarshal(r.Out, v)
}

type Options struct {
	Verbose bool
	DryRun  bool
	// DryRunOut receives commands which are not executed in dry run mode
	DryRunOut io.Writer
}

var mutatingPrefixes = []string{
	"auth get-or-create",
	"auth caps",
	"fs subvolumegroup create",
	"fs subvolumegroup pin",
}

type Session struct {
	conn         Connection
	log          zerolog.Logger
	opts         Options
	fsid         string
	shutdownOnce sync.Once
}

func NewSession(conn Connection, log zerolog.Logger, opts Options) *Session {
	if opts.DryRunOut == nil {
		opts.DryRunOut = io.Discard
	}
	return &Session{
		conn: conn,
		log:  cephcommon.SubLogger(log, "session"),
		opts: opts,
	}
}

func (s *Session) DryRun() bool {
	return s.opts.DryRun
}

// IssueCommand sends command to monitors, non-zero status is not an error
// here and must be checked by caller
func (s *Session) IssueCommand(cmd Command) (Reply, error) {
	return s.issue(cmd, s.conn.MonCommand)
}

// IssueMgrCommand sends command to manager modules
func (s *Session) IssueMgrCommand(cmd Command) (Reply, error) {
	return s.issue(cmd, s.conn.MgrCommand)
}

func (s *Session) issue(cmd Command, send func([]byte) ([]byte, string, error)) (Reply, error) {
	if s.opts.DryRun && s.isMutating(cmd) {
		s.echo(cmd.String())
		return Reply{}, nil
	}
	payload, err := cmd.Canonical()
	if err != nil {
		return Reply{}, err
	}
	out, status, err := send([]byte(payload))
	reply := Reply{Out: out, ErrMsg: status}
	if err != nil {
		code, ok := errorCode(err)
		if !ok {
			return Reply{}, errors.Wrapf(err, "failed to send '%s' command", cmd.Prefix())
		}
		reply.Status = code
		reply.Out = nil
		if reply.ErrMsg == "" {
			reply.ErrMsg = err.Error()
		}
	}
	if s.opts.Verbose {
		s.log.Debug().Msgf("Command Input: %s", payload)
		s.log.Debug().Msgf("Return Val: %d, Command Output: %s, Error Message: %s", reply.Status, string(reply.Out), reply.ErrMsg)
	}
	return reply, nil
}

// MustSucceed issues mon command and decodes its output into v, non-zero
// status or empty output is an error
func (s *Session) MustSucceed(purpose string, cmd Command, v interface{}) error {
	return s.mustSucceed(purpose, cmd, v, s.IssueCommand)
}

func (s *Session) MgrMustSucceed(purpose string, cmd Command, v interface{}) error {
	return s.mustSucceed(purpose, cmd, v, s.IssueMgrCommand)
}

func (s *Session) mustSucceed(purpose string, cmd Command, v interface{}, issue func(Command) (Reply, error)) error {
	reply, err := issue(cmd)
	if err != nil {
		return errors.Wrapf(err, "failed to %s", purpose)
	}
	if s.opts.DryRun && s.isMutating(cmd) {
		return nil
	}
	if !reply.Succeed() {
		return errors.Wrapf(&CommandError{Prefix: cmd.Prefix(), Status: reply.Status, Message: reply.ErrMsg}, "failed to %s", purpose)
	}
	if v == nil {
		return nil
	}
	if len(reply.Out) == 0 {
		return errors.Wrapf(&CommandError{Prefix: cmd.Prefix(), Message: cephcommon.EmptyOutputList}, "failed to %s", purpose)
	}
	if err := reply.Decode(v); err != nil {
		return errors.Wrapf(err, "failed to %s: failed to parse '%s' output", purpose, cmd.Prefix())
	}
	return nil
}

// FSID returns cluster fsid, read once per session
func (s *Session) FSID() (string, error) {
	if s.fsid != "" {
		return s.fsid, nil
	}
	fsid, err := s.conn.FSID()
	if err != nil {
		return "", errors.Wrap(err, "failed to get cluster fsid")
	}
	s.fsid = fsid
	return fsid, nil
}

func (s *Session) PoolExists(pool string) (bool, error) {
	exists, err := s.conn.PoolExists(pool)
	if err != nil {
		return false, errors.Wrapf(err, "failed to check pool '%s'", pool)
	}
	return exists, nil
}

func (s *Session) NamespaceExists(pool, namespace string) (bool, error) {
	exists, err := s.conn.NamespaceExists(pool, namespace)
	if err != nil {
		return false, errors.Wrapf(err, "failed to check rados namespace '%s' in pool '%s'", namespace, pool)
	}
	return exists, nil
}

func (s *Session) InitRBDPool(pool string) error {
	if s.opts.DryRun {
		s.echo("rbd pool init " + pool)
		return nil
	}
	if err := s.conn.InitRBDPool(pool); err != nil {
		return errors.Wrapf(err, "failed to initialize pool '%s' for rbd application", pool)
	}
	return nil
}

// Shutdown closes connection, safe to call multiple times
func (s *Session) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.log.Debug().Msg("closing cluster connection")
		s.conn.Shutdown()
	})
}

// Echo prints command which would have been run in dry run mode
func (s *Session) Echo(command string) {
	s.echo(command)
}

func (s *Session) echo(command string) {
	fmt.Fprintf(s.opts.DryRunOut, "Execute: '%s'\n", command)
}

func (s *Session) isMutating(cmd Command) bool {
	return cephcommon.Contains(mutatingPrefixes, cmd.Prefix())
}
