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

package provisioner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Mirantis/ceph-connector/pkg/caps"
	"github.com/Mirantis/ceph-connector/pkg/cluster"
	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	"github.com/Mirantis/ceph-connector/pkg/rgw"
)

const (
	rgwUserExistsCode      = 17
	rgwCapsUnsupportedCode = 244
	rgwCapsUnsupportedMsg  = "could not add caps: unable to add caps: info=read"
)

type Provisioner struct {
	session   *cluster.Session
	runner    rgw.CommandRunner
	multisite rgw.Multisite
	log       zerolog.Logger
}

func New(session *cluster.Session, runner rgw.CommandRunner, multisite rgw.Multisite, log zerolog.Logger) *Provisioner {
	return &Provisioner{
		session:   session,
		runner:    runner,
		multisite: multisite,
		log:       cephcommon.SubLogger(log, "provisioner"),
	}
}

// Provision builds caps and name for a role and gets or creates the user
func (p *Provisioner) Provision(role caps.Role, restricted bool, scope caps.Scope) (string, string, error) {
	set, entity, err := caps.ForRole(role, restricted, scope)
	if err != nil {
		return "", "", err
	}
	key, err := p.GetOrCreate(entity, set)
	if err != nil {
		return "", "", err
	}
	return entity, key, nil
}

// GetOrCreate returns key of an existing user as is, caps are not changed.
// Missing user is created with exactly the provided caps.
func (p *Provisioner) GetOrCreate(entity string, set caps.Set) (string, error) {
	key, found, err := p.existingKey(entity)
	if err != nil {
		return "", err
	}
	if found {
		p.log.Debug().Msgf("user '%s' already exists", entity)
		return key, nil
	}
	entries := []cephcommon.AuthEntry{}
	cmd := cluster.Command{"prefix": "auth get-or-create", "entity": entity, "caps": set.FlatList(), "format": "json"}
	if err := p.session.MustSucceed(fmt.Sprintf("create user '%s'", entity), cmd, &entries); err != nil {
		return "", err
	}
	if p.session.DryRun() {
		return "", nil
	}
	if len(entries) == 0 || entries[0].Key == "" {
		return "", errors.Errorf("failed to create user '%s': no key returned", entity)
	}
	p.log.Info().Msgf("created user '%s'", entity)
	return entries[0].Key, nil
}

func (p *Provisioner) existingKey(entity string) (string, bool, error) {
	entries := []cephcommon.AuthEntry{}
	found, err := GetUser(p.session, entity, &entries)
	if err != nil || !found {
		return "", false, err
	}
	if len(entries) == 0 || entries[0].Key == "" {
		return "", false, nil
	}
	return entries[0].Key, true, nil
}

// GetUser runs 'auth get', false is returned when user is not found
func GetUser(session *cluster.Session, entity string, v interface{}) (bool, error) {
	reply, err := session.IssueCommand(cluster.Command{"prefix": "auth get", "entity": entity, "format": "json"})
	if err != nil {
		return false, errors.Wrapf(err, "failed to get user '%s'", entity)
	}
	if !reply.Succeed() || len(reply.Out) == 0 {
		return false, nil
	}
	if err := reply.Decode(v); err != nil {
		return false, errors.Wrapf(err, "failed to parse 'auth get' output for user '%s'", entity)
	}
	return true, nil
}

type AdminOpsUser struct {
	AccessKey string
	SecretKey string
	// InfoCapSupported is false for releases without 'info' user caps
	InfoCapSupported bool
}

// RGWAdminOpsUser gets or creates rgw admin ops user and grants 'info' caps
func (p *Provisioner) RGWAdminOpsUser(ctx context.Context) (*AdminOpsUser, error) {
	createArgs := append([]string{
		"radosgw-admin", "user", "create",
		"--uid", cephcommon.RgwAdminOpsUserName,
		"--display-name", cephcommon.RgwAdminOpsUserDisplayName,
		"--caps", cephcommon.RgwAdminOpsUserCaps,
	}, p.multisite.Args()...)
	if p.session.DryRun() {
		p.session.Echo(quoteArgs(createArgs))
		return &AdminOpsUser{}, nil
	}
	out, err := p.runner.Run(ctx, createArgs...)
	if err != nil {
		exitErr, ok := rgw.AsExitError(err)
		if !ok || exitErr.Code != rgwUserExistsCode {
			return nil, errors.Wrap(err, "failed to create rgw admin ops user")
		}
		infoArgs := append([]string{"radosgw-admin", "user", "info", "--uid", cephcommon.RgwAdminOpsUserName}, p.multisite.Args()...)
		out, err = p.runner.Run(ctx, infoArgs...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get rgw admin ops user info")
		}
	}
	userInfo := cephcommon.RgwUserInfo{}
	if err := json.Unmarshal([]byte(out), &userInfo); err != nil {
		return nil, errors.Wrap(err, "failed to parse rgw admin ops user info")
	}
	if len(userInfo.Keys) == 0 {
		return nil, errors.Errorf("rgw admin ops user '%s' has no keys", cephcommon.RgwAdminOpsUserName)
	}
	user := &AdminOpsUser{
		AccessKey:        userInfo.Keys[0].AccessKey,
		SecretKey:        userInfo.Keys[0].SecretKey,
		InfoCapSupported: true,
	}
	capsArgs := append([]string{"radosgw-admin", "caps", "add", "--uid", cephcommon.RgwAdminOpsUserName, "--caps", "info=read"}, p.multisite.Args()...)
	if _, err := p.runner.Run(ctx, capsArgs...); err != nil {
		exitErr, ok := rgw.AsExitError(err)
		if !ok || exitErr.Code != rgwCapsUnsupportedCode || !strings.Contains(exitErr.Stderr, rgwCapsUnsupportedMsg) {
			return nil, errors.Wrap(err, "failed to add 'info' caps to rgw admin ops user")
		}
		p.log.Warn().Msg("rgw admin ops user 'info' caps are not supported, rgw endpoint cluster id check is skipped")
		user.InfoCapSupported = false
	}
	return user, nil
}

func quoteArgs(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		if strings.ContainsAny(arg, " ;*") {
			arg = fmt.Sprintf("%q", arg)
		}
		quoted = append(quoted, arg)
	}
	return strings.Join(quoted, " ")
}
