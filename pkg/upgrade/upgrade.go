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

package upgrade

import (
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/Mirantis/ceph-connector/pkg/caps"
	"github.com/Mirantis/ceph-connector/pkg/cluster"
	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	"github.com/Mirantis/ceph-connector/pkg/provisioner"
)

type State string

const (
	NotFound   State = "NotFound"
	Found      State = "Found"
	CapsMerged State = "CapsMerged"
	Applied    State = "Applied"
)

// Outcome is a final state of one user, Caps are merged caps
type Outcome struct {
	Entity string
	State  State
	Caps   caps.Set
}

var rgwMetaPoolRegexp = regexp.MustCompile(`pool=([^\s,]+)\.rgw\.meta`)

var defaultIdentities = []string{
	cephcommon.CephCSICephFSNodeClientName,
	cephcommon.CephCSICephFSProvisionerClientName,
	cephcommon.CephCSIRBDNodeClientName,
	cephcommon.CephCSIRBDProvisionerClientName,
	cephcommon.HealthCheckerClientName,
}

// Identities returns users to upgrade, run as user goes last if it is not
// one of defaults
func Identities(runAsUser string) []string {
	users := append([]string{}, defaultIdentities...)
	if runAsUser != "" && !cephcommon.Contains(users, runAsUser) {
		users = append(users, runAsUser)
	}
	return users
}

type Upgrader struct {
	session *cluster.Session
	scope   caps.Scope
	log     zerolog.Logger
}

func New(session *cluster.Session, scope caps.Scope, log zerolog.Logger) *Upgrader {
	return &Upgrader{
		session: session,
		scope:   scope,
		log:     cephcommon.SubLogger(log, "upgrade"),
	}
}

// Run upgrades every user, missing users are skipped
func (u *Upgrader) Run(users []string) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(users))
	for _, user := range users {
		outcome, err := u.User(user)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// User merges minimal caps of user role into its existing caps and applies
// result with a single 'auth caps' command
func (u *Upgrader) User(entity string) (Outcome, error) {
	outcome := Outcome{Entity: entity, State: NotFound}
	entries := []cephcommon.AuthEntry{}
	found, err := provisioner.GetUser(u.session, entity, &entries)
	if err != nil {
		return outcome, err
	}
	if !found || len(entries) == 0 {
		u.log.Info().Msgf("user %s not found for upgrading.", entity)
		return outcome, nil
	}
	outcome.State = Found
	existing := caps.NewSet(entries[0].Caps)

	required, err := u.requiredCaps(entity, existing)
	if err != nil {
		return outcome, err
	}
	outcome.Caps = existing.Merge(required)
	outcome.State = CapsMerged

	cmd := cluster.Command{"prefix": "auth caps", "entity": entity, "caps": outcome.Caps.FlatList(), "format": "json"}
	if err := u.session.MustSucceed(fmt.Sprintf("update caps of user '%s'", entity), cmd, nil); err != nil {
		return outcome, err
	}
	if u.session.DryRun() {
		return outcome, nil
	}
	outcome.State = Applied
	u.log.Info().Msgf("Updated user, %s, successfully.", entity)
	return outcome, nil
}

func (u *Upgrader) requiredCaps(entity string, existing caps.Set) (caps.Set, error) {
	role, restricted, err := caps.RoleForEntity(entity)
	if err != nil {
		if entity != u.scope.RunAsUser {
			return nil, err
		}
		// custom run as user is a health checker
		role, restricted = caps.HealthChecker, false
	}
	scope := u.scope
	if role == caps.HealthChecker {
		scope.RunAsUser = entity
		if scope.RgwPoolPrefix == "" {
			scope.RgwPoolPrefix = InferRgwPoolPrefix(existing)
		}
	}
	required, expected, err := caps.ForRole(role, restricted, scope)
	if err != nil {
		return nil, err
	}
	if expected != entity {
		u.log.Warn().Msgf("user '%s' does not match name '%s' built from provided flags, caps are taken from flags", entity, expected)
	}
	return required, nil
}

// InferRgwPoolPrefix finds rgw pool prefix in existing osd caps, default
// prefix is returned when there is none
func InferRgwPoolPrefix(existing caps.Set) string {
	for _, token := range existing["osd"] {
		if match := rgwMetaPoolRegexp.FindStringSubmatch(token); match != nil {
			return match[1]
		}
	}
	return cephcommon.DefaultRgwPoolPrefix
}
