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

package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	"github.com/Mirantis/ceph-connector/pkg/endpoint"
	"github.com/Mirantis/ceph-connector/pkg/provisioner"
	"github.com/Mirantis/ceph-connector/pkg/rgw"
)

type GatewayRequest struct {
	Endpoint    string
	TLSCertPath string
	SkipTLS     bool
	PoolPrefix  string
}

// GatewayResult holds checked gateway endpoint, when OK is false gateway
// output must be omitted
type GatewayResult struct {
	// Endpoint is in '<ip>:<port>' form
	Endpoint    string
	Scheme      endpoint.Scheme
	TLSCert     string
	Diagnostics []Diagnostic
	OK          bool

	trust      endpoint.TrustOptions
	poolPrefix string
}

func (r *GatewayResult) fail(code, format string, args ...interface{}) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Code: code, Message: fmt.Sprintf(format, args...)})
	r.OK = false
}

// GatewayEndpoint checks object gateway endpoint syntax, resolves its host
// and probes it. Malformed or unreachable endpoint and unreadable
// certificate are errors. Nothing is created on the cluster.
func (v *Validator) GatewayEndpoint(ctx context.Context, req GatewayRequest) (*GatewayResult, error) {
	ep, err := endpoint.Classify(req.Endpoint)
	if err != nil {
		return nil, err
	}
	host := ep.Host
	if ep.Family == endpoint.FQDN {
		host, err = v.resolver.Resolve(ctx, ep.Host, v.family)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to convert rgw endpoint '%s' host to IP", req.Endpoint)
		}
	}
	result := &GatewayResult{
		Endpoint:   endpoint.JoinHostPort(host, ep.Port),
		OK:         true,
		trust:      endpoint.TrustOptions{SkipVerify: req.SkipTLS},
		poolPrefix: req.PoolPrefix,
	}
	if req.TLSCertPath != "" {
		cert, err := cephcommon.ReadTLSCert(req.TLSCertPath)
		if err != nil {
			return nil, err
		}
		result.TLSCert = strings.TrimRight(cert, " \t\r\n")
		if !req.SkipTLS {
			result.trust.CACert = result.TLSCert
		}
	}
	result.Scheme, err = v.prober.Probe(ctx, result.Endpoint, result.trust)
	if err != nil {
		return nil, errors.Wrapf(err, "rgw endpoint '%s' check failed", result.Endpoint)
	}
	return result, nil
}

// GatewayIdentity cross-checks checked gateway against the cluster with the
// rgw admin ops user and verifies prefixed pools. Failures are only
// recorded as result diagnostics.
func (v *Validator) GatewayIdentity(ctx context.Context, result *GatewayResult, user *provisioner.AdminOpsUser) error {
	v.checkGatewayIdentity(ctx, result, user)
	if err := v.checkGatewayPools(result, result.poolPrefix); err != nil {
		return err
	}
	for _, diag := range result.Diagnostics {
		v.log.Warn().Msg(diag.String())
	}
	return nil
}

func (v *Validator) checkGatewayIdentity(ctx context.Context, result *GatewayResult, user *provisioner.AdminOpsUser) {
	if user == nil || v.session.DryRun() {
		return
	}
	if !user.InfoCapSupported {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Code:    DiagRgwInfoCapNotSupported,
			Message: "rgw admin ops user has no 'info' caps, rgw endpoint cluster id check is skipped",
		})
		return
	}
	client, err := rgw.NewAdminOpsClient(result.Scheme, result.Endpoint, user.AccessKey, user.SecretKey, result.trust)
	if err != nil {
		result.fail(DiagRgwAdminOpsFailed, "failed to build rgw admin ops client: %v", err)
		return
	}
	clusterID, err := client.ClusterID(ctx)
	if err != nil {
		result.fail(DiagRgwAdminOpsFailed, "failed to get rgw cluster id: %v", err)
		return
	}
	fsid, err := v.session.FSID()
	if err != nil {
		result.fail(DiagRgwAdminOpsFailed, "%v", err)
		return
	}
	if clusterID != fsid {
		result.fail(DiagRgwClusterIDMismatch,
			"The provided rgw Endpoint, '%s', is invalid. We are validating by calling the adminops api through rgw-endpoint and validating the cluster_id '%s' is equal to the ceph cluster fsid '%s'",
			result.Endpoint, clusterID, fsid)
	}
}

// GatewayPools returns pools rgw with a given prefix relies on
func GatewayPools(prefix string) []string {
	return []string{prefix + ".rgw.meta", ".rgw.root", prefix + ".rgw.control", prefix + ".rgw.log"}
}

func (v *Validator) checkGatewayPools(result *GatewayResult, prefix string) error {
	if prefix == "" || prefix == cephcommon.DefaultRgwPoolPrefix {
		return nil
	}
	for _, pool := range GatewayPools(prefix) {
		exists, err := v.session.PoolExists(pool)
		if err != nil {
			return err
		}
		if !exists {
			result.fail(DiagRgwPoolMissing, "%s", poolNotFound(pool))
		}
	}
	return nil
}

// Multisite checks realm, zonegroup and zone exist, partial configuration
// is an error
func (v *Validator) Multisite(ctx context.Context, multisite rgw.Multisite) ([]Diagnostic, error) {
	if !multisite.Configured() {
		return nil, nil
	}
	if !multisite.Complete() {
		return nil, cephcommon.NewConfigError("'--rgw-realm-name', '--rgw-zonegroup-name' and '--rgw-zone-name' must be set together")
	}
	diags := []Diagnostic{}
	for _, item := range []struct{ kind, name string }{
		{"realm", multisite.Realm},
		{"zonegroup", multisite.ZoneGroup},
		{"zone", multisite.Zone},
	} {
		if _, err := v.runner.Run(ctx, "radosgw-admin", item.kind, "get", "--rgw-"+item.kind, item.name); err != nil {
			diag := Diagnostic{
				Code:    DiagRgwMultisiteNotFound,
				Message: fmt.Sprintf("failed to get rgw %s '%s': %v", item.kind, item.name, err),
			}
			v.log.Warn().Msg(diag.String())
			diags = append(diags, diag)
		}
	}
	return diags, nil
}
