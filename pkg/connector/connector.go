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

package connector

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/Mirantis/ceph-connector/pkg/caps"
	"github.com/Mirantis/ceph-connector/pkg/cluster"
	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	"github.com/Mirantis/ceph-connector/pkg/config"
	"github.com/Mirantis/ceph-connector/pkg/endpoint"
	"github.com/Mirantis/ceph-connector/pkg/output"
	"github.com/Mirantis/ceph-connector/pkg/provisioner"
	"github.com/Mirantis/ceph-connector/pkg/rgw"
	"github.com/Mirantis/ceph-connector/pkg/topology"
	"github.com/Mirantis/ceph-connector/pkg/upgrade"
	"github.com/Mirantis/ceph-connector/pkg/validation"
)

const DiagMonitoringNotFound = "MONITORING_ENDPOINT_NOT_FOUND"

// Opts are transports used besides cluster connection
type Opts struct {
	Runner   rgw.CommandRunner
	Prober   endpoint.Prober
	Resolver *endpoint.Resolver
	// DryRunOut receives commands which are not executed in dry run mode
	DryRunOut io.Writer
}

// CephConnector runs one provisioning session against external cluster
type CephConnector struct {
	cfg      config.Config
	session  *cluster.Session
	runner   rgw.CommandRunner
	prober   endpoint.Prober
	resolver *endpoint.Resolver
	log      zerolog.Logger

	result *output.Result
}

func New(cfg config.Config, conn cluster.Connection, opts Opts, log zerolog.Logger) *CephConnector {
	if opts.Runner == nil {
		opts.Runner = rgw.LocalRunner{}
	}
	if opts.Prober == nil {
		opts.Prober = endpoint.NoopProber{}
	}
	if opts.Resolver == nil {
		opts.Resolver = endpoint.NewResolver()
	}
	session := cluster.NewSession(conn, log, cluster.Options{Verbose: cfg.Verbose, DryRun: cfg.DryRun, DryRunOut: opts.DryRunOut})
	return &CephConnector{
		cfg:      cfg,
		session:  session,
		runner:   opts.Runner,
		prober:   opts.Prober,
		resolver: opts.Resolver,
		log:      cephcommon.SubLogger(log, "connector"),
	}
}

func (c *CephConnector) Session() *cluster.Session {
	return c.session
}

// Shutdown closes cluster session, safe to call more than once
func (c *CephConnector) Shutdown() {
	c.session.Shutdown()
}

// Run upgrades users permissions or renders connection bundle to w
func (c *CephConnector) Run(ctx context.Context, w io.Writer) error {
	if c.cfg.Upgrade {
		_, err := c.Upgrade()
		return err
	}
	format, err := output.ParseFormat(c.cfg.Format)
	if err != nil {
		return err
	}
	result, err := c.Result(ctx)
	if err != nil {
		return err
	}
	// records are not printed in dry run, only executed commands
	if c.session.DryRun() && format != output.FormatBash {
		return nil
	}
	return output.Render(w, result, format)
}

// Upgrade merges minimal caps into existing users. Restricted run as user
// is the only one upgraded.
func (c *CephConnector) Upgrade() ([]upgrade.Outcome, error) {
	users := upgrade.Identities(c.cfg.RunAsUser)
	if _, restricted, err := caps.RoleForEntity(c.cfg.RunAsUser); err == nil && restricted {
		users = []string{c.cfg.RunAsUser}
	}
	outcomes, err := upgrade.New(c.session, c.cfg.Scope(), c.log).Run(users)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upgrade users permissions")
	}
	for _, outcome := range outcomes {
		c.log.Debug().Msgf("user '%s' upgrade state: %s", outcome.Entity, outcome.State)
	}
	return outcomes, nil
}

// Result builds connection bundle once, later calls return the same result
func (c *CephConnector) Result(ctx context.Context) (*output.Result, error) {
	if c.result != nil {
		return c.result, nil
	}
	result, err := c.buildResult(ctx)
	if err != nil {
		return nil, err
	}
	c.result = result
	return result, nil
}

func (c *CephConnector) buildResult(ctx context.Context) (*output.Result, error) {
	cfg := c.cfg
	c.checkClusterVersion()

	topo := topology.New(c.session, c.resolver, c.prober, topology.Options{
		V2PortEnable:           cfg.V2PortEnable,
		MonitoringEndpoint:     cfg.MonitoringEndpoint,
		MonitoringEndpointPort: cfg.MonitoringEndpointPort,
		SkipMonitoringEndpoint: cfg.SkipMonitoringEndpoint,
	}, c.log)
	validator := validation.New(c.session, c.runner, c.prober, c.resolver, topo.AddressFamily, c.log)
	prov := provisioner.New(c.session, c.runner, cfg.Multisite(), c.log)

	if err := validator.RBDPool(cfg.RBDDataPoolName); err != nil {
		return nil, err
	}
	if err := validator.RadosNamespace(cfg.RBDDataPoolName, cfg.RadosNamespace); err != nil {
		return nil, err
	}
	fs, err := validator.Filesystem(validation.FilesystemRequest{
		Name:         cfg.CephFSFilesystemName,
		DataPool:     cfg.CephFSDataPoolName,
		MetadataPool: cfg.CephFSMetadataPoolName,
	})
	if err != nil {
		return nil, err
	}
	if err := validator.ECMetadataPool(cfg.RBDDataPoolName, cfg.RBDMetadataECPoolName); err != nil {
		return nil, err
	}
	if err := validator.TopologyPools(cfg.TopologyPools, cfg.TopologyFailureDomainLabel, cfg.TopologyFailureDomainValues); err != nil {
		return nil, err
	}

	result := &output.Result{
		Namespace:                   cfg.Namespace,
		K8sClusterName:              cfg.K8sClusterName,
		RBDPoolName:                 cfg.RBDDataPoolName,
		RBDMetadataECPool:           cfg.RBDMetadataECPoolName,
		RadosNamespace:              cfg.RadosNamespace,
		RestrictedAuthPermission:    cfg.RestrictedAuthPermission,
		RgwPoolPrefix:               cfg.RgwPoolPrefixOrDefault(),
		TopologyPools:               cfg.TopologyPools,
		TopologyFailureDomainLabel:  cfg.TopologyFailureDomainLabel,
		TopologyFailureDomainValues: cfg.TopologyFailureDomainValues,
	}
	if result.FSID, err = c.session.FSID(); err != nil {
		return nil, err
	}
	if result.MonData, err = topo.MonitorQuorum(); err != nil {
		return nil, err
	}

	// gateway must be reachable before any user is created
	var gw *gatewayCheck
	if cfg.RgwEndpoint != "" {
		if gw, err = c.checkGatewayEndpoint(ctx, validator); err != nil {
			return nil, err
		}
	}

	scope := cfg.Scope()
	scope.Filesystem = fs.Name
	scope.RunAsUser = cfg.HealthCheckerUser()
	scope.RgwPoolPrefix = cfg.RgwPoolPrefixOrDefault()
	if result.Username, result.UserSecret, err = prov.Provision(caps.HealthChecker, false, scope); err != nil {
		return nil, err
	}
	result.DashboardLink = topo.DashboardLink()

	restricted := cfg.RestrictedAuthPermission
	if result.RBDNodeUser, result.RBDNodeSecret, err = prov.Provision(caps.RBDNode, restricted, scope); err != nil {
		return nil, err
	}
	if result.RBDProvisionerUser, result.RBDProvisionerSecret, err = prov.Provision(caps.RBDProvisioner, restricted, scope); err != nil {
		return nil, err
	}

	result.CephFSName = fs.Name
	result.CephFSMetadataPool = fs.MetadataPool
	result.CephFSDataPool = fs.DataPool
	// cephfs users are created only when mds is running
	if fs.Name != "" && fs.DataPool != "" {
		if err := validator.SubvolumeGroups(fs.Name, cfg.SubvolumeGroup); err != nil {
			return nil, err
		}
		result.SubvolumeGroup = cfg.SubvolumeGroup
		if result.CephFSNodeUser, result.CephFSNodeSecret, err = prov.Provision(caps.CephFSNode, restricted, scope); err != nil {
			return nil, err
		}
		if result.CephFSProvisionerUser, result.CephFSProvisionerSecret, err = prov.Provision(caps.CephFSProvisioner, restricted, scope); err != nil {
			return nil, err
		}
	}

	monitoring, err := topo.Managers(ctx)
	if err != nil {
		if !errors.Is(err, topology.ErrPrometheusNotFound) {
			return nil, err
		}
		c.log.Warn().Err(err).Msg("monitoring endpoint is not set")
		result.Diagnostics = append(result.Diagnostics, validation.Diagnostic{Code: DiagMonitoringNotFound, Message: err.Error()})
	}
	result.MonitoringEndpoint = monitoring.EndpointList()
	result.MonitoringEndpointPort = monitoring.Port

	if gw != nil {
		if err := c.gateway(ctx, validator, prov, gw, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type gatewayCheck struct {
	endpoint  *validation.GatewayResult
	multisite []validation.Diagnostic
}

// checkGatewayEndpoint runs gateway checks which need no rgw admin ops user
func (c *CephConnector) checkGatewayEndpoint(ctx context.Context, validator *validation.Validator) (*gatewayCheck, error) {
	cfg := c.cfg
	ep, err := validator.GatewayEndpoint(ctx, validation.GatewayRequest{
		Endpoint:    cfg.RgwEndpoint,
		TLSCertPath: cfg.RgwTLSCertPath,
		SkipTLS:     cfg.RgwSkipTLS,
		PoolPrefix:  cfg.RgwPoolPrefixOrDefault(),
	})
	if err != nil {
		return nil, err
	}
	multisite, err := validator.Multisite(ctx, cfg.Multisite())
	if err != nil {
		return nil, err
	}
	return &gatewayCheck{endpoint: ep, multisite: multisite}, nil
}

// gateway fills object gateway fields when endpoint and multisite checks
// passed, diagnostics are recorded otherwise
func (c *CephConnector) gateway(ctx context.Context, validator *validation.Validator, prov *provisioner.Provisioner, check *gatewayCheck, result *output.Result) error {
	cfg := c.cfg
	user, err := prov.RGWAdminOpsUser(ctx)
	if err != nil {
		return err
	}
	gw := check.endpoint
	if err := validator.GatewayIdentity(ctx, gw, user); err != nil {
		return err
	}
	result.Diagnostics = append(result.Diagnostics, gw.Diagnostics...)
	result.Diagnostics = append(result.Diagnostics, check.multisite...)
	if !gw.OK || len(check.multisite) > 0 {
		c.log.Warn().Msgf("rgw endpoint '%s' is not valid, rgw output is skipped", cfg.RgwEndpoint)
		return nil
	}
	result.RgwEndpoint = gw.Endpoint
	result.RgwTLSCert = gw.TLSCert
	result.RgwRealm = cfg.RgwRealmName
	result.RgwZoneGroup = cfg.RgwZoneGroupName
	result.RgwZone = cfg.RgwZoneName
	result.RgwAdminOpsAccessKey = user.AccessKey
	result.RgwAdminOpsSecretKey = user.SecretKey
	return nil
}

// checkClusterVersion only warns, cluster may still serve older clients
func (c *CephConnector) checkClusterVersion() {
	reply, err := c.session.IssueCommand(cluster.Command{"prefix": "version", "format": "json"})
	if err != nil || !reply.Succeed() {
		c.log.Warn().Msg("failed to get ceph cluster version")
		return
	}
	version := cephcommon.GetCephVersionFromOutput(gjson.GetBytes(reply.Out, "version").String())
	current, err := cephcommon.ParseCephVersion(version)
	if err != nil {
		c.log.Warn().Msgf("ceph cluster version '%s' is not supported, minimal supported release is %s", version, cephcommon.MinimalSupportedRelease.Name)
		return
	}
	c.log.Info().Msgf("ceph cluster release: %s %s.%s", current.Name, current.MajorVersion, current.MinorVersion)
}
