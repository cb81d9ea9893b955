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

package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	koanf "github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/Mirantis/ceph-connector/pkg/caps"
	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	"github.com/Mirantis/ceph-connector/pkg/endpoint"
	"github.com/Mirantis/ceph-connector/pkg/output"
	"github.com/Mirantis/ceph-connector/pkg/rgw"
)

// Config is built once at start and passed by value, koanf keys are equal
// to command line flag names
type Config struct {
	CephConf  string `koanf:"ceph-conf"`
	Keyring   string `koanf:"keyring"`
	RunAsUser string `koanf:"run-as-user"`

	K8sClusterName string `koanf:"k8s-cluster-name"`
	// DeprecatedClusterName is an old name of k8s-cluster-name
	DeprecatedClusterName string `koanf:"cluster-name"`
	Namespace             string `koanf:"namespace"`

	RBDDataPoolName        string `koanf:"rbd-data-pool-name"`
	AliasRBDDataPoolName   string `koanf:"alias-rbd-data-pool-name"`
	RBDMetadataECPoolName  string `koanf:"rbd-metadata-ec-pool-name"`
	RadosNamespace         string `koanf:"rados-namespace"`
	CephFSFilesystemName   string `koanf:"cephfs-filesystem-name"`
	CephFSMetadataPoolName string `koanf:"cephfs-metadata-pool-name"`
	CephFSDataPoolName     string `koanf:"cephfs-data-pool-name"`
	SubvolumeGroup         string `koanf:"subvolume-group"`

	RgwEndpoint      string `koanf:"rgw-endpoint"`
	RgwTLSCertPath   string `koanf:"rgw-tls-cert-path"`
	RgwSkipTLS       bool   `koanf:"rgw-skip-tls"`
	RgwPoolPrefix    string `koanf:"rgw-pool-prefix"`
	RgwRealmName     string `koanf:"rgw-realm-name"`
	RgwZoneGroupName string `koanf:"rgw-zonegroup-name"`
	RgwZoneName      string `koanf:"rgw-zone-name"`

	MonitoringEndpoint     string `koanf:"monitoring-endpoint"`
	MonitoringEndpointPort string `koanf:"monitoring-endpoint-port"`
	SkipMonitoringEndpoint bool   `koanf:"skip-monitoring-endpoint"`

	TopologyPools               []string `koanf:"topology-pools"`
	TopologyFailureDomainLabel  string   `koanf:"topology-failure-domain-label"`
	TopologyFailureDomainValues []string `koanf:"topology-failure-domain-values"`

	Upgrade                  bool   `koanf:"upgrade"`
	RestrictedAuthPermission bool   `koanf:"restricted-auth-permission"`
	DryRun                   bool   `koanf:"dry-run"`
	V2PortEnable             bool   `koanf:"v2-port-enable"`
	Format                   string `koanf:"format"`
	Output                   string `koanf:"output"`
	Verbose                  bool   `koanf:"verbose"`

	ToolboxNamespace string `koanf:"toolbox-namespace"`
	Apply            bool   `koanf:"apply"`
	Kubeconfig       string `koanf:"kubeconfig"`
}

func Default() Config {
	return Config{
		CephConf:                    "/etc/ceph/ceph.conf",
		Format:                      string(output.FormatJSON),
		TopologyPools:               []string{},
		TopologyFailureDomainValues: []string{},
	}
}

// AddFlags registers every config option on flag set
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringP("ceph-conf", "c", d.CephConf, "Provide a ceph conf file")
	fs.String("keyring", d.Keyring, "Path to ceph keyring file, to be used with --ceph-conf")
	fs.StringP("run-as-user", "u", d.RunAsUser, "Provides a user name to check the cluster's health status, must be prefixed by 'client.'")
	fs.String("k8s-cluster-name", d.K8sClusterName, "Kubernetes cluster name, required for restricted auth permissions")
	fs.String("cluster-name", d.DeprecatedClusterName, "Kubernetes cluster name")
	_ = fs.MarkDeprecated("cluster-name", "use '--k8s-cluster-name' instead")
	fs.String("namespace", d.Namespace, "Namespace where CephCluster is running")

	fs.String("rbd-data-pool-name", d.RBDDataPoolName, "Provides the name of the RBD datapool")
	fs.String("alias-rbd-data-pool-name", d.AliasRBDDataPoolName, "Provides an alias for the RBD data pool name, necessary if a special character is present in the pool name such as a period or underscore")
	fs.String("rbd-metadata-ec-pool-name", d.RBDMetadataECPoolName, "Provides the name of erasure coded RBD metadata pool")
	fs.String("rados-namespace", d.RadosNamespace, "Divides a pool into separate logical namespaces")
	fs.String("cephfs-filesystem-name", d.CephFSFilesystemName, "Provides the name of the Ceph filesystem")
	fs.String("cephfs-metadata-pool-name", d.CephFSMetadataPoolName, "Provides the name of the cephfs metadata pool")
	fs.String("cephfs-data-pool-name", d.CephFSDataPoolName, "Provides the name of the cephfs data pool")
	fs.String("subvolume-group", d.SubvolumeGroup, "Provides the name of the subvolume group")

	fs.String("rgw-endpoint", d.RgwEndpoint, "RADOS Gateway endpoint (in '<IPv4>:<PORT>', '[<IPv6>]:<PORT>' or '<FQDN>:<PORT>' format)")
	fs.String("rgw-tls-cert-path", d.RgwTLSCertPath, "RADOS Gateway endpoint TLS certificate")
	fs.Bool("rgw-skip-tls", d.RgwSkipTLS, "Ignore TLS certification validation when a self-signed certificate is provided (NOT RECOMMENDED)")
	fs.String("rgw-pool-prefix", d.RgwPoolPrefix, "RGW Pool prefix, 'default' is used when not set")
	fs.String("rgw-realm-name", d.RgwRealmName, "Provides the name of the rgw-realm")
	fs.String("rgw-zonegroup-name", d.RgwZoneGroupName, "Provides the name of the rgw-zonegroup")
	fs.String("rgw-zone-name", d.RgwZoneName, "Provides the name of the rgw-zone")

	fs.String("monitoring-endpoint", d.MonitoringEndpoint, "Ceph Manager prometheus exporter endpoints (comma separated list of IP entries of active and standby mgrs)")
	fs.String("monitoring-endpoint-port", d.MonitoringEndpointPort, "Ceph Manager prometheus exporter port")
	fs.Bool("skip-monitoring-endpoint", d.SkipMonitoringEndpoint, "Do not check for a monitoring endpoint for the Ceph cluster")

	fs.StringSlice("topology-pools", d.TopologyPools, "Topology constrained rbd pools")
	fs.String("topology-failure-domain-label", d.TopologyFailureDomainLabel, "K8s cluster failure domain label (example: zone, rack, or host) for the topology-pools that match the ceph domain")
	fs.StringSlice("topology-failure-domain-values", d.TopologyFailureDomainValues, "K8s cluster failure domain values corresponding to each of the pools in the topology-pools list")

	fs.Bool("upgrade", d.Upgrade, "Upgrades the cephCSIKeyrings and the health checker user permissions")
	fs.Bool("restricted-auth-permission", d.RestrictedAuthPermission, "Restrict cephCSIKeyrings auth permissions to specific pools, cluster")
	fs.Bool("dry-run", d.DryRun, "Dry run prints the executed commands without running them")
	fs.Bool("v2-port-enable", d.V2PortEnable, "Enable v2 mon port (3300) for mons")
	fs.String("format", d.Format, "Provides the output format (json | bash | yaml)")
	fs.StringP("output", "o", d.Output, "Output will be stored into the provided file")
	fs.BoolP("verbose", "v", d.Verbose, "Verbose mode")

	fs.String("toolbox-namespace", d.ToolboxNamespace, "Run radosgw-admin in Rook toolbox pod of the namespace instead of local binary")
	fs.Bool("apply", d.Apply, "Create or update output objects in Kubernetes cluster")
	fs.String("kubeconfig", d.Kubeconfig, "Path to kubeconfig, in-cluster config is used when empty")
}

// Load merges defaults, optional yaml file and changed flags
func Load(fs *pflag.FlagSet, configPath string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, errors.Wrap(err, "failed to load default config")
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return Config{}, errors.Wrapf(err, "failed to load config file '%s'", configPath)
		}
	}
	if fs != nil {
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return Config{}, errors.Wrap(err, "failed to load command line flags")
		}
	}
	cfg := Config{}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config")
	}
	if cfg.K8sClusterName == "" {
		cfg.K8sClusterName = cfg.DeprecatedClusterName
	}
	return cfg, nil
}

// Validate checks everything which does not need cluster access
func (c Config) Validate() error {
	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}
	if !c.Upgrade && c.RBDDataPoolName == "" {
		return cephcommon.NewConfigError("Either '--upgrade' or '--rbd-data-pool-name <pool_name>' should be specified")
	}
	if c.Upgrade && c.RBDDataPoolName != "" {
		_, restricted, err := caps.RoleForEntity(c.RunAsUser)
		if err != nil || !restricted {
			return cephcommon.NewConfigError("'--upgrade' and '--rbd-data-pool-name' can be used together only with restricted '--run-as-user'")
		}
	}
	if c.RestrictedAuthPermission && c.RBDDataPoolName != "" {
		if c.K8sClusterName == "" {
			return cephcommon.NewConfigError("k8s cluster name not found, please set the '--k8s-cluster-name' flag")
		}
		if _, err := caps.PoolSegment(c.RBDDataPoolName, c.AliasRBDDataPoolName); err != nil {
			return err
		}
	}
	if c.RgwEndpoint != "" {
		if _, err := endpoint.Classify(c.RgwEndpoint); err != nil {
			return cephcommon.NewConfigError("%s", err.Error())
		}
	} else if c.RgwTLSCertPath != "" || c.RgwSkipTLS {
		return cephcommon.NewConfigError("'--rgw-tls-cert-path' and '--rgw-skip-tls' require '--rgw-endpoint'")
	}
	if m := c.Multisite(); m.Configured() && !m.Complete() {
		return cephcommon.NewConfigError("'--rgw-realm-name', '--rgw-zonegroup-name' and '--rgw-zone-name' must be set together")
	}
	if !c.SkipMonitoringEndpoint {
		port := c.MonitoringEndpointPort
		if port == "" {
			port = cephcommon.DefaultMonitoringEndpointPort
		}
		for _, host := range cephcommon.SplitList(c.MonitoringEndpoint) {
			if _, err := endpoint.Classify(endpoint.JoinHostPort(host, port)); err != nil {
				return cephcommon.NewConfigError("invalid '--monitoring-endpoint' or '--monitoring-endpoint-port': %s", err.Error())
			}
		}
	}
	return nil
}

func (c Config) Scope() caps.Scope {
	return caps.Scope{
		K8sClusterName: c.K8sClusterName,
		Pool:           c.RBDDataPoolName,
		PoolAlias:      c.AliasRBDDataPoolName,
		RadosNamespace: c.RadosNamespace,
		Filesystem:     c.CephFSFilesystemName,
		RgwPoolPrefix:  c.RgwPoolPrefix,
		RunAsUser:      c.RunAsUser,
	}
}

func (c Config) Multisite() rgw.Multisite {
	return rgw.Multisite{Realm: c.RgwRealmName, ZoneGroup: c.RgwZoneGroupName, Zone: c.RgwZoneName}
}

// RgwPoolPrefixOrDefault returns pool prefix used in output and caps
func (c Config) RgwPoolPrefixOrDefault() string {
	if c.RgwPoolPrefix == "" {
		return cephcommon.DefaultRgwPoolPrefix
	}
	return c.RgwPoolPrefix
}

// HealthCheckerUser returns run as user or default health checker name
func (c Config) HealthCheckerUser() string {
	if c.RunAsUser == "" {
		return cephcommon.HealthCheckerClientName
	}
	return c.RunAsUser
}
