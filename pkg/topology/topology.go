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

package topology

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/Mirantis/ceph-connector/pkg/cluster"
	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	"github.com/Mirantis/ceph-connector/pkg/endpoint"
)

var ErrPrometheusNotFound = errors.New("'prometheus' service not found, is the exporter enabled?")

type Options struct {
	V2PortEnable bool
	// MonitoringEndpoint is a comma or space separated list, first is active
	MonitoringEndpoint     string
	MonitoringEndpointPort string
	SkipMonitoringEndpoint bool
}

// Monitoring holds manager addresses, active one goes first
type Monitoring struct {
	Endpoints []string
	Port      string
}

func (m Monitoring) EndpointList() string {
	return strings.Join(m.Endpoints, ",")
}

type Resolver struct {
	session  *cluster.Session
	resolver *endpoint.Resolver
	prober   endpoint.Prober
	opts     Options
	log      zerolog.Logger
	// quorum leader address, reference for address family
	leaderAddr string
}

func New(session *cluster.Session, resolver *endpoint.Resolver, prober endpoint.Prober, opts Options, log zerolog.Logger) *Resolver {
	return &Resolver{
		session:  session,
		resolver: resolver,
		prober:   prober,
		opts:     opts,
		log:      cephcommon.SubLogger(log, "topology"),
	}
}

// MonitorQuorum returns '<leader>=<ip:port>' for quorum leader monitor
func (r *Resolver) MonitorQuorum() (string, error) {
	quorum := cephcommon.QuorumStatus{}
	if err := r.session.MustSucceed("get monitors quorum status", cluster.Command{"prefix": "quorum_status", "format": "json"}, &quorum); err != nil {
		return "", err
	}
	var leader *cephcommon.MonInfo
	for idx, mon := range quorum.MonMap.Mons {
		if mon.Name == quorum.QuorumLeaderName {
			leader = &quorum.MonMap.Mons[idx]
			break
		}
	}
	if leader == nil {
		return "", errors.Errorf("no matching 'mon' details found for quorum leader '%s'", quorum.QuorumLeaderName)
	}
	addrVec := leader.PublicAddrs.AddrVec
	if len(addrVec) == 1 && addrVec[0].Type == "v2" {
		return "", errors.New("Only 'v2' address type is enabled, user should also enable 'v1' type as well")
	}
	addr := strings.Split(leader.PublicAddr, "/")[0]
	if r.opts.V2PortEnable {
		for _, a := range addrVec {
			if a.Type == "v2" {
				addr = strings.Split(a.Addr, "/")[0]
				break
			}
		}
	}
	if addr == "" {
		return "", errors.Errorf("no public address found for quorum leader '%s'", leader.Name)
	}
	r.leaderAddr = addr
	return fmt.Sprintf("%s=%s", leader.Name, addr), nil
}

// AddressFamily detects family of cluster hosts by quorum leader address,
// the first orchestrator host is used when leader address is unknown
func (r *Resolver) AddressFamily() (endpoint.Family, error) {
	if r.leaderAddr != "" {
		host, _, err := net.SplitHostPort(r.leaderAddr)
		if err == nil {
			if family := endpoint.FamilyOf(host); family != endpoint.FQDN {
				return family, nil
			}
		}
	}
	hosts := []cephcommon.OrchHost{}
	if err := r.session.MgrMustSucceed("list orchestrator hosts", cluster.Command{"prefix": "orch host ls", "format": "json"}, &hosts); err != nil {
		return "", err
	}
	if len(hosts) == 0 {
		return "", errors.New("orchestrator reported no hosts")
	}
	return endpoint.StaticFamily(hosts[0].Addr)()
}

// Managers returns active and standby managers addresses with prometheus
// exporter port. Active endpoint must be reachable.
func (r *Resolver) Managers(ctx context.Context) (Monitoring, error) {
	if r.opts.SkipMonitoringEndpoint {
		r.log.Info().Msg("monitoring endpoint discovery is skipped")
		return Monitoring{}, nil
	}
	port := r.opts.MonitoringEndpointPort
	hosts := cephcommon.SplitList(r.opts.MonitoringEndpoint)
	standbys := []string{}
	if len(hosts) == 0 {
		raw := json.RawMessage{}
		if err := r.session.MustSucceed("get manager services from cluster status", cluster.Command{"prefix": "status", "format": "json"}, &raw); err != nil {
			return Monitoring{}, err
		}
		prometheus := gjson.GetBytes(raw, "mgrmap.services.prometheus").String()
		if prometheus == "" {
			return Monitoring{}, ErrPrometheusNotFound
		}
		for _, name := range gjson.GetBytes(raw, "mgrmap.standbys.#.name").Array() {
			standbys = append(standbys, name.String())
		}
		parsed, err := url.Parse(prometheus)
		if err != nil || parsed.Hostname() == "" {
			return Monitoring{}, errors.Errorf("invalid endpoint: %s", prometheus)
		}
		hosts = []string{parsed.Hostname()}
		if port == "" {
			port = parsed.Port()
		}
	}
	if port == "" {
		port = cephcommon.DefaultMonitoringEndpointPort
	}
	if len(hosts) == 0 {
		return Monitoring{}, errors.New("No 'monitoring-endpoint' found")
	}
	standbys = append(standbys, hosts[1:]...)

	ips := make([]string, 0, len(standbys)+1)
	for _, host := range append([]string{hosts[0]}, standbys...) {
		ip, err := r.resolver.Resolve(ctx, host, r.AddressFamily)
		if err != nil {
			return Monitoring{}, errors.Wrapf(err, "Conversion of host: %s to IP failed. Please enter the IP addresses of all the ceph-mgrs with the '--monitoring-endpoint' flag", host)
		}
		ips = append(ips, ip)
	}
	active := endpoint.JoinHostPort(ips[0], port)
	if _, err := endpoint.Classify(active); err != nil {
		return Monitoring{}, err
	}
	if _, err := r.prober.Probe(ctx, active, endpoint.TrustOptions{}); err != nil {
		return Monitoring{}, errors.Wrapf(err, "monitoring endpoint '%s' check failed", active)
	}
	return Monitoring{Endpoints: ips, Port: port}, nil
}

// DashboardLink returns dashboard url, empty if dashboard is disabled
func (r *Resolver) DashboardLink() string {
	reply, err := r.session.IssueCommand(cluster.Command{"prefix": "mgr services", "format": "json"})
	if err != nil || !reply.Succeed() {
		r.log.Warn().Msg("failed to get manager services, dashboard link is skipped")
		return ""
	}
	services := cephcommon.MgrServices{}
	if err := reply.Decode(&services); err != nil {
		return ""
	}
	return services.Dashboard
}
