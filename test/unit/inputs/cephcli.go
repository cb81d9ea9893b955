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

package input

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	CephFsid = "af4e1673-0b72-402d-990a-22d2919d0f1c"

	CmdQuorumStatus = `{"format":"json","prefix":"quorum_status"}`
	CmdStatus       = `{"format":"json","prefix":"status"}`
	CmdFsLs         = `{"format":"json","prefix":"fs ls"}`
	CmdOsdDump      = `{"format":"json","prefix":"osd dump"}`
	CmdMgrServices  = `{"format":"json","prefix":"mgr services"}`
	CmdVersion      = `{"format":"json","prefix":"version"}`
	CmdOrchHostLs   = `{"format":"json","prefix":"orch host ls"}`
)

// CephCommand returns command in the form it is sent to the cluster
func CephCommand(cmd map[string]interface{}) string {
	if _, ok := cmd["format"]; !ok {
		cmd["format"] = "json"
	}
	out, err := json.Marshal(cmd)
	if err != nil {
		panic(err)
	}
	return string(out)
}

func CmdAuthGet(entity string) string {
	return CephCommand(map[string]interface{}{"prefix": "auth get", "entity": entity})
}

func CmdAuthGetOrCreate(entity string, caps ...string) string {
	return CephCommand(map[string]interface{}{"prefix": "auth get-or-create", "entity": entity, "caps": caps})
}

func CmdAuthCaps(entity string, caps ...string) string {
	return CephCommand(map[string]interface{}{"prefix": "auth caps", "entity": entity, "caps": caps})
}

func CmdSubvolumeGroup(action, fs, group string) string {
	return CephCommand(map[string]interface{}{"prefix": "fs subvolumegroup " + action, "vol_name": fs, "group_name": group})
}

func CmdSubvolumeGroupPin(fs, group string) string {
	return CephCommand(map[string]interface{}{"prefix": "fs subvolumegroup pin", "vol_name": fs, "group_name": group, "pin_type": "distributed", "pin_setting": "1"})
}

func AuthEntry(entity, key string, caps map[string]string) string {
	out, _ := json.Marshal([]map[string]interface{}{{"entity": entity, "key": key, "caps": caps}})
	return string(out)
}

var QuorumStatusTmpl = `{
  "election_epoch": 3,
  "quorum": [0],
  "quorum_names": ["a"],
  "quorum_leader_name": {leader},
  "quorum_age": 14385,
  "monmap": {
    "epoch": 1,
    "fsid": "af4e1673-0b72-402d-990a-22d2919d0f1c",
    "min_mon_release_name": "squid",
    "mons": [
      {
        "rank": 0,
        "name": "a",
        "public_addrs": {"addrvec": {addrvec}},
        "addr": {public_addr},
        "public_addr": {public_addr},
        "priority": 0,
        "weight": 0
      }
    ]
  }
}`

var CephStatusTmpl = `{
  "fsid": "af4e1673-0b72-402d-990a-22d2919d0f1c",
  "health": {"status": "HEALTH_OK"},
  "quorum_names": ["a"],
  "mgrmap": {
    "available": true,
    "num_standbys": 2,
    "modules": ["dashboard", "iostat", "prometheus", "restful"],
    "services": {services},
    "active_name": "a",
    "standbys": {standbys}
  }
}`

var OrchHostLsTmpl = `[
  {"addr": {host_addr}, "hostname": "ceph-node-0", "labels": ["_admin"], "status": ""},
  {"addr": "10.110.205.175", "hostname": "ceph-node-1", "labels": [], "status": ""}
]`

var QuorumStatusBase = BuildCliOutput(QuorumStatusTmpl, "quorum_status", nil)
var QuorumStatusV2Only = BuildCliOutput(QuorumStatusTmpl, "quorum_status", map[string]string{
	"addrvec":     `[{"type": "v2", "addr": "10.110.205.174:3300", "nonce": 0}]`,
	"public_addr": `"10.110.205.174:3300/0"`,
})
var QuorumStatusUnknownLeader = BuildCliOutput(QuorumStatusTmpl, "quorum_status", map[string]string{"leader": `"z"`})
var QuorumStatusIPv6 = BuildCliOutput(QuorumStatusTmpl, "quorum_status", map[string]string{
	"addrvec":     `[{"type": "v2", "addr": "[2001:db8::174]:3300", "nonce": 0}, {"type": "v1", "addr": "[2001:db8::174]:6789", "nonce": 0}]`,
	"public_addr": `"[2001:db8::174]:6789/0"`,
})

var CephStatusBase = BuildCliOutput(CephStatusTmpl, "status", nil)
var CephStatusNoPrometheus = BuildCliOutput(CephStatusTmpl, "status", map[string]string{
	"services": `{"dashboard": "https://10.110.205.174:8443/"}`,
})
var CephStatusPrometheusByName = BuildCliOutput(CephStatusTmpl, "status", map[string]string{
	"services": `{"prometheus": "http://ceph-mgr-a.example.com:9283/"}`,
	"standbys": `[]`,
})

var OrchHostLsBase = BuildCliOutput(OrchHostLsTmpl, "orch host ls", nil)
var OrchHostLsIPv6 = BuildCliOutput(OrchHostLsTmpl, "orch host ls", map[string]string{"host_addr": `"2001:db8::174"`})

func BuildCliOutput(template string, cmd string, overrideForOutput map[string]string) string {
	replaceParams := map[string]string{}
	switch cmd {
	case "quorum_status":
		replaceParams = map[string]string{
			"leader":      `"a"`,
			"addrvec":     `[{"type": "v2", "addr": "10.110.205.174:3300", "nonce": 0}, {"type": "v1", "addr": "10.110.205.174:6789", "nonce": 0}]`,
			"public_addr": `"10.110.205.174:6789/0"`,
		}
	case "status":
		replaceParams = map[string]string{
			"services": `{"dashboard": "https://10.110.205.174:8443/", "prometheus": "http://10.110.205.174:9283/"}`,
			"standbys": `[{"gid": 14121, "name": "10.110.205.175", "available": true}, {"gid": 14125, "name": "10.110.205.176", "available": true}]`,
		}
	case "orch host ls":
		replaceParams = map[string]string{
			"host_addr": `"10.110.205.174"`,
		}
	}
	for k, v := range overrideForOutput {
		replaceParams[k] = v
	}
	args := []string{}
	for k, v := range replaceParams {
		if k == "" {
			continue
		}
		if v == "" {
			v = "{}"
		}
		args = append(args, fmt.Sprintf("{%s}", k), v)
	}
	return strings.NewReplacer(args...).Replace(template)
}

var FsLsSingle = `[{"name":"myfs","metadata_pool":"myfs-metadata","metadata_pool_id":2,"data_pool_ids":[3],"data_pools":["myfs-replicated"]}]`
var FsLsSingleNoDataPools = `[{"name":"myfs","metadata_pool":"myfs-metadata","metadata_pool_id":2,"data_pool_ids":[],"data_pools":[]}]`
var FsLsSingleFewDataPools = `[{"name":"myfs","metadata_pool":"myfs-metadata","metadata_pool_id":2,"data_pool_ids":[3,4],"data_pools":["myfs-replicated","myfs-ec"]}]`
var FsLsFew = `[
  {"name":"myfs","metadata_pool":"myfs-metadata","metadata_pool_id":2,"data_pool_ids":[3],"data_pools":["myfs-replicated"]},
  {"name":"otherfs","metadata_pool":"otherfs-metadata","metadata_pool_id":5,"data_pool_ids":[6],"data_pools":["otherfs-data"]}
]`

var OsdDumpBase = `{
  "epoch": 95,
  "fsid": "af4e1673-0b72-402d-990a-22d2919d0f1c",
  "pools": [
    {"pool": 1, "pool_name": "replicapool", "erasure_code_profile": ""},
    {"pool": 2, "pool_name": "ec-metadata-pool", "erasure_code_profile": ""},
    {"pool": 3, "pool_name": "ec-data-pool", "erasure_code_profile": "ec-profile"}
  ]
}`

var MgrServicesBase = `{"dashboard": "https://10.110.205.174:8443/", "prometheus": "http://10.110.205.174:9283/"}`
var MgrServicesNoDashboard = `{"prometheus": "http://10.110.205.174:9283/"}`

var CephVersionSquid = `{"version":"ceph version 19.2.3 (c92aebb279828e9c3c1f5d24613efca272649e62) squid (stable)"}`
var CephVersionQuincy = `{"version":"ceph version 17.2.7 (b12291d110049b2f35e32e0de30d70e9a4c060d2) quincy (stable)"}`

const (
	HealthCheckerKey         = "AQDFkbNeft5bFRAATndLNUSEKruozxiZi3lrdA=="
	RBDNodeKey               = "AQBOgrNeHbK1AxAAubYBeV8S1U/GPzq5SVeq6g=="
	RBDProvisionerKey        = "AQBNgrNe1geyKxAA8ekViRdE+hss5OweYBkwNg=="
	CephFSNodeKey            = "AQBOgrNeENunKxAAPCmgE7R6G8DcXnaJ1F32qg=="
	CephFSProvisionerKey     = "AQBOgrNeAFgcGBAAvGqKOAD0D3xxmVY0R912dg=="
	RgwAdminOpsUserAccessKey = "EOE7FYCNOBZJ5VFV909G"
	RgwAdminOpsUserSecretKey = "qmIqpWm8HxCzmynCrD6U6vKWi4hnDBndOnmxXNsV"
)

var RgwAdminOpsUserInfo = `{
  "user_id": "rgw-admin-ops-user",
  "display_name": "Rook RGW Admin Ops user",
  "keys": [
    {"user": "rgw-admin-ops-user", "access_key": "EOE7FYCNOBZJ5VFV909G", "secret_key": "qmIqpWm8HxCzmynCrD6U6vKWi4hnDBndOnmxXNsV"}
  ],
  "caps": [{"type": "buckets", "perm": "*"}, {"type": "info", "perm": "read"}]
}`

var RgwAdminInfo = `{"info":{"storage_backends":[{"name":"rados","cluster_id":"af4e1673-0b72-402d-990a-22d2919d0f1c"}]}}`
var RgwAdminInfoOtherCluster = `{"info":{"storage_backends":[{"name":"rados","cluster_id":"2ac9fd1c-4bce-45f2-8e2d-e8ecf56c5c0e"}]}}`
