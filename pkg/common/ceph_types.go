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

package cephcommon

type MonAddr struct {
	Type  string `json:"type"`
	Addr  string `json:"addr"`
	Nonce int    `json:"nonce"`
}

type MonInfo struct {
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	PublicAddr  string `json:"public_addr"`
	PublicAddrs struct {
		AddrVec []MonAddr `json:"addrvec"`
	} `json:"public_addrs"`
}

type QuorumStatus struct {
	QuorumNames      []string `json:"quorum_names"`
	QuorumLeaderName string   `json:"quorum_leader_name"`
	MonMap           struct {
		FSID string    `json:"fsid"`
		Mons []MonInfo `json:"mons"`
	} `json:"monmap"`
}

type FilesystemInfo struct {
	Name         string   `json:"name"`
	MetadataPool string   `json:"metadata_pool"`
	DataPools    []string `json:"data_pools"`
}

type OsdDumpPool struct {
	PoolName           string `json:"pool_name"`
	ErasureCodeProfile string `json:"erasure_code_profile"`
}

type OsdDump struct {
	Pools []OsdDumpPool `json:"pools"`
}

type AuthEntry struct {
	Entity string            `json:"entity"`
	Key    string            `json:"key"`
	Caps   map[string]string `json:"caps"`
}

type OrchHost struct {
	Hostname string `json:"hostname"`
	Addr     string `json:"addr"`
}

type MgrServices struct {
	Dashboard  string `json:"dashboard,omitempty"`
	Prometheus string `json:"prometheus,omitempty"`
}

type RgwUserKeys struct {
	User      string `json:"user"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

type RgwUserInfo struct {
	UserID string        `json:"user_id"`
	Keys   []RgwUserKeys `json:"keys"`
}
