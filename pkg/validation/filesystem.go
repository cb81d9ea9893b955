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
	"fmt"

	"github.com/pkg/errors"

	"github.com/Mirantis/ceph-connector/pkg/cluster"
	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
)

// FilesystemRequest is what user asked for, any field may be empty
type FilesystemRequest struct {
	Name         string
	DataPool     string
	MetadataPool string
}

func (r FilesystemRequest) explicit() bool {
	return r.Name != "" || r.DataPool != ""
}

type FilesystemSelection struct {
	Name         string
	MetadataPool string
	DataPool     string
}

// Filesystem selects cephfs by explicit name, then by the only present
// filesystem, then by requested data pool. Nothing requested and nothing
// found is not an error and empty selection is returned.
func (v *Validator) Filesystem(req FilesystemRequest) (FilesystemSelection, error) {
	reply, err := v.session.IssueCommand(cluster.Command{"prefix": "fs ls", "format": "json"})
	if err != nil {
		return FilesystemSelection{}, err
	}
	if !reply.Succeed() {
		if !req.explicit() {
			return FilesystemSelection{}, nil
		}
		return FilesystemSelection{}, errors.Errorf("'fs ls' ceph call failed with error: %s", reply.ErrMsg)
	}
	filesystems := []cephcommon.FilesystemInfo{}
	if len(reply.Out) > 0 {
		if err := reply.Decode(&filesystems); err != nil {
			return FilesystemSelection{}, errors.Wrap(err, "failed to parse 'fs ls' output")
		}
	}

	var selected *cephcommon.FilesystemInfo
	switch {
	case req.Name != "":
		names := make([]string, 0, len(filesystems))
		for idx, fs := range filesystems {
			names = append(names, fs.Name)
			if fs.Name == req.Name && selected == nil {
				selected = &filesystems[idx]
			}
		}
		if selected == nil {
			return FilesystemSelection{}, errors.Errorf("Filesystem provided, '%s', is not found in the fs-list: '%v'", req.Name, names)
		}
	case len(filesystems) == 1:
		selected = &filesystems[0]
	case req.DataPool != "":
		for idx, fs := range filesystems {
			if cephcommon.Contains(fs.DataPools, req.DataPool) {
				selected = &filesystems[idx]
				break
			}
		}
		if selected == nil {
			return FilesystemSelection{}, errors.Errorf("Provided data_pool name, %s, does not exists", req.DataPool)
		}
	default:
		return FilesystemSelection{}, nil
	}

	selection := FilesystemSelection{Name: selected.Name, MetadataPool: selected.MetadataPool}
	if req.MetadataPool != "" && req.MetadataPool != selected.MetadataPool {
		return FilesystemSelection{}, errors.Errorf("Provided metadata-pool-name: '%s', doesn't match metadata pool '%s' of filesystem '%s'",
			req.MetadataPool, selected.MetadataPool, selected.Name)
	}
	if req.DataPool != "" {
		if !cephcommon.Contains(selected.DataPools, req.DataPool) {
			return FilesystemSelection{}, errors.Errorf("Provided data-pool-name: '%s', doesn't match from the data-pools' list: %v", req.DataPool, selected.DataPools)
		}
		selection.DataPool = req.DataPool
	} else {
		if len(selected.DataPools) == 0 {
			return selection, nil
		}
		selection.DataPool = selected.DataPools[0]
	}
	if len(selected.DataPools) > 1 {
		v.log.Warn().Msgf("multiple data pools detected: %v, using the data pool '%s'", selected.DataPools, selection.DataPool)
	}
	return selection, nil
}

// SubvolumeGroups gets or creates default and requested subvolume groups
// and pins them with distributed policy
func (v *Validator) SubvolumeGroups(fs string, group string) error {
	if fs == "" {
		return nil
	}
	groups := []string{cephcommon.DefaultSubvolumeGroup}
	if group != "" && group != cephcommon.DefaultSubvolumeGroup {
		groups = append(groups, group)
	}
	for _, g := range groups {
		if err := v.getOrCreateSubvolumeGroup(fs, g); err != nil {
			return err
		}
		pin := cluster.Command{"prefix": "fs subvolumegroup pin", "vol_name": fs, "group_name": g, "pin_type": "distributed", "pin_setting": "1", "format": "json"}
		if err := v.session.MgrMustSucceed(fmt.Sprintf("pin subvolume group '%s'", g), pin, nil); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) getOrCreateSubvolumeGroup(fs, group string) error {
	getPath := cluster.Command{"prefix": "fs subvolumegroup getpath", "vol_name": fs, "group_name": group, "format": "json"}
	reply, err := v.session.IssueMgrCommand(getPath)
	if err != nil {
		return errors.Wrapf(err, "failed to get subvolume group '%s' path", group)
	}
	if reply.Succeed() {
		v.log.Debug().Msgf("subvolume group '%s' exists in filesystem '%s'", group, fs)
		return nil
	}
	create := cluster.Command{"prefix": "fs subvolumegroup create", "vol_name": fs, "group_name": group, "format": "json"}
	if err := v.session.MgrMustSucceed(fmt.Sprintf("create subvolume group '%s'", group), create, nil); err != nil {
		return err
	}
	v.log.Info().Msgf("subvolume group '%s' created in filesystem '%s'", group, fs)
	return nil
}
