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
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Mirantis/ceph-connector/pkg/cluster"
	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	"github.com/Mirantis/ceph-connector/pkg/endpoint"
	"github.com/Mirantis/ceph-connector/pkg/rgw"
)

const (
	DiagRgwClusterIDMismatch   = "RGW_CLUSTER_ID_MISMATCH"
	DiagRgwAdminOpsFailed      = "RGW_ADMIN_OPS_FAILED"
	DiagRgwInfoCapNotSupported = "RGW_INFO_CAP_NOT_SUPPORTED"
	DiagRgwPoolMissing         = "RGW_POOL_MISSING"
	DiagRgwMultisiteNotFound   = "RGW_MULTISITE_NOT_FOUND"
)

// Diagnostic is a soft validation failure, run goes on and dependent
// output is omitted
type Diagnostic struct {
	Code    string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

type Validator struct {
	session  *cluster.Session
	runner   rgw.CommandRunner
	prober   endpoint.Prober
	resolver *endpoint.Resolver
	family   endpoint.FamilySource
	log      zerolog.Logger
}

func New(session *cluster.Session, runner rgw.CommandRunner, prober endpoint.Prober, resolver *endpoint.Resolver, family endpoint.FamilySource, log zerolog.Logger) *Validator {
	return &Validator{
		session:  session,
		runner:   runner,
		prober:   prober,
		resolver: resolver,
		family:   family,
		log:      cephcommon.SubLogger(log, "validation"),
	}
}

func poolNotFound(pool string) string {
	return fmt.Sprintf("The provided pool, '%s', does not exist", pool)
}

// RBDPool checks pool presence and initializes it for rbd application
func (v *Validator) RBDPool(pool string) error {
	exists, err := v.session.PoolExists(pool)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New(poolNotFound(pool))
	}
	return v.session.InitRBDPool(pool)
}

func (v *Validator) RadosNamespace(pool, namespace string) error {
	if namespace == "" {
		return nil
	}
	exists, err := v.session.NamespaceExists(pool, namespace)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Errorf("The provided rados Namespace, '%s', is not found in the pool '%s'", namespace, pool)
	}
	return nil
}

// ECMetadataPool checks metadata pool is replicated and data pool is
// erasure coded
func (v *Validator) ECMetadataPool(dataPool, metadataPool string) error {
	if metadataPool == "" {
		return nil
	}
	if dataPool == "" {
		return cephcommon.NewConfigError("flag '--rbd-data-pool-name' should not be empty")
	}
	dump := cephcommon.OsdDump{}
	if err := v.session.MustSucceed("get osd map", cluster.Command{"prefix": "osd dump", "format": "json"}, &dump); err != nil {
		return err
	}
	metadataFound, dataFound := false, false
	for _, pool := range dump.Pools {
		if pool.PoolName == metadataPool && pool.ErasureCodeProfile == "" {
			metadataFound = true
		}
		if pool.PoolName == dataPool && pool.ErasureCodeProfile != "" {
			dataFound = true
		}
	}
	if !metadataFound {
		return errors.Errorf("Provided rbd_ec_metadata_pool name, %s, does not exist", metadataPool)
	}
	if !dataFound {
		return errors.Errorf("Provided rbd_data_pool name, %s, does not exist", dataPool)
	}
	return nil
}

// TopologyPools checks topology constrained pools, label and values
func (v *Validator) TopologyPools(pools []string, label string, values []string) error {
	if len(pools) == 0 && label == "" && len(values) == 0 {
		return nil
	}
	if len(pools) == 0 || label == "" || len(values) == 0 {
		return cephcommon.NewConfigError("'--topology-pools', '--topology-failure-domain-label' and '--topology-failure-domain-values' must be set together")
	}
	if len(pools) != len(values) {
		return cephcommon.NewConfigError("'--topology-pools' (%s) and '--topology-failure-domain-values' (%s) must have the same number of items",
			strings.Join(pools, ","), strings.Join(values, ","))
	}
	for _, pool := range pools {
		exists, err := v.session.PoolExists(pool)
		if err != nil {
			return err
		}
		if !exists {
			return errors.New(poolNotFound(pool))
		}
		if err := v.session.InitRBDPool(pool); err != nil {
			return err
		}
	}
	return nil
}
