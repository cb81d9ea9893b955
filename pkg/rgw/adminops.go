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

package rgw

import (
	"context"
	"fmt"

	"github.com/ceph/go-ceph/rgw/admin"
	"github.com/pkg/errors"

	"github.com/Mirantis/ceph-connector/pkg/endpoint"
)

// AdminOpsClient talks to rgw admin ops api with the rgw admin ops user keys
type AdminOpsClient struct {
	api *admin.API
}

func NewAdminOpsClient(scheme endpoint.Scheme, rgwEndpoint, accessKey, secretKey string, trust endpoint.TrustOptions) (*AdminOpsClient, error) {
	httpClient, err := endpoint.NewHTTPClient(trust, endpoint.DefaultProbeTimeout)
	if err != nil {
		return nil, err
	}
	api, err := admin.New(fmt.Sprintf("%s://%s", scheme, rgwEndpoint), accessKey, secretKey, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create rgw admin ops client")
	}
	return &AdminOpsClient{api: api}, nil
}

// ClusterID returns fsid reported by the first rgw storage backend, empty
// when rgw reports no backends
func (c *AdminOpsClient) ClusterID(ctx context.Context) (string, error) {
	info, err := c.api.GetInfo(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to get rgw info")
	}
	backends := info.InfoSpec.StorageBackends
	if len(backends) == 0 {
		return "", nil
	}
	return backends[0].ClusterID, nil
}
