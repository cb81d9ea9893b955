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

package endpoint

import (
	"context"
	"net"
	"strings"

	"github.com/pkg/errors"
)

// FamilySource returns expected address family of cluster hosts, it is
// called only when a name must be resolved
type FamilySource func() (Family, error)

type LookupIPFunc func(ctx context.Context, network, host string) ([]net.IP, error)

type Resolver struct {
	LookupIP LookupIPFunc
}

func NewResolver() *Resolver {
	return &Resolver{LookupIP: net.DefaultResolver.LookupIP}
}

// Resolve returns IP address for a host, IP literals are returned as is.
// Names are resolved to the family reported by source.
func (r *Resolver) Resolve(ctx context.Context, host string, source FamilySource) (string, error) {
	if host == "" {
		return "", errors.New("empty hostname provided")
	}
	literal := strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if net.ParseIP(literal) != nil {
		return literal, nil
	}
	family := IPv4
	if source != nil {
		var err error
		family, err = source()
		if err != nil {
			return "", errors.Wrapf(err, "failed to detect address family to resolve host '%s'", host)
		}
	}
	network := "ip4"
	if family == IPv6 {
		network = "ip6"
	}
	ips, err := r.LookupIP(ctx, network, host)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve host '%s'", host)
	}
	if len(ips) == 0 {
		return "", errors.Errorf("no %s addresses found for host '%s'", family, host)
	}
	return ips[0].String(), nil
}

// StaticFamily is a FamilySource for a known reference address
func StaticFamily(addr string) FamilySource {
	return func() (Family, error) {
		family := FamilyOf(addr)
		if family == FQDN {
			return "", errors.Errorf("reference address '%s' is not an IP address", addr)
		}
		return family, nil
	}
}
