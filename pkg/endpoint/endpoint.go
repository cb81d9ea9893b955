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
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/validation"
)

type Family string

const (
	IPv4 Family = "IPv4"
	IPv6 Family = "IPv6"
	FQDN Family = "FQDN"
)

type Endpoint struct {
	Host   string
	Port   string
	Family Family
}

func (e Endpoint) String() string {
	return JoinHostPort(e.Host, e.Port)
}

type InvalidEndpointError struct {
	Endpoint string
	Reason   string
}

func (e *InvalidEndpointError) Error() string {
	return fmt.Sprintf("invalid endpoint '%s': %s", e.Endpoint, e.Reason)
}

func IsInvalidEndpoint(err error) bool {
	var invalid *InvalidEndpointError
	return errors.As(err, &invalid)
}

func invalid(endpoint, format string, args ...interface{}) error {
	return &InvalidEndpointError{Endpoint: endpoint, Reason: fmt.Sprintf(format, args...)}
}

// Classify checks '<host>:<port>' syntax and detects host family, no
// network access is done
func Classify(endpoint string) (Endpoint, error) {
	idx := strings.LastIndex(endpoint, ":")
	if idx < 0 {
		return Endpoint{}, invalid(endpoint, "<IP>:<PORT> or <FQDN>:<PORT> format is expected")
	}
	host, port := endpoint[:idx], endpoint[idx+1:]
	if port == "" || strings.Trim(port, "0123456789") != "" {
		return Endpoint{}, invalid(endpoint, "port '%s' is not a number", port)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || len(validation.IsValidPortNum(portNum)) > 0 {
		return Endpoint{}, invalid(endpoint, "port '%s' is out of range [1, 65535]", port)
	}
	if host == "" {
		return Endpoint{}, invalid(endpoint, "host is empty")
	}

	if strings.HasPrefix(host, "[") || strings.HasSuffix(host, "]") {
		inner := strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
		ip := net.ParseIP(inner)
		if len(inner)+2 != len(host) || ip == nil || ip.To4() != nil && !strings.Contains(inner, ":") {
			return Endpoint{}, invalid(endpoint, "'%s' is not a valid IPv6 address", host)
		}
		return Endpoint{Host: inner, Port: port, Family: IPv6}, nil
	}
	if ip := net.ParseIP(host); ip != nil {
		if strings.Contains(host, ":") {
			return Endpoint{Host: host, Port: port, Family: IPv6}, nil
		}
		return Endpoint{Host: host, Port: port, Family: IPv4}, nil
	}
	if strings.Trim(host, "0123456789.") == "" {
		return Endpoint{}, invalid(endpoint, "'%s' is not a valid IPv4 address", host)
	}
	if errs := validation.IsDNS1123Subdomain(strings.ToLower(host)); len(errs) > 0 {
		return Endpoint{}, invalid(endpoint, "'%s' is not a valid FQDN: %s", host, strings.Join(errs, "; "))
	}
	return Endpoint{Host: host, Port: port, Family: FQDN}, nil
}

// FamilyOf returns family of an address, anything which is not an IP
// literal is FQDN
func FamilyOf(addr string) Family {
	host := strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
	ip := net.ParseIP(host)
	switch {
	case ip == nil:
		return FQDN
	case strings.Contains(host, ":"):
		return IPv6
	default:
		return IPv4
	}
}

// JoinHostPort brackets bare IPv6 literals, empty port returns host only
func JoinHostPort(host, port string) string {
	if strings.Contains(host, ":") && !(strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]")) {
		host = "[" + host + "]"
	}
	if port == "" {
		return host
	}
	return host + ":" + port
}
