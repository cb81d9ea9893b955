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
	"crypto/tls"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
)

type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"

	DefaultProbeTimeout = 3 * time.Second
)

var ErrUnreachable = errors.New("endpoint is unreachable")

// TrustOptions configure https verification, CACert is PEM content
type TrustOptions struct {
	CACert     string
	SkipVerify bool
}

type Prober interface {
	Probe(ctx context.Context, endpoint string, trust TrustOptions) (Scheme, error)
}

// NewHTTPClient returns client with a clean transport and TLS settings
// from trust options
func NewHTTPClient(trust TrustOptions, timeout time.Duration) (*http.Client, error) {
	transport := cleanhttp.DefaultTransport()
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if trust.SkipVerify {
		tlsConfig.InsecureSkipVerify = true // #nosec G402
	} else if trust.CACert != "" {
		pool, err := cephcommon.CertPoolFromPEM(trust.CACert)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load CA certificate")
		}
		tlsConfig.RootCAs = pool
	}
	transport.TLSClientConfig = tlsConfig
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}

type HTTPProber struct {
	Timeout time.Duration
	log     zerolog.Logger
}

func NewHTTPProber(log zerolog.Logger) *HTTPProber {
	return &HTTPProber{Timeout: DefaultProbeTimeout, log: cephcommon.SubLogger(log, "prober")}
}

// Probe sends HEAD over http and then https, first scheme replied with 200
// wins. No retries are done.
func (p *HTTPProber) Probe(ctx context.Context, endpoint string, trust TrustOptions) (Scheme, error) {
	client, err := NewHTTPClient(trust, p.Timeout)
	if err != nil {
		return "", err
	}
	defer client.CloseIdleConnections()
	for _, scheme := range []Scheme{SchemeHTTP, SchemeHTTPS} {
		url := string(scheme) + "://" + endpoint
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return "", errors.Wrapf(err, "failed to build request for '%s'", url)
		}
		resp, err := client.Do(req)
		if err != nil {
			p.log.Debug().Err(err).Msgf("HEAD %s failed", url)
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return scheme, nil
		}
		p.log.Debug().Msgf("HEAD %s returned %d", url, resp.StatusCode)
	}
	return "", errors.Wrapf(ErrUnreachable, "unable to connect to endpoint '%s'", endpoint)
}

// NoopProber does no network calls
type NoopProber struct{}

func (NoopProber) Probe(_ context.Context, _ string, _ TrustOptions) (Scheme, error) {
	return SchemeHTTP, nil
}
