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

import (
	"crypto/x509"
	"os"

	"github.com/pkg/errors"
)

// CertPoolFromPEM builds pool from PEM encoded certificate(s)
func CertPoolFromPEM(pemData string) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM([]byte(pemData)) {
		return nil, errors.New("no valid PEM certificates found")
	}
	return pool, nil
}

// ReadTLSCert reads certificate file and returns its content once it
// contains at least one valid PEM certificate
func ReadTLSCert(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read TLS certificate '%s'", path)
	}
	if _, err := CertPoolFromPEM(string(data)); err != nil {
		return "", errors.Wrapf(err, "failed to load TLS certificate '%s'", path)
	}
	return string(data), nil
}
