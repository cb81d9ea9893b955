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
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"time"

	"github.com/pkg/errors"
)

// GenerateSelfSignedCert returns key, cert and ca in PEM format, hosts
// which are IP addresses are placed to IP SANs
func GenerateSelfSignedCert(caName, certName string, hosts []string) (string, string, string, error) {
	ca := &x509.Certificate{
		SerialNumber: big.NewInt(2019),
		Subject: pkix.Name{
			CommonName: caName,
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().AddDate(2, 0, 0),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	caPrivKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", "", err
	}
	caBytes, err := x509.CreateCertificate(rand.Reader, ca, ca, &caPrivKey.PublicKey, caPrivKey)
	if err != nil {
		return "", "", "", err
	}

	cert := &x509.Certificate{
		SerialNumber: big.NewInt(1658),
		Subject: pkix.Name{
			CommonName:   certName,
			Organization: []string{"Mirantis Inc."},
		},
		NotBefore:   time.Now(),
		NotAfter:    time.Now().AddDate(2, 0, 0),
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		KeyUsage:    x509.KeyUsageDigitalSignature,
	}
	for _, host := range hosts {
		if ip := net.ParseIP(host); ip != nil {
			cert.IPAddresses = append(cert.IPAddresses, ip)
		} else {
			cert.DNSNames = append(cert.DNSNames, host)
		}
	}
	certPrivKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", "", err
	}
	certBytes, err := x509.CreateCertificate(rand.Reader, cert, ca, &certPrivKey.PublicKey, caPrivKey)
	if err != nil {
		return "", "", "", err
	}
	keyBytes, err := x509.MarshalECPrivateKey(certPrivKey)
	if err != nil {
		return "", "", "", errors.Wrap(err, "failed to marshal generated private key")
	}

	caPEM := new(bytes.Buffer)
	certPEM := new(bytes.Buffer)
	keyPEM := new(bytes.Buffer)
	for _, block := range []struct {
		out *bytes.Buffer
		pem *pem.Block
	}{
		{out: caPEM, pem: &pem.Block{Type: "CERTIFICATE", Bytes: caBytes}},
		{out: certPEM, pem: &pem.Block{Type: "CERTIFICATE", Bytes: certBytes}},
		{out: keyPEM, pem: &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes}},
	} {
		if err := pem.Encode(block.out, block.pem); err != nil {
			return "", "", "", errors.Wrapf(err, "failed to encode generated %s", block.pem.Type)
		}
	}
	return keyPEM.String(), certPEM.String(), caPEM.String(), nil
}
