package tlsroots

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewPool(t *testing.T) {
	pool := NewPool()
	if pool == nil {
		t.Fatal("NewPool() returned nil")
	}
	if pool.Pool() == nil {
		t.Fatal("Pool() returned nil")
	}
}

func TestAddCertPEM(t *testing.T) {
	pool := NewEmptyPool()

	if err := pool.AddCertPEM(generateTestCertPEM(t)); err != nil {
		t.Fatalf("AddCertPEM() error = %v", err)
	}
}

func TestAddCertPEM_NoCerts(t *testing.T) {
	pool := NewEmptyPool()

	if err := pool.AddCertPEM([]byte{}); err != ErrNoCertsFound {
		t.Errorf("AddCertPEM(empty) error = %v, want %v", err, ErrNoCertsFound)
	}
	if err := pool.AddCertPEM([]byte("not a certificate")); err != ErrNoCertsFound {
		t.Errorf("AddCertPEM(garbage) error = %v, want %v", err, ErrNoCertsFound)
	}
}

func TestAddCertPEM_InvalidCert(t *testing.T) {
	pool := NewEmptyPool()

	invalidPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: []byte("invalid certificate data"),
	})

	if err := pool.AddCertPEM(invalidPEM); err == nil {
		t.Error("AddCertPEM() expected error for invalid certificate")
	}
}

func TestAddCertPEM_MultipleCerts(t *testing.T) {
	pool := NewEmptyPool()

	data := append(generateTestCertPEM(t), generateTestCertPEM(t)...)
	if err := pool.AddCertPEM(data); err != nil {
		t.Fatalf("AddCertPEM() error = %v", err)
	}
}

func TestLoadBackendRoots(t *testing.T) {
	pool, err := LoadBackendRoots("")
	if err != nil {
		t.Fatalf("LoadBackendRoots(\"\") error = %v", err)
	}
	if pool != nil {
		t.Error("LoadBackendRoots(\"\") should return nil for system roots")
	}

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(caFile, generateTestCertPEM(t), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	pool, err = LoadBackendRoots(caFile)
	if err != nil {
		t.Fatalf("LoadBackendRoots() error = %v", err)
	}
	if pool == nil {
		t.Fatal("LoadBackendRoots() returned nil pool")
	}

	if _, err := LoadBackendRoots("/nonexistent/ca.pem"); err == nil {
		t.Error("LoadBackendRoots() expected error for missing file")
	}
}

// generateTestCertPEM generates a self-signed CA certificate in PEM format.
func generateTestCertPEM(t *testing.T) []byte {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
			CommonName:   "test.local",
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
}
