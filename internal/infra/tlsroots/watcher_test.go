package tlsroots

import (
	"crypto/x509"
	"math/big"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcher(t *testing.T) {
	certFile, keyFile, _ := writeTestKeyPair(t, t.TempDir(), "")

	w, err := NewWatcher(certFile, keyFile)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	cert, err := w.GetCertificate(nil)
	if err != nil {
		t.Fatalf("GetCertificate() error = %v", err)
	}
	if cert == nil {
		t.Fatal("GetCertificate() returned nil")
	}
}

func TestNewWatcher_Passphrase(t *testing.T) {
	certFile, keyFile, _ := writeTestKeyPair(t, t.TempDir(), "hunter2")

	if _, err := NewWatcher(certFile, keyFile); err == nil {
		t.Error("NewWatcher() without passphrase expected error")
	}

	w, err := NewWatcher(certFile, keyFile, WithPassphrase("hunter2"))
	if err != nil {
		t.Fatalf("NewWatcher(WithPassphrase) error = %v", err)
	}
	w.Stop()
}

func TestNewWatcher_NonexistentFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewWatcher(filepath.Join(dir, "nope.crt"), filepath.Join(dir, "nope.key"))
	if err == nil {
		t.Error("NewWatcher() expected error for nonexistent files")
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	certFile, keyFile, _ := writeTestKeyPair(t, t.TempDir(), "")

	w, err := NewWatcher(certFile, keyFile, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	w.StartAsync()
	time.Sleep(50 * time.Millisecond)

	w.Stop()
	w.Stop()
}

func TestWatcher_ReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile, first := writeTestKeyPair(t, dir, "")

	w, err := NewWatcher(certFile, keyFile, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()
	defer w.Stop()

	if got := leafSerial(t, w); got.Cmp(first) != 0 {
		t.Fatalf("initial serial = %v, want %v", got, first)
	}

	// Wait for the watcher to register the directory.
	time.Sleep(100 * time.Millisecond)

	_, _, second := writeTestKeyPair(t, dir, "")

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if leafSerial(t, w).Cmp(second) == 0 {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("certificate was not reloaded, serial still %v", leafSerial(t, w))
}

func leafSerial(t *testing.T, w *Watcher) *big.Int {
	t.Helper()

	cert, err := w.GetCertificate(nil)
	if err != nil {
		t.Fatalf("GetCertificate() error = %v", err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("ParseCertificate() error = %v", err)
	}
	return leaf.SerialNumber
}
