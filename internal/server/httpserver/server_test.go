package httpserver

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yndnr/sessgate/internal/telemetry/logger"
)

func TestNew(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s := New("127.0.0.1:0", handler)
	if s == nil {
		t.Fatal("New returned nil")
	}
	if s.httpServer.TLSConfig != nil {
		t.Error("TLSConfig should be nil without WithTLS")
	}
	if s.Addr() != "127.0.0.1:0" {
		t.Errorf("Addr() before Listen = %q", s.Addr())
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})

	s := New("127.0.0.1:0", handler, WithLogger(logger.Nop()))
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve()
	}()

	resp, err := http.Get("http://" + s.Addr() + "/")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Serve() after Shutdown = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("Serve() did not return after Shutdown")
	}
}

type staticCert struct {
	cert *tls.Certificate
}

func (s staticCert) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return s.cert, nil
}

func TestServer_TLS(t *testing.T) {
	// Borrow the httptest certificate.
	ts := httptest.NewTLSServer(http.NotFoundHandler())
	cert := ts.TLS.Certificates[0]
	client := ts.Client()
	defer ts.Close()

	s := New("127.0.0.1:0", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			t.Error("request should arrive over TLS")
		}
		io.WriteString(w, r.Proto)
	}), WithTLS(staticCert{cert: &cert}), WithLogger(logger.Nop()))

	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	go s.Serve()
	defer s.Shutdown(context.Background())

	resp, err := client.Get("https://" + s.Addr() + "/")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "HTTP/1.1" {
		t.Errorf("protocol = %q, want HTTP/1.1", body)
	}
}

func TestServer_ListenError(t *testing.T) {
	s := New("127.0.0.1:-1", http.NotFoundHandler())
	if err := s.ListenAndServe(); err == nil {
		t.Error("ListenAndServe() on an invalid address should fail")
	}
}
