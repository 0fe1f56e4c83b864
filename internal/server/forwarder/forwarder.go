package forwarder

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"syscall"

	"github.com/yndnr/sessgate/internal/server/protocol"
	"github.com/yndnr/sessgate/internal/telemetry/metric"
)

// Options select per-call forwarding behavior.
type Options struct {
	// VerifyTLS enables backend certificate verification.
	VerifyTLS bool
}

type proxyKey struct {
	upgrade bool
	verify  bool
}

// Forwarder relays traffic to one backend.
type Forwarder struct {
	backend   *url.URL
	backendWS *url.URL
	rootCAs   *x509.CertPool
	logger    *slog.Logger
	metrics   *metric.Registry
	proxies   map[proxyKey]*httputil.ReverseProxy
}

// Option configures a Forwarder.
type Option func(*Forwarder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Forwarder) {
		f.logger = l
	}
}

// WithMetrics attaches a metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(f *Forwarder) {
		f.metrics = m
	}
}

// WithRootCAs sets the roots used to verify the backend certificate.
// A nil pool means the system roots.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(f *Forwarder) {
		f.rootCAs = pool
	}
}

// New creates a Forwarder for the given API and WebSocket targets.
// WebSocket schemes are mapped to their HTTP equivalents for dialing.
func New(backend, backendWS protocol.Target, opts ...Option) *Forwarder {
	f := &Forwarder{
		backend:   dialURL(backend),
		backendWS: dialURL(backendWS),
		logger:    slog.Default(),
		proxies:   make(map[proxyKey]*httputil.ReverseProxy, 4),
	}
	for _, opt := range opts {
		opt(f)
	}

	for _, upgrade := range []bool{false, true} {
		for _, verify := range []bool{false, true} {
			k := proxyKey{upgrade: upgrade, verify: verify}
			f.proxies[k] = f.newProxy(k)
		}
	}

	return f
}

// ForwardHTTP relays r to the backend and streams the response to w.
func (f *Forwarder) ForwardHTTP(w http.ResponseWriter, r *http.Request, opts Options) {
	f.proxies[proxyKey{upgrade: false, verify: opts.VerifyTLS}].ServeHTTP(w, r)
}

// ForwardUpgrade relays an upgrade request. On a 101 from the backend the
// client connection is hijacked and bytes are piped in both directions
// until either side closes. w must implement http.Hijacker.
func (f *Forwarder) ForwardUpgrade(w http.ResponseWriter, r *http.Request, opts Options) {
	f.proxies[proxyKey{upgrade: true, verify: opts.VerifyTLS}].ServeHTTP(w, r)
}

// CloseIdleConnections closes idle backend connections of every transport.
func (f *Forwarder) CloseIdleConnections() {
	for _, p := range f.proxies {
		if t, ok := p.Transport.(*http.Transport); ok {
			t.CloseIdleConnections()
		}
	}
}

func (f *Forwarder) newProxy(k proxyKey) *httputil.ReverseProxy {
	target := f.backend
	if k.upgrade {
		target = f.backendWS
	}

	// The incoming Host header is kept; only the URL is rewritten.
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = f.newTransport(k)
	proxy.ErrorHandler = f.handleError
	proxy.ErrorLog = slog.NewLogLogger(f.logger.Handler(), slog.LevelDebug)

	return proxy
}

func (f *Forwarder) newTransport(k proxyKey) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = &tls.Config{
		RootCAs:            f.rootCAs,
		InsecureSkipVerify: !k.verify,
		MinVersion:         tls.VersionTLS12,
	}
	if k.upgrade {
		// Upgrades require HTTP/1.1.
		t.ForceAttemptHTTP2 = false
		t.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	}
	return t
}

func (f *Forwarder) handleError(_ http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		f.logger.Info("backend server is unavailable, waiting for the connection",
			"target", f.backend.Host,
			"path", r.URL.Path,
		)
		f.metrics.BackendError(metric.BackendRefused)
	case errors.Is(err, context.Canceled):
		f.logger.Debug("client went away while forwarding",
			"path", r.URL.Path,
		)
	default:
		f.logger.Error("forwarding failed",
			"target", f.backend.Host,
			"path", r.URL.Path,
			"error", err,
		)
		f.metrics.BackendError(metric.BackendOther)
	}

	// Leave the client unanswered.
	panic(http.ErrAbortHandler)
}

func dialURL(t protocol.Target) *url.URL {
	u := t.URL()
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}
	return u
}
