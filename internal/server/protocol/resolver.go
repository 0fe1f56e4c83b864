// Package protocol derives the listener mode and the forwarding targets
// from configuration. Resolution runs once at startup, before any socket
// is bound, and its result is never mutated afterwards.
package protocol

import (
	"net"
	"net/url"
	"strconv"

	"github.com/yndnr/sessgate/internal/core/domain"
	"github.com/yndnr/sessgate/internal/server/config"
)

// Target is a (scheme, host, port) endpoint.
type Target struct {
	Scheme string
	Host   string
	Port   int
}

// Addr returns host:port.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// URL returns the target as a URL with an empty path.
func (t Target) URL() *url.URL {
	return &url.URL{Scheme: t.Scheme, Host: t.Addr()}
}

// String returns scheme://host:port.
func (t Target) String() string {
	return t.URL().String()
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	// ListenTLS is true when the proxy serves HTTPS/WSS.
	ListenTLS bool

	// Listen is the proxy's own endpoint (http or https).
	Listen Target

	// Backend receives forwarded API traffic.
	Backend Target

	// BackendWebSocket receives forwarded upgrades.
	BackendWebSocket Target

	// AdvertisedWebSocket is published to clients in the CSP connect-src.
	// It is derived from the listener, not the backend, and the two are
	// kept distinct even when they coincide.
	AdvertisedWebSocket Target

	// VerifyBackendTLS controls certificate verification towards the backend.
	VerifyBackendTLS bool
}

// Resolve derives the Resolution from cfg.
//
// Exactly one of proxy key and certificate being set is an error naming
// the missing one.
func Resolve(cfg *config.ServerConfig) (*Resolution, error) {
	hasKey := cfg.Proxy.KeyFile != ""
	hasCert := cfg.Proxy.CertFile != ""

	switch {
	case hasKey && !hasCert:
		return nil, domain.ErrProxyCertMissing.WithDetails("key file " + cfg.Proxy.KeyFile)
	case hasCert && !hasKey:
		return nil, domain.ErrProxyKeyMissing.WithDetails("cert file " + cfg.Proxy.CertFile)
	}

	listenTLS := hasKey && hasCert

	res := &Resolution{
		ListenTLS: listenTLS,
		Listen: Target{
			Scheme: httpScheme(listenTLS),
			Host:   cfg.Proxy.Host,
			Port:   cfg.Proxy.Port,
		},
		Backend: Target{
			Scheme: httpScheme(cfg.Backend.TLS),
			Host:   cfg.Backend.Host,
			Port:   cfg.Backend.Port,
		},
		BackendWebSocket: Target{
			Scheme: wsScheme(cfg.Backend.TLS),
			Host:   cfg.Backend.Host,
			Port:   cfg.Backend.Port,
		},
		AdvertisedWebSocket: Target{
			Scheme: wsScheme(listenTLS),
			Host:   cfg.Proxy.Host,
			Port:   cfg.Proxy.Port,
		},
		VerifyBackendTLS: !cfg.Backend.NoVerify,
	}

	return res, nil
}

func httpScheme(secure bool) string {
	if secure {
		return "https"
	}
	return "http"
}

func wsScheme(secure bool) string {
	if secure {
		return "wss"
	}
	return "ws"
}
