// Package config defines the server configuration structure.
package config

// ServerConfig is the root configuration for sessgate-server.
type ServerConfig struct {
	Proxy    ProxySection    `koanf:"proxy"`
	Backend  BackendSection  `koanf:"backend"`
	Static   StaticSection   `koanf:"static"`
	Data     DataSection     `koanf:"data"`
	Security SecuritySection `koanf:"security"`
	Metrics  MetricsSection  `koanf:"metrics"`
	Log      LogSection      `koanf:"log"`
}

// ProxySection configures the listener clients connect to.
type ProxySection struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// KeyFile and CertFile enable TLS. Both or neither must be set.
	KeyFile  string `koanf:"key_file"`
	CertFile string `koanf:"cert_file"`

	// KeyPassphrase decrypts a passphrase-protected PEM key.
	KeyPassphrase string `koanf:"key_passphrase"`
}

// BackendSection configures the forwarding target.
type BackendSection struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	TLS  bool   `koanf:"tls"`

	// NoVerify disables verification of the backend certificate.
	NoVerify bool `koanf:"no_verify"`

	// CAFile is an optional PEM bundle trusted for the backend.
	CAFile string `koanf:"ca_file"`
}

// StaticSection configures the SPA assets.
type StaticSection struct {
	Path string `koanf:"path"`
}

// DataSection configures the archive download root.
type DataSection struct {
	Path string `koanf:"path"`
}

// SecuritySection configures response headers and login throttling.
type SecuritySection struct {
	// Development relaxes the Content-Security-Policy for dev builds.
	Development bool `koanf:"development"`

	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// LoginRateLimit is logins per second per client IP. 0 disables it.
	LoginRateLimit int `koanf:"login_rate_limit"`
}

// MetricsSection configures the Prometheus listener.
type MetricsSection struct {
	// Addr of the metrics listener. Empty disables it.
	Addr string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
