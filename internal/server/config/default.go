// Package config defines the server configuration structure.
package config

// Default configuration values.
const (
	DefaultProxyHost = "127.0.0.1"
	DefaultProxyPort = 5675

	DefaultBackendHost = "127.0.0.1"
	DefaultBackendPort = 5676

	DefaultStaticPath = "./static"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Proxy: ProxySection{
			Host: DefaultProxyHost,
			Port: DefaultProxyPort,
		},
		Backend: BackendSection{
			Host: DefaultBackendHost,
			Port: DefaultBackendPort,
		},
		Static: StaticSection{
			Path: DefaultStaticPath,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
