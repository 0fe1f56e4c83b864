// Package config defines the server configuration structure.
package config

import "github.com/yndnr/sessgate/internal/infra/confloader"

// LegacyEnv maps the environment variables of existing workbench
// deployments onto configuration keys. They take precedence over the
// SESSGATE_ prefixed form.
var LegacyEnv = map[string]confloader.LegacyVar{
	"API_HOST_ADDRESS":             {Key: "backend.host"},
	"API_PORT":                     {Key: "backend.port"},
	"API_TLS":                      {Key: "backend.tls", Bool: true},
	"SSL_NO_VERIFY":                {Key: "backend.no_verify", Bool: true},
	"PROXY_HOST_ADDRESS":           {Key: "proxy.host"},
	"PROXY_PORT":                   {Key: "proxy.port"},
	"PROXY_KEY":                    {Key: "proxy.key_file"},
	"PROXY_CERT":                   {Key: "proxy.cert_file"},
	"PROXY_KEY_PASSPHRASE":         {Key: "proxy.key_passphrase"},
	"STATIC_PATH":                  {Key: "static.path"},
	"DEVELOPMENT_MODE":             {Key: "security.development", Bool: true},
	"OPENVINO_WORKBENCH_DATA_PATH": {Key: "data.path"},
}

// ListKeys are keys whose environment values are comma-separated.
var ListKeys = []string{"security.allowed_origins"}

// Load reads configuration from path (may be empty) and the environment
// on top of Default. overrides, keyed by dotted config key, win over
// every other source.
func Load(path string, overrides map[string]any) (*ServerConfig, error) {
	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithLegacyEnv(LegacyEnv),
		confloader.WithListKeys(ListKeys...),
	)

	cfg := Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
