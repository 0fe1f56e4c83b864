// Package config defines the server configuration structure.
package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/sessgate/internal/core/domain"
)

// Verify validates the configuration.
//
// Key/cert pairing is checked by the protocol resolver, which owns the
// listener mode decision.
func Verify(cfg *ServerConfig) error {
	if err := verifyEndpoint("proxy", cfg.Proxy.Host, cfg.Proxy.Port); err != nil {
		return err
	}
	if err := verifyEndpoint("backend", cfg.Backend.Host, cfg.Backend.Port); err != nil {
		return err
	}
	if cfg.Static.Path == "" {
		return invalid("static.path is required")
	}
	if cfg.Security.LoginRateLimit < 0 {
		return invalid("security.login_rate_limit must not be negative")
	}
	if cfg.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Metrics.Addr); err != nil {
			return invalid(fmt.Sprintf("metrics.addr %q: %v", cfg.Metrics.Addr, err))
		}
	}
	return verifyLog(&cfg.Log)
}

func verifyEndpoint(section, host string, port int) error {
	if host == "" {
		return invalid(section + ".host is required")
	}
	if port < 1 || port > 65535 {
		return invalid(fmt.Sprintf("%s.port %d out of range", section, port))
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid(fmt.Sprintf("log.level %q is not one of debug, info, warn, error", cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text":
	default:
		return invalid(fmt.Sprintf("log.format %q is not json or text", cfg.Format))
	}
	return nil
}

func invalid(msg string) error {
	return domain.ErrInvalidConfig.WithDetails(msg)
}
