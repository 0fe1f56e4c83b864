// Package service provides domain services for sessgate.
//
// Domain services contain the business logic the HTTP layer calls into.
// They own their state explicitly and are injected into handlers at
// construction; there is no package-level state.
//
// This package contains:
//
//   - SessionRegistry: issues and validates opaque session tokens
//   - RateLimiterRegistry: per-client token buckets for the login endpoint
//
// Both are safe for concurrent use.
package service
