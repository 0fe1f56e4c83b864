// Package token provides session token generation.
//
// Token Format:
//
//   - Alphabet: A-Z, a-z, 0-9 (62 symbols)
//   - Length: 15 characters
//   - Entropy: ~89 bits
//
// Security:
//
//   - Uses crypto/rand for CSPRNG
//   - Rejection sampling keeps every symbol equally likely
//   - Tokens carry no structure or prefix; they are opaque to clients
package token
