package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrEncryptedKey is returned for an encrypted key without a passphrase.
var ErrEncryptedKey = errors.New("tlsroots: private key is encrypted and no passphrase is set")

// LoadKeyPair reads a PEM certificate chain and private key. When the key
// block is encrypted (Proc-Type: 4,ENCRYPTED) it is decrypted with
// passphrase first.
func LoadKeyPair(certFile, keyFile, passphrase string) (tls.Certificate, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("tlsroots: read cert file %s: %w", certFile, err)
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("tlsroots: read key file %s: %w", keyFile, err)
	}

	keyPEM, err = decryptKeyPEM(keyPEM, passphrase)
	if err != nil {
		return tls.Certificate{}, err
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("tlsroots: load key pair: %w", err)
	}
	return cert, nil
}

func decryptKeyPEM(keyPEM []byte, passphrase string) ([]byte, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, ErrInvalidPEM
	}

	//nolint:staticcheck // legacy PEM encryption is what OpenSSL "traditional" keys use
	if !x509.IsEncryptedPEMBlock(block) {
		return keyPEM, nil
	}
	if passphrase == "" {
		return nil, ErrEncryptedKey
	}

	//nolint:staticcheck // see above
	der, err := x509.DecryptPEMBlock(block, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("tlsroots: decrypt private key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der}), nil
}
