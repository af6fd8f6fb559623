package server

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"skillsync/internal/config"
)

// configureTLS starts the certificate manager and attaches a TLS config to
// httpServer. It leaves httpServer untouched when TLS is disabled.
func (s *Server) configureTLS(httpServer *http.Server, vault SecretReader) error {
	switch s.TLSConfig.Mode {
	case "", "disabled":
		return nil
	case "server", "mutual":
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	vaultPath := ""
	if s.AppConfig != nil {
		vaultPath = s.AppConfig.Vault.Secrets.TLSCerts
	}
	cm := NewCertificateManager(s.TLSConfig, vault, vaultPath, s.om.GetMetrics(), s.Logger)
	if err := cm.Start(); err != nil {
		return fmt.Errorf("failed to start certificate manager: %w", err)
	}
	s.CertificateManager = cm

	tlsConfig, err := buildTLSConfig(s.TLSConfig)
	if err != nil {
		_ = cm.Stop()
		return err
	}
	cm.Apply(tlsConfig)
	httpServer.TLSConfig = tlsConfig
	return nil
}

// initializeVaultClient connects to Vault when TLS material is polled from it
func (s *Server) initializeVaultClient() (SecretReader, error) {
	if s.AppConfig == nil || !s.AppConfig.Vault.Enabled || s.AppConfig.Vault.Secrets.TLSCerts == "" ||
		!s.TLSConfig.AutoReload.Enabled || s.TLSConfig.AutoReload.VaultPollInterval <= 0 {
		return nil, nil
	}

	vc, err := config.NewVaultClient(s.AppConfig.Vault, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Vault client: %w", err)
	}
	return vc, nil
}

// buildTLSConfig translates the version, cipher and client auth settings.
// Certificates are supplied by the certificate manager.
func buildTLSConfig(cfg config.TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.MinVersion == "1.3" {
		tlsConfig.MinVersion = tls.VersionTLS13
	}

	if len(cfg.CipherSuites) > 0 {
		suites, err := cipherSuiteIDs(cfg.CipherSuites)
		if err != nil {
			return nil, err
		}
		tlsConfig.CipherSuites = suites
	}

	tlsConfig.ClientAuth = tls.NoClientCert
	if cfg.Mode == "mutual" {
		tlsConfig.ClientAuth = clientAuthPolicy(cfg.ClientAuthPolicy)
	}
	return tlsConfig, nil
}

// cipherSuiteIDs resolves names against the secure suites Go implements
func cipherSuiteIDs(names []string) ([]uint16, error) {
	known := make(map[string]uint16)
	for _, suite := range tls.CipherSuites() {
		known[suite.Name] = suite.ID
	}

	ids := make([]uint16, 0, len(names))
	for _, name := range names {
		id, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unsupported or insecure cipher suite: %s", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
