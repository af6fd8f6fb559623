package config

import "fmt"

// pemSource is one certificate input that may come from a file or inline content
type pemSource struct {
	name    string
	file    string
	content string
}

func (s pemSource) present() bool { return s.file != "" || s.content != "" }

func (s pemSource) ambiguous() error {
	if s.file != "" && s.content != "" {
		return fmt.Errorf("cannot specify both %sFile and %sContent - choose one", s.name, s.name)
	}
	return nil
}

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	if err := validateTLSMode(tls); err != nil {
		return err
	}
	return validateTLSVersion(tls)
}

func validateTLSMode(tls TLSConfig) error {
	cert := pemSource{"cert", tls.CertFile, tls.CertContent}
	key := pemSource{"key", tls.KeyFile, tls.KeyContent}
	ca := pemSource{"ca", tls.CAFile, tls.CAContent}

	switch tls.Mode {
	case "disabled":
		return nil
	case "server":
		return validateSources(tls.Mode, []pemSource{cert, key})
	case "mutual":
		if err := validateSources(tls.Mode, []pemSource{cert, key}); err != nil {
			return err
		}
		if !ca.present() {
			return fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
		}
		if err := ca.ambiguous(); err != nil {
			return err
		}
		return validateClientAuthPolicy(tls.ClientAuthPolicy)
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}
}

// validateSources requires every source to be present and unambiguous
func validateSources(mode string, sources []pemSource) error {
	for _, s := range sources {
		if !s.present() {
			return fmt.Errorf("TLS certificate and key are required for %s mode (provide either files or content)", mode)
		}
	}
	for _, s := range sources {
		if err := s.ambiguous(); err != nil {
			return err
		}
	}
	return nil
}

func validateClientAuthPolicy(policy string) error {
	switch policy {
	case "require", "request", "verify", "":
		return nil
	default:
		return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", policy)
	}
}

func validateTLSVersion(tls TLSConfig) error {
	switch tls.MinVersion {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", tls.MinVersion)
	}
}
