package config

import (
	"strings"
	"testing"
)

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name    string
		tls     TLSConfig
		wantErr string
	}{
		{name: "disabled", tls: TLSConfig{Mode: "disabled"}},
		{name: "server with files", tls: TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem"}},
		{name: "server with content", tls: TLSConfig{Mode: "server", CertContent: "C", KeyContent: "K"}},
		{name: "server missing key", tls: TLSConfig{Mode: "server", CertFile: "c.pem"}, wantErr: "required for server mode"},
		{name: "server ambiguous cert", tls: TLSConfig{Mode: "server", CertFile: "c.pem", CertContent: "C", KeyFile: "k.pem"}, wantErr: "certFile and certContent"},
		{name: "server ambiguous key", tls: TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem", KeyContent: "K"}, wantErr: "keyFile and keyContent"},
		{name: "mutual complete", tls: TLSConfig{Mode: "mutual", CertFile: "c.pem", KeyFile: "k.pem", CAFile: "ca.pem", ClientAuthPolicy: "verify"}},
		{name: "mutual missing ca", tls: TLSConfig{Mode: "mutual", CertFile: "c.pem", KeyFile: "k.pem"}, wantErr: "CA certificate is required"},
		{name: "mutual ambiguous ca", tls: TLSConfig{Mode: "mutual", CertFile: "c.pem", KeyFile: "k.pem", CAFile: "ca.pem", CAContent: "CA"}, wantErr: "caFile and caContent"},
		{name: "mutual bad policy", tls: TLSConfig{Mode: "mutual", CertFile: "c.pem", KeyFile: "k.pem", CAFile: "ca.pem", ClientAuthPolicy: "maybe"}, wantErr: "invalid clientAuthPolicy"},
		{name: "unknown mode", tls: TLSConfig{Mode: "strict"}, wantErr: "invalid TLS mode"},
		{name: "bad version", tls: TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem", MinVersion: "1.1"}, wantErr: "invalid TLS minVersion"},
		{name: "tls 1.3", tls: TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem", MinVersion: "1.3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
