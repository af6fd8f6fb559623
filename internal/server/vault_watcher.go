package server

import (
	"fmt"
	"sync"
	"time"

	"skillsync/internal/config"
	"skillsync/internal/errors"
)

// SecretReader reads KVv2 secrets; *config.VaultClient satisfies it
type SecretReader interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// CertificateData is PEM content read from the TLS secret
type CertificateData struct {
	CertContent string
	KeyContent  string
	CAContent   string
}

// VaultWatcher polls the TLS secret and hands new content to onUpdate
// whenever the KVv2 version increases
type VaultWatcher struct {
	mu sync.Mutex

	client   SecretReader
	path     string
	interval time.Duration
	onUpdate func(CertificateData)
	logger   *errors.Logger

	lastVersion int64
	lastCheck   time.Time
	lastError   string
	done        chan struct{}
	running     bool
}

// NewVaultWatcher creates a watcher for the secret at path
func NewVaultWatcher(client SecretReader, path string, interval time.Duration, onUpdate func(CertificateData), logger *errors.Logger) *VaultWatcher {
	return &VaultWatcher{
		client:   client,
		path:     path,
		interval: interval,
		onUpdate: onUpdate,
		logger:   logger,
	}
}

// Start records the current secret version and begins polling.
// Content already loaded at startup is not reported again.
func (vw *VaultWatcher) Start() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()

	if vw.running {
		return fmt.Errorf("vault watcher is already running")
	}
	if vw.interval <= 0 {
		return fmt.Errorf("vault poll interval must be positive")
	}

	secret, err := vw.client.GetSecretV2(vw.path)
	if err != nil {
		return fmt.Errorf("failed to read initial TLS secret: %w", err)
	}
	vw.lastVersion = secret.Version
	vw.lastCheck = time.Now()

	vw.done = make(chan struct{})
	vw.running = true
	go vw.pollLoop(vw.done)

	vw.logger.Info("Vault certificate watcher started",
		"secret_path", vw.path,
		"poll_interval", vw.interval,
		"version", secret.Version)
	return nil
}

// Stop ends polling
func (vw *VaultWatcher) Stop() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()

	if !vw.running {
		return nil
	}
	close(vw.done)
	vw.running = false
	vw.logger.Info("Vault certificate watcher stopped")
	return nil
}

func (vw *VaultWatcher) pollLoop(done <-chan struct{}) {
	ticker := time.NewTicker(vw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			vw.checkOnce()
		case <-done:
			return
		}
	}
}

// checkOnce reads the secret and reports whether newer content was delivered
func (vw *VaultWatcher) checkOnce() bool {
	secret, err := vw.client.GetSecretV2(vw.path)

	vw.mu.Lock()
	vw.lastCheck = time.Now()
	if err != nil {
		vw.lastError = err.Error()
		vw.mu.Unlock()
		vw.logger.LogError(err, "Failed to poll Vault for TLS secret", "secret_path", vw.path)
		return false
	}
	vw.lastError = ""
	if secret.Version <= vw.lastVersion {
		vw.mu.Unlock()
		return false
	}
	previous := vw.lastVersion
	vw.lastVersion = secret.Version
	vw.mu.Unlock()

	vw.logger.Info("Vault TLS secret changed",
		"secret_path", vw.path,
		"previous_version", previous,
		"version", secret.Version)
	vw.onUpdate(certificateDataFrom(secret))
	return true
}

func certificateDataFrom(secret *config.VaultSecret) CertificateData {
	var data CertificateData
	data.CertContent, _ = secret.Data["cert"].(string)
	data.KeyContent, _ = secret.Data["key"].(string)
	data.CAContent, _ = secret.Data["ca"].(string)
	return data
}

// Status returns the current status of the VaultWatcher for health reporting
func (vw *VaultWatcher) Status() map[string]any {
	vw.mu.Lock()
	defer vw.mu.Unlock()

	status := map[string]any{
		"running":       vw.running,
		"secret_path":   vw.path,
		"poll_interval": vw.interval.String(),
		"version":       vw.lastVersion,
	}
	if !vw.lastCheck.IsZero() {
		status["last_check"] = vw.lastCheck
	}
	if vw.lastError != "" {
		status["last_error"] = vw.lastError
	}
	return status
}
