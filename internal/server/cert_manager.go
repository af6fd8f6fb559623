package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"skillsync/internal/config"
	"skillsync/internal/errors"
	"skillsync/internal/observability"
)

const expiryReportInterval = time.Minute

// ReloadCallback is called after every reload attempt
type ReloadCallback func(success bool, err error)

// CertificateManager serves the current TLS certificate and client CA pool,
// swapping them in when the files or the Vault secret change. A failed
// reload keeps the previous certificate in service.
type CertificateManager struct {
	mu sync.RWMutex

	cfg        config.TLSConfig
	serverCert *tls.Certificate
	caPool     *x509.CertPool
	expiry     time.Time

	fileWatcher  *CertWatcher
	vaultWatcher *VaultWatcher
	vault        SecretReader
	vaultPath    string

	callbacks []ReloadCallback
	stats     reloadStats
	done      chan struct{}

	metrics *observability.Metrics
	logger  *errors.Logger
}

type reloadStats struct {
	attempts  int64
	successes int64
	failures  int64
	lastTime  time.Time
	lastError string
}

// NewCertificateManager creates a manager for cfg. vault and vaultPath are
// only used when the certificates were read from Vault; either may be empty.
func NewCertificateManager(cfg config.TLSConfig, vault SecretReader, vaultPath string, metrics *observability.Metrics, logger *errors.Logger) *CertificateManager {
	return &CertificateManager{
		cfg:       cfg,
		vault:     vault,
		vaultPath: vaultPath,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start loads the certificates and, when auto reload is enabled, starts the watchers
func (cm *CertificateManager) Start() error {
	if err := cm.Reload(); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}

	cm.done = make(chan struct{})
	if cm.metrics != nil {
		go cm.reportExpiry(cm.done)
	}

	if !cm.cfg.AutoReload.Enabled {
		return nil
	}
	if err := cm.startFileWatcher(); err != nil {
		return err
	}
	return cm.startVaultWatcher()
}

func (cm *CertificateManager) startFileWatcher() error {
	files := []string{cm.cfg.CertFile, cm.cfg.KeyFile}
	if cm.cfg.Mode == "mutual" {
		files = append(files, cm.cfg.CAFile)
	}
	watcher := NewCertWatcher(files, cm.cfg.AutoReload.DebounceDelay, cm.reloadFromWatcher, cm.logger)
	if len(watcher.Files()) == 0 {
		return nil
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start certificate file watcher: %w", err)
	}
	cm.fileWatcher = watcher
	return nil
}

func (cm *CertificateManager) startVaultWatcher() error {
	fromVault := cm.cfg.CertContent != "" || cm.cfg.KeyContent != "" || cm.cfg.CAContent != ""
	if !fromVault || cm.vault == nil || cm.vaultPath == "" || cm.cfg.AutoReload.VaultPollInterval <= 0 {
		return nil
	}
	watcher := NewVaultWatcher(cm.vault, cm.vaultPath, cm.cfg.AutoReload.VaultPollInterval, cm.applyVaultData, cm.logger)
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start vault certificate watcher: %w", err)
	}
	cm.vaultWatcher = watcher
	return nil
}

// Stop stops the watchers and expiry reporting
func (cm *CertificateManager) Stop() error {
	var errs []error
	if cm.fileWatcher != nil {
		if err := cm.fileWatcher.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if cm.vaultWatcher != nil {
		if err := cm.vaultWatcher.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if cm.done != nil {
		close(cm.done)
		cm.done = nil
	}
	cm.logger.Info("Certificate manager stopped")
	if len(errs) > 0 {
		return fmt.Errorf("failed to stop certificate watchers: %v", errs)
	}
	return nil
}

// AddReloadCallback registers cb for every later reload attempt
func (cm *CertificateManager) AddReloadCallback(cb ReloadCallback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, cb)
}

// Reload reads the configured certificate sources and swaps them in
func (cm *CertificateManager) Reload() error {
	cm.mu.RLock()
	cfg := cm.cfg
	cm.mu.RUnlock()

	cert, expiry, err := loadServerCertificate(cfg)
	var pool *x509.CertPool
	if err == nil && cfg.Mode == "mutual" {
		pool, err = loadCAPool(cfg)
	}

	cm.mu.Lock()
	cm.stats.attempts++
	cm.stats.lastTime = time.Now()
	if err != nil {
		cm.stats.failures++
		cm.stats.lastError = err.Error()
	} else {
		cm.stats.successes++
		cm.stats.lastError = ""
		cm.serverCert = cert
		cm.caPool = pool
		cm.expiry = expiry
	}
	callbacks := append([]ReloadCallback(nil), cm.callbacks...)
	cm.mu.Unlock()

	ctx := context.Background()
	cm.metrics.RecordCertReload(ctx, err == nil)
	if err != nil {
		cm.logger.LogError(err, "Failed to load TLS certificates")
	} else {
		cm.metrics.RecordCertExpiry(ctx, time.Until(expiry))
		cm.logger.Info("TLS certificates loaded", "expires", expiry)
	}
	for _, cb := range callbacks {
		cb(err == nil, err)
	}
	return err
}

func (cm *CertificateManager) reloadFromWatcher() {
	// Failures are logged and counted by Reload
	_ = cm.Reload()
}

// applyVaultData replaces the PEM content with a newer Vault version and reloads
func (cm *CertificateManager) applyVaultData(data CertificateData) {
	cm.mu.Lock()
	if data.CertContent != "" {
		cm.cfg.CertContent = data.CertContent
	}
	if data.KeyContent != "" {
		cm.cfg.KeyContent = data.KeyContent
	}
	if data.CAContent != "" {
		cm.cfg.CAContent = data.CAContent
	}
	cm.mu.Unlock()
	_ = cm.Reload()
}

func loadServerCertificate(cfg config.TLSConfig) (*tls.Certificate, time.Time, error) {
	var cert tls.Certificate
	var err error
	switch {
	case cfg.CertContent != "" && cfg.KeyContent != "":
		cert, err = tls.X509KeyPair([]byte(cfg.CertContent), []byte(cfg.KeyContent))
	case cfg.CertFile != "" && cfg.KeyFile != "":
		cert, err = tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	default:
		return nil, time.Time{}, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load server certificate: %w", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to parse server certificate: %w", err)
	}
	cert.Leaf = leaf
	return &cert, leaf.NotAfter, nil
}

func loadCAPool(cfg config.TLSConfig) (*x509.CertPool, error) {
	pem := []byte(cfg.CAContent)
	if len(pem) == 0 && cfg.CAFile != "" {
		raw, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		pem = raw
	}
	if len(pem) == 0 {
		return nil, fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}
	return pool, nil
}

// GetCertificate returns the current server certificate for TLS handshakes
func (cm *CertificateManager) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCert == nil {
		return nil, fmt.Errorf("no server certificate available")
	}
	if time.Now().After(cm.expiry) {
		cm.logger.Warn("Refusing handshake with expired server certificate",
			"expiry", cm.expiry,
			"server_name", hello.ServerName)
		return nil, fmt.Errorf("server certificate expired at %s", cm.expiry)
	}
	return cm.serverCert, nil
}

// ClientCAs returns the current client CA pool, nil outside mutual mode
func (cm *CertificateManager) ClientCAs() *x509.CertPool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.caPool
}

// Apply points base at the managed certificate. In mutual mode each
// handshake gets a copy of base carrying the current client CA pool.
func (cm *CertificateManager) Apply(base *tls.Config) {
	base.GetCertificate = cm.GetCertificate
	if cm.cfg.Mode != "mutual" {
		return
	}
	base.ClientCAs = cm.ClientCAs()
	template := base.Clone()
	base.GetConfigForClient = func(*tls.ClientHelloInfo) (*tls.Config, error) {
		cfg := template.Clone()
		cfg.ClientCAs = cm.ClientCAs()
		return cfg, nil
	}
}

// CheckExpiry returns the time left on the server certificate
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.expiry.IsZero() {
		return 0, fmt.Errorf("no certificates loaded")
	}
	return time.Until(cm.expiry), nil
}

// Status reports reload counters and watcher state
func (cm *CertificateManager) Status() map[string]any {
	cm.mu.RLock()
	status := map[string]any{
		"auto_reload": cm.cfg.AutoReload.Enabled,
		"attempts":    cm.stats.attempts,
		"successes":   cm.stats.successes,
		"failures":    cm.stats.failures,
		"last_reload": cm.stats.lastTime,
	}
	if cm.stats.lastError != "" {
		status["last_error"] = cm.stats.lastError
	}
	cm.mu.RUnlock()

	if cm.fileWatcher != nil {
		status["file_watcher"] = map[string]any{
			"running": cm.fileWatcher.IsRunning(),
			"files":   cm.fileWatcher.Files(),
		}
	}
	if cm.vaultWatcher != nil {
		status["vault_watcher"] = cm.vaultWatcher.Status()
	}
	return status
}

func (cm *CertificateManager) reportExpiry(done <-chan struct{}) {
	ticker := time.NewTicker(expiryReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if remaining, err := cm.CheckExpiry(); err == nil {
				cm.metrics.RecordCertExpiry(context.Background(), remaining)
			}
		case <-done:
			return
		}
	}
}
