package server

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync/internal/config"
	"skillsync/internal/errors"
)

const tlsSecretPath = "secret/data/skillsync/tls"

// fakeSecrets serves one mutable KVv2 secret
type fakeSecrets struct {
	mu     sync.Mutex
	secret *config.VaultSecret
	err    error
	reads  int
}

func (f *fakeSecrets) GetSecretV2(path string) (*config.VaultSecret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	if path != tlsSecretPath || f.secret == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	return f.secret, nil
}

func (f *fakeSecrets) set(version int64, data map[string]any, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secret = &config.VaultSecret{Version: version, Data: data}
	f.err = err
}

func TestVaultWatcherReportsNewVersions(t *testing.T) {
	secrets := &fakeSecrets{}
	secrets.set(3, map[string]any{"cert": "c3", "key": "k3"}, nil)

	var updates []CertificateData
	vw := NewVaultWatcher(secrets, tlsSecretPath, time.Hour, func(d CertificateData) { updates = append(updates, d) }, errors.Discard())
	require.NoError(t, vw.Start())
	defer func() { _ = vw.Stop() }()

	assert.False(t, vw.checkOnce(), "unchanged version must not reload")
	assert.Empty(t, updates)

	secrets.set(4, map[string]any{"cert": "c4", "key": "k4", "ca": "ca4", "note": 7}, nil)
	assert.True(t, vw.checkOnce())
	require.Len(t, updates, 1)
	assert.Equal(t, CertificateData{CertContent: "c4", KeyContent: "k4", CAContent: "ca4"}, updates[0])

	assert.False(t, vw.checkOnce())
	assert.Equal(t, int64(4), vw.Status()["version"])
}

func TestVaultWatcherPollErrors(t *testing.T) {
	secrets := &fakeSecrets{}
	secrets.set(1, map[string]any{"cert": "c1"}, nil)

	vw := NewVaultWatcher(secrets, tlsSecretPath, time.Hour, func(CertificateData) {
		t.Error("no update expected")
	}, errors.Discard())
	require.NoError(t, vw.Start())
	defer func() { _ = vw.Stop() }()

	secrets.set(2, nil, fmt.Errorf("permission denied"))
	assert.False(t, vw.checkOnce())

	status := vw.Status()
	assert.Equal(t, "permission denied", status["last_error"])
	assert.Equal(t, int64(1), status["version"])
	assert.Equal(t, true, status["running"])
}

func TestVaultWatcherStart(t *testing.T) {
	t.Run("initial read fails", func(t *testing.T) {
		vw := NewVaultWatcher(&fakeSecrets{}, tlsSecretPath, time.Minute, func(CertificateData) {}, errors.Discard())
		assert.Error(t, vw.Start())
	})

	t.Run("interval required", func(t *testing.T) {
		secrets := &fakeSecrets{}
		secrets.set(1, map[string]any{}, nil)
		vw := NewVaultWatcher(secrets, tlsSecretPath, 0, func(CertificateData) {}, errors.Discard())
		assert.Error(t, vw.Start())
	})

	t.Run("polls on interval", func(t *testing.T) {
		secrets := &fakeSecrets{}
		secrets.set(1, map[string]any{"cert": "c1"}, nil)

		got := make(chan CertificateData, 1)
		vw := NewVaultWatcher(secrets, tlsSecretPath, 10*time.Millisecond, func(d CertificateData) {
			select {
			case got <- d:
			default:
			}
		}, errors.Discard())
		require.NoError(t, vw.Start())
		require.Error(t, vw.Start())

		secrets.set(2, map[string]any{"cert": "c2"}, nil)
		select {
		case d := <-got:
			assert.Equal(t, "c2", d.CertContent)
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not report the new version")
		}

		require.NoError(t, vw.Stop())
		require.NoError(t, vw.Stop())
		assert.Equal(t, false, vw.Status()["running"])
	})
}

func TestCertificateManagerStartsVaultWatcher(t *testing.T) {
	certPEM, keyPEM := selfSigned(t, "vault-v1", time.Now().Add(time.Hour))
	secrets := &fakeSecrets{}
	secrets.set(1, map[string]any{"cert": string(certPEM), "key": string(keyPEM)}, nil)

	cm := NewCertificateManager(config.TLSConfig{
		Mode:        "server",
		CertContent: string(certPEM),
		KeyContent:  string(keyPEM),
		AutoReload:  config.AutoReloadConfig{Enabled: true, VaultPollInterval: time.Hour},
	}, secrets, tlsSecretPath, nil, errors.Discard())
	require.NoError(t, cm.Start())
	defer func() { _ = cm.Stop() }()

	require.NotNil(t, cm.vaultWatcher)
	assert.Nil(t, cm.fileWatcher)

	newCert, newKey := selfSigned(t, "vault-v2", time.Now().Add(time.Hour))
	secrets.set(2, map[string]any{"cert": string(newCert), "key": string(newKey)}, nil)
	require.True(t, cm.vaultWatcher.checkOnce())

	assert.Equal(t, "vault-v2", servedCommonName(t, cm))
	assert.Contains(t, cm.Status(), "vault_watcher")
}
