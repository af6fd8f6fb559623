package server

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync/internal/config"
	"skillsync/internal/errors"
)

func TestCertWatcherRelevantEvents(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "tls.crt")
	cw := NewCertWatcher([]string{certFile, "", filepath.Join(dir, "tls.key")}, 0, func() {}, errors.Discard())

	assert.Equal(t, []string{certFile, filepath.Join(dir, "tls.key")}, cw.Files())
	assert.Equal(t, time.Second, cw.debounce)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write to cert", fsnotify.Event{Name: certFile, Op: fsnotify.Write}, true},
		{"rename onto cert", fsnotify.Event{Name: certFile, Op: fsnotify.Rename}, true},
		{"remove cert", fsnotify.Event{Name: certFile, Op: fsnotify.Remove}, true},
		{"chmod cert", fsnotify.Event{Name: certFile, Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write}, false},
		{"same name elsewhere", fsnotify.Event{Name: filepath.Join(dir, "sub", "tls.crt"), Op: fsnotify.Write}, false},
		{"secret mount swap", fsnotify.Event{Name: filepath.Join(dir, "..data"), Op: fsnotify.Create}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cw.relevant(tt.event))
		})
	}
}

func TestCertWatcherDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "tls.crt")
	require.NoError(t, os.WriteFile(certFile, []byte("v1"), 0o600))

	var calls atomic.Int32
	cw := NewCertWatcher([]string{certFile}, 100*time.Millisecond, func() { calls.Add(1) }, errors.Discard())
	require.NoError(t, cw.Start())
	defer func() { _ = cw.Stop() }()
	require.Error(t, cw.Start())

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(certFile, []byte("v2"), 0o600))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, cw.Stop())
	assert.False(t, cw.IsRunning())
	require.NoError(t, cw.Stop())
}

func TestCertWatcherStartWithoutFiles(t *testing.T) {
	cw := NewCertWatcher(nil, time.Millisecond, func() {}, errors.Discard())
	assert.Error(t, cw.Start())
	assert.False(t, cw.IsRunning())
}

func TestCertificateManagerReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeCertFiles(t, dir, "before", time.Now().Add(time.Hour))

	cm := NewCertificateManager(config.TLSConfig{
		Mode:     "server",
		CertFile: certFile,
		KeyFile:  keyFile,
		AutoReload: config.AutoReloadConfig{
			Enabled:       true,
			DebounceDelay: 50 * time.Millisecond,
		},
	}, nil, "", nil, errors.Discard())
	require.NoError(t, cm.Start())
	defer func() { _ = cm.Stop() }()
	require.NotNil(t, cm.fileWatcher)

	writeCertFiles(t, dir, "after", time.Now().Add(2*time.Hour))

	require.Eventually(t, func() bool {
		cert, err := cm.GetCertificate(&tls.ClientHelloInfo{})
		return err == nil && cert.Leaf.Subject.CommonName == "after"
	}, 5*time.Second, 20*time.Millisecond)

	watcher := cm.Status()["file_watcher"].(map[string]any)
	assert.Equal(t, true, watcher["running"])
}
