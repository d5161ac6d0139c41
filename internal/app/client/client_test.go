package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alchemy/internal/app/config"
	"alchemy/internal/machineid"
	"alchemy/internal/secapi"
	"alchemy/internal/updater"
	"alchemy/internal/utils/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Env:                config.EnvLocal,
		ConfigDir:          dir,
		ProtectedDataPath:  filepath.Join(dir, "bin_conf.dat"),
		LegacyPasswordPath: filepath.Join(dir, "password.dat"),
		LogsDir:            filepath.Join(dir, "logs"),
		TempDir:            filepath.Join(dir, "tmp"),
		Update: config.Update{
			ServiceURL:    "http://localhost:8090",
			Channel:       "Release",
			ViewerVersion: "6.0.0",
			Platform:      "linux",
			PlatformVer:   "6.1",
			HistoryPath:   filepath.Join(dir, "updates.db"),
		},
	}
}

func TestApp_StoreRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	machine := machineid.Static("machine-one")

	app, err := NewWithMachine(cfg, machine, logger.Discard())
	require.NoError(t, err)

	store, err := app.Store()
	require.NoError(t, err)
	store.SaveCredential(store.CreateCredential("agni", secapi.NewAccountIdentifier("foo"), secapi.NewClearAuthenticator("pw")), true)
	require.NoError(t, app.Close())

	again, err := NewWithMachine(cfg, machine, logger.Discard())
	require.NoError(t, err)
	defer again.Close()

	store, err = again.Store()
	require.NoError(t, err)
	assert.Equal(t, "pw", store.LoadCredential("agni", "foo").Authenticator().Secret)
}

func TestApp_CorruptedStore(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.ProtectedDataPath, make([]byte, 64), 0600))

	app, err := NewWithMachine(cfg, machineid.Static("machine"), logger.Discard())
	require.NoError(t, err)
	defer app.Close()

	assert.True(t, app.IsStoreCorrupted())
	_, err = app.Store()
	assert.ErrorIs(t, err, secapi.ErrProtectedData)

	// the corrupted file is left untouched
	require.NoError(t, app.Close())
	raw, err := os.ReadFile(cfg.ProtectedDataPath)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 64), raw)
}

func TestApp_CheckParams(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewWithMachine(cfg, machineid.Static("machine"), logger.Discard())
	require.NoError(t, err)
	defer app.Close()

	p := app.CheckParams()
	assert.Equal(t, "http://localhost:8090", p.BaseURL)
	assert.Equal(t, "Release", p.Channel)
	assert.Equal(t, updater.UniqueIDFromMachine([]byte("machine")), p.UniqueID)
}

func TestApp_NewDownloader(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewWithMachine(cfg, machineid.Static("machine"), logger.Discard())
	require.NoError(t, err)
	defer app.Close()

	d, recorder, err := app.NewDownloader(nil)
	require.NoError(t, err)
	assert.NotNil(t, recorder)
	assert.Equal(t, filepath.Join(cfg.LogsDir, updater.MarkerFileName), d.MarkerPath())
	assert.FileExists(t, cfg.Update.HistoryPath)
}
