package api

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alchemy/internal/app/updateserver/catalog"
	"alchemy/internal/updater"
	"alchemy/internal/utils/logger"
)

type recordingClient struct {
	mu        sync.Mutex
	completed []updater.DownloadRecord
	errs      []string
}

func (c *recordingClient) DownloadComplete(rec updater.DownloadRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed = append(c.completed, rec)
}

func (c *recordingClient) DownloadError(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, reason)
}

func newUpdateServer(t *testing.T, content []byte) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alchemy-6.1.0.bin"), content, 0600))
	catalogPath := filepath.Join(dir, "releases.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(`
releases:
  - channel: Release
    version: 6.1.0
    platform: linux
    file: alchemy-6.1.0.bin
    more_info: http://localhost/notes
`), 0600))

	cat, err := catalog.Load(catalogPath)
	require.NoError(t, err)

	var mux http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
	}))
	mux = New(cat, srv.URL, logger.Discard())
	t.Cleanup(srv.Close)
	return srv
}

func TestAPI_Health(t *testing.T) {
	srv := newUpdateServer(t, []byte("payload"))

	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Status   string `json:"status"`
		Releases int    `json:"releases"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, 1, body.Releases)
}

func TestAPI_CheckAndDownload(t *testing.T) {
	content := make([]byte, 256*1024)
	for i := range content {
		content[i] = byte(i % 251)
	}
	sum := md5.Sum(content)
	srv := newUpdateServer(t, content)

	checker, err := updater.NewChecker(updater.TransportOptions{}, logger.Discard())
	require.NoError(t, err)

	info, err := checker.CheckVersion(context.Background(), updater.CheckParams{
		BaseURL:         srv.URL,
		Channel:         "Release",
		Version:         "6.0.0",
		Platform:        "linux",
		PlatformVersion: "6.1",
		UniqueID:        updater.UniqueIDFromMachine([]byte("machine")),
	})
	require.NoError(t, err)
	require.True(t, info.Available())
	assert.Equal(t, "6.1.0", info.Version)
	assert.Equal(t, hex.EncodeToString(sum[:]), info.Hash)
	assert.Equal(t, srv.URL+"/files/alchemy-6.1.0.bin", info.URL)

	client := &recordingClient{}
	root := t.TempDir()
	d, err := updater.NewDownloader(client, updater.Options{TempDir: root, LogsDir: root}, logger.Discard())
	require.NoError(t, err)
	defer d.Close()

	d.Download(info.URL, info.Hash, info.Channel, info.Version, info.MoreInfo, info.Required)
	d.Wait()

	require.Empty(t, client.errs)
	require.Len(t, client.completed, 1)
	got, err := os.ReadFile(client.completed[0].Path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestAPI_ResumeAgainstServer(t *testing.T) {
	content := make([]byte, 128*1024)
	for i := range content {
		content[i] = byte(i % 13)
	}
	sum := md5.Sum(content)
	srv := newUpdateServer(t, content)

	root := t.TempDir()
	client := &recordingClient{}
	d, err := updater.NewDownloader(client, updater.Options{TempDir: root, LogsDir: root}, logger.Discard())
	require.NoError(t, err)
	defer d.Close()

	// a partial file left by an interrupted download
	path := filepath.Join(root, "alchemy-6.1.0.bin")
	require.NoError(t, os.WriteFile(path, content[:50000], 0644))
	marker, err := json.Marshal(updater.DownloadRecord{
		URL:  srv.URL + "/files/alchemy-6.1.0.bin",
		Hash: hex.EncodeToString(sum[:]),
		Path: path,
		Size: int64(len(content)),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(d.MarkerPath(), marker, 0600))

	d.Resume()
	d.Wait()

	require.Empty(t, client.errs)
	require.Len(t, client.completed, 1)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestAPI_CheckUnknownChannel(t *testing.T) {
	srv := newUpdateServer(t, []byte("payload"))

	checker, err := updater.NewChecker(updater.TransportOptions{}, logger.Discard())
	require.NoError(t, err)

	_, err = checker.CheckVersion(context.Background(), updater.CheckParams{
		BaseURL: srv.URL, Channel: "Beta", Version: "6.0.0", Platform: "linux", PlatformVersion: "6.1", UniqueID: "abc",
	})

	var checkErr *updater.CheckError
	require.ErrorAs(t, err, &checkErr)
	assert.Equal(t, http.StatusNotFound, checkErr.StatusCode)
}
