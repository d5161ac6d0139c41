package updater

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alchemy/internal/utils/logger"
)

func TestBuildCheckURL(t *testing.T) {
	tests := []struct {
		name    string
		params  CheckParams
		want    string
		wantErr bool
	}{
		{
			name: "willing to test",
			params: CheckParams{
				BaseURL: "https://update.example.com/update", Channel: "Release", Version: "6.0.0",
				Platform: "linux", PlatformVersion: "6.1", UniqueID: "abc", WillingToTest: true,
			},
			want: "https://update.example.com/update/v1.1/Release/6.0.0/linux/6.1/testok/abc",
		},
		{
			name: "escapes segments",
			params: CheckParams{
				BaseURL: "http://localhost:8090/", Channel: "Alchemy Beta", Version: "6.0.0",
				Platform: "darwin", PlatformVersion: "14.0", UniqueID: "abc",
			},
			want: "http://localhost:8090/v1.1/Alchemy%20Beta/6.0.0/darwin/14.0/testno/abc",
		},
		{
			name:    "no base url",
			params:  CheckParams{Channel: "Release"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildCheckURL(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChecker_CheckVersion(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(UpdateInfo{
			Version:  "6.1.0",
			URL:      "http://localhost/files/update.bin",
			Hash:     "d41d8cd98f00b204e9800998ecf8427e",
			Required: true,
			MoreInfo: "http://localhost/notes",
			Channel:  "Release",
		})
	}))
	defer srv.Close()

	checker, err := NewChecker(TransportOptions{}, logger.Discard())
	require.NoError(t, err)

	info, err := checker.CheckVersion(context.Background(), CheckParams{
		BaseURL: srv.URL, Channel: "Release", Version: "6.0.0", Platform: "linux", PlatformVersion: "6.1", UniqueID: "abc",
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1.1/Release/6.0.0/linux/6.1/testno/abc", gotPath)
	assert.Equal(t, "6.1.0", info.Version)
	assert.True(t, info.Required)
	assert.True(t, info.Available())
	assert.Equal(t, "http://localhost/notes", info.MoreInfo)
}

func TestChecker_NoUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"version":"6.0.0","required":false}`))
	}))
	defer srv.Close()

	checker, err := NewChecker(TransportOptions{}, logger.Discard())
	require.NoError(t, err)

	info, err := checker.CheckVersion(context.Background(), CheckParams{BaseURL: srv.URL})
	require.NoError(t, err)
	assert.False(t, info.Available())
}

func TestChecker_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error_code":"not_found","error_text":"unknown channel"}`))
	}))
	defer srv.Close()

	checker, err := NewChecker(TransportOptions{}, logger.Discard())
	require.NoError(t, err)

	_, err = checker.CheckVersion(context.Background(), CheckParams{BaseURL: srv.URL, Channel: "Nope"})
	require.Error(t, err)

	var checkErr *CheckError
	require.True(t, errors.As(err, &checkErr))
	assert.Equal(t, http.StatusNotFound, checkErr.StatusCode)
	assert.Contains(t, err.Error(), "not_found: unknown channel")
}

func TestChecker_InProgress(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		_, _ = w.Write([]byte(`{"version":"6.0.0"}`))
	}))
	defer srv.Close()

	checker, err := NewChecker(TransportOptions{}, logger.Discard())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := checker.CheckVersion(context.Background(), CheckParams{BaseURL: srv.URL})
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("check did not reach the server")
	}

	_, err = checker.CheckVersion(context.Background(), CheckParams{BaseURL: srv.URL})
	assert.ErrorIs(t, err, ErrCheckInProgress)

	close(release)
	assert.NoError(t, <-done)
}

func TestUniqueIDFromMachine(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", UniqueIDFromMachine(nil))
	assert.Len(t, UniqueIDFromMachine([]byte{1, 2, 3, 4, 5, 6}), 32)
}

func TestNewTransport_BadCACert(t *testing.T) {
	_, err := NewChecker(TransportOptions{CACertPath: "/nonexistent/ca.pem"}, logger.Discard())
	assert.Error(t, err)
}
