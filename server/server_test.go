package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedpost/pkg/domain"
	"github.com/umputun/feedpost/server/mocks"
)

func testConfig() *mocks.ConfigProviderMock {
	return &mocks.ConfigProviderMock{
		GetServerConfigFunc: func() (string, time.Duration) {
			return ":8080", 30 * time.Second
		},
		GetFeedsFunc: func() []domain.Feed {
			return []domain.Feed{
				{Name: "hn", URL: "https://news.ycombinator.com/rss"},
				{Name: "lobsters", URL: "https://lobste.rs/rss"},
			}
		},
	}
}

func TestServer_New(t *testing.T) {
	srv := New(testConfig(), &mocks.ReporterMock{}, &mocks.CursorReaderMock{}, "1.0.0", false)
	assert.NotNil(t, srv)
	assert.Equal(t, "1.0.0", srv.version)
	assert.False(t, srv.debug)
}

func TestServer_Run(t *testing.T) {
	// find free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	err = listener.Close()
	require.NoError(t, err)

	cfg := testConfig()
	cfg.GetServerConfigFunc = func() (string, time.Duration) {
		return fmt.Sprintf("127.0.0.1:%d", port), 30 * time.Second
	}
	reporter := &mocks.ReporterMock{
		LastReportFunc: func() *domain.RunReport { return nil },
	}
	cursors := &mocks.CursorReaderMock{
		CursorsFunc: func(ctx context.Context) (map[string]string, error) {
			return map[string]string{}, nil
		},
	}

	srv := New(cfg, reporter, cursors, "1.0.0", false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = srv.Run(ctx)
	}()

	// wait for server to start
	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/ping", port))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	cancel()
	time.Sleep(100 * time.Millisecond)
}

func TestServer_statusHandler(t *testing.T) {
	reporter := &mocks.ReporterMock{
		LastReportFunc: func() *domain.RunReport {
			return &domain.RunReport{Delivered: 5, Failed: 1}
		},
	}
	srv := New(testConfig(), reporter, &mocks.CursorReaderMock{}, "1.2.3", false)

	req := httptest.NewRequest("GET", "/status", http.NoBody)
	w := httptest.NewRecorder()
	srv.statusHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "1.2.3", resp["version"])

	lastRun, ok := resp["last_run"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 5, lastRun["delivered"], 0)
	assert.InDelta(t, 1, lastRun["failed"], 0)
}

func TestServer_statusHandler_NoRunsYet(t *testing.T) {
	reporter := &mocks.ReporterMock{
		LastReportFunc: func() *domain.RunReport { return nil },
	}
	srv := New(testConfig(), reporter, &mocks.CursorReaderMock{}, "1.2.3", false)

	req := httptest.NewRequest("GET", "/status", http.NoBody)
	w := httptest.NewRecorder()
	srv.statusHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotContains(t, resp, "last_run")
}

func TestServer_feedsHandler(t *testing.T) {
	cursors := &mocks.CursorReaderMock{
		CursorsFunc: func(ctx context.Context) (map[string]string, error) {
			return map[string]string{"hn": "item-42"}, nil
		},
	}
	srv := New(testConfig(), &mocks.ReporterMock{}, cursors, "test", false)

	req := httptest.NewRequest("GET", "/feeds", http.NoBody)
	w := httptest.NewRecorder()
	srv.feedsHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "hn", resp[0]["name"])
	assert.Equal(t, "item-42", resp[0]["cursor"])
	assert.Equal(t, "lobsters", resp[1]["name"])
	assert.Empty(t, resp[1]["cursor"], "feed without stored position has no cursor")
}

func TestServer_feedsHandler_CursorError(t *testing.T) {
	cursors := &mocks.CursorReaderMock{
		CursorsFunc: func(ctx context.Context) (map[string]string, error) {
			return nil, errors.New("db locked")
		},
	}
	srv := New(testConfig(), &mocks.ReporterMock{}, cursors, "test", false)

	req := httptest.NewRequest("GET", "/feeds", http.NoBody)
	w := httptest.NewRecorder()
	srv.feedsHandler(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "db locked")
}

func TestServer_Routes(t *testing.T) {
	reporter := &mocks.ReporterMock{
		LastReportFunc: func() *domain.RunReport { return nil },
	}
	cursors := &mocks.CursorReaderMock{
		CursorsFunc: func(ctx context.Context) (map[string]string, error) {
			return map[string]string{}, nil
		},
	}
	srv := New(testConfig(), reporter, cursors, "test", false)

	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	for _, path := range []string{"/api/v1/status", "/api/v1/feeds", "/ping"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		resp.Body.Close()
	}

	// app info middleware sets the version header
	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "feedpost", resp.Header.Get("App-Name"))
}
