package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type testEnv struct {
	dir        string
	configPath string
	workbook   string
	cacheFile  string
	historyDB  string
}

func newTestEnv(t *testing.T, port int) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "config.toml"),
		workbook:   filepath.Join(dir, "list.xlsx"),
		cacheFile:  filepath.Join(dir, "data_cache.json"),
		historyDB:  filepath.Join(dir, "data", "toyshelf.db"),
	}
	cfg := fmt.Sprintf(`[server]
port = %d
open_browser = false

[data]
workbook = %q
cache_file = %q
history_db = %q
`, port, env.workbook, env.cacheFile, env.historyDB)
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0644))
	return env
}

func (e *testEnv) writeWorkbook(t *testing.T) {
	t.Helper()
	f := excelize.NewFile()
	_, err := f.NewSheet("航海王")
	require.NoError(t, err)
	rows := [][]any{{"编号", "名称"}, {1, "路飞"}, {2, " 索隆 "}}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("航海王", cell, &row))
	}
	require.NoError(t, f.SaveAs(e.workbook))
	require.NoError(t, f.Close())
}

func run(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	m := &Main{OpenBrowser: func(string) error {
		t.Error("browser must not be opened in tests")
		return nil
	}}
	err := m.Run(ctx, args, &stdout, &stderr)
	return stdout.String(), err
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, 5000)

	out, err := run(t, context.Background(), "-c", env.configPath, "search", "海贼王 路飞 手办")
	require.NoError(t, err)
	assert.Contains(t, out, "https://www.bing.com/images/search?q=")

	out, err = run(t, context.Background(), "-c", env.configPath, "search", "--json", "【限定】海贼王 路飞 手办")
	require.NoError(t, err)

	var res struct {
		URL      string `json:"url"`
		Keywords string `json:"keywords"`
		Original string `json:"original"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "海贼王 路飞", res.Keywords)
	assert.Equal(t, "【限定】海贼王 路飞 手办", res.Original)
	assert.NotEmpty(t, res.URL)
}

func TestSearch_EmptyQuery(t *testing.T) {
	env := newTestEnv(t, 5000)

	_, err := run(t, context.Background(), "-c", env.configPath, "search", "")
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	env := newTestEnv(t, 5000)

	out, err := run(t, context.Background(), "-c", env.configPath, "check")
	require.Error(t, err)
	assert.Contains(t, out, "[X]")

	env.writeWorkbook(t)
	out, err = run(t, context.Background(), "-c", env.configPath, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "所有检查通过")
}

func TestRefreshAndHistory(t *testing.T) {
	env := newTestEnv(t, 5000)

	_, err := run(t, context.Background(), "-c", env.configPath, "refresh")
	require.Error(t, err, "workbook missing")

	env.writeWorkbook(t)
	out, err := run(t, context.Background(), "-c", env.configPath, "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "航海王: 2")
	assert.Contains(t, out, "cache=written")
	assert.FileExists(t, env.cacheFile)

	out, err = run(t, context.Background(), "-c", env.configPath, "history", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "refresh")
	assert.Contains(t, out, "workbook")
	assert.Contains(t, out, "empty", "failed refresh is recorded too")
}

func TestHistory_Empty(t *testing.T) {
	env := newTestEnv(t, 5000)

	out, err := run(t, context.Background(), "-c", env.configPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No loads recorded yet.")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "config.toml")

	out, err := run(t, context.Background(), "-c", path, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = run(t, context.Background(), "-c", path, "init", path)
	require.Error(t, err)

	_, err = run(t, context.Background(), "-c", path, "init", "--force", path)
	require.NoError(t, err)
}

func TestServe(t *testing.T) {
	port := freePort(t)
	env := newTestEnv(t, port)
	env.writeWorkbook(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := run(t, ctx, "-c", env.configPath, "serve", "--no-browser")
		done <- err
	}()

	require.NoError(t, waitReady(ctx, fmt.Sprintf("127.0.0.1:%d", port), 5*time.Second))

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/data", port))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var data map[string][]map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	require.Len(t, data["航海王"], 2)
	assert.Equal(t, "索隆", data["航海王"][1]["name"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServe_PreflightFails(t *testing.T) {
	env := newTestEnv(t, freePort(t))

	_, err := run(t, context.Background(), "-c", env.configPath, "serve", "--no-browser")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preflight")
}

func TestServe_HelpDoesNotStartServer(t *testing.T) {
	port := freePort(t)
	env := newTestEnv(t, port)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	out, err := run(t, ctx, "-c", env.configPath, "serve", "--help", "--skip-check", "--port", fmt.Sprint(port))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, out, "Usage:")
	assert.NotContains(t, out, "服务启动中")

	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), 200*time.Millisecond)
	if err == nil {
		conn.Close()
		t.Fatal("server must not be listening")
	}
}
