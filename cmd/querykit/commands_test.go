package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanteonNL/querykit/cmd/querykit/config"
	"github.com/SanteonNL/querykit/models/identity"
)

const usersFixture = `[
	{"id": 1, "firstName": "Alice", "lastName": "Smith", "age": 30, "isActive": true, "role": "admin", "teamId": 1,
	 "team": {"id": 1, "name": "Core", "plan": "pro"}},
	{"id": 2, "firstName": "Bob", "lastName": "Jones", "age": 25, "role": "member"},
	{"id": 3, "firstName": "Charlie", "lastName": "Brown", "age": 35, "isActive": true, "role": "member"}
]`

const teamsFixture = `[
	{"id": 1, "name": "Core", "plan": "pro", "seatLimit": 25, "monthlyFee": "99.00"},
	{"id": 2, "name": "Alpha", "plan": "free", "seatLimit": 3, "monthlyFee": "0"}
]`

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(usersFixture), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "teams.json"), []byte(teamsFixture), 0o600))
	return dir
}

func writeRequest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestQueryCommandWritesPage(t *testing.T) {
	fixtures := writeFixtures(t)
	out := t.TempDir()
	request := writeRequest(t, `{"pageNumber":1,"pageSize":5,
		"sortList":[{"field":"age","direction":"desc"}],
		"filterList":[{"field":"isActive","filterType":"EQUALS","filterValue":"true"}]}`)

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"query", "--entity", "users", "--request", request, "--fixtures", fixtures, "--out", out})
	require.NoError(t, cmd.Execute())

	path := strings.TrimSpace(stdout.String())
	require.True(t, strings.HasPrefix(path, out), "result is written below --out")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var page struct {
		Data       []identity.User `json:"data"`
		TotalItems int             `json:"totalItems"`
	}
	require.NoError(t, json.Unmarshal(content, &page))
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Charlie", page.Data[0].FirstName)
	assert.Equal(t, "Alice", page.Data[1].FirstName)
	require.NotNil(t, page.Data[1].Team)
	assert.Equal(t, identity.PlanPro, page.Data[1].Team.Plan)
	assert.Equal(t, 2, page.TotalItems)
}

func TestQueryCommandTeams(t *testing.T) {
	fixtures := writeFixtures(t)
	request := writeRequest(t, `{"filterList":[{"field":"monthlyFee","filterType":"GREATER_THAN","filterValue":"10"}]}`)

	cfg := config.Default()
	cfg.FixtureDir = fixtures
	path, err := runQuery(context.Background(), &cfg, zerolog.Nop(), "teams", request, t.TempDir())
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"name": "Core"`)
	assert.NotContains(t, string(content), `"name": "Alpha"`)
}

func TestQueryCommandLogsPageSize(t *testing.T) {
	cfg := config.Default()
	cfg.FixtureDir = writeFixtures(t)
	request := writeRequest(t, `{"pageSize":5}`)

	var logs bytes.Buffer
	_, err := runQuery(context.Background(), &cfg, zerolog.New(&logs), "users", request, t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, logs.String(), `"total":3,"size":5`)
	assert.NotContains(t, logs.String(), `"returned"`)
}

func TestQueryCommandErrors(t *testing.T) {
	fixtures := writeFixtures(t)
	request := writeRequest(t, `{}`)

	cfg := config.Default()
	cfg.FixtureDir = fixtures

	_, err := runQuery(context.Background(), &cfg, zerolog.Nop(), "invoices", request, t.TempDir())
	require.EqualError(t, err, "entity invoices is not supported")

	_, err = runQuery(context.Background(), &cfg, zerolog.Nop(), "users", filepath.Join(t.TempDir(), "missing.json"), t.TempDir())
	require.ErrorContains(t, err, "failed to read request file")

	_, err = runQuery(context.Background(), &cfg, zerolog.Nop(), "users", writeRequest(t, `{"sortList":[{"field":"shoeSize"}]}`), t.TempDir())
	require.Error(t, err)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--env", filepath.Join(t.TempDir(), "missing.env"), "query", "--request", request})
	require.ErrorContains(t, cmd.Execute(), "failed to load env file")
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.FixtureDir = writeFixtures(t)
	cfg.HTTPAddr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, &cfg, zerolog.Nop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeFailsWithoutFixtures(t *testing.T) {
	cfg := config.Default()
	cfg.FixtureDir = t.TempDir()

	err := serve(context.Background(), &cfg, zerolog.Nop())
	require.ErrorContains(t, err, "failed to read fixture file")
}
