package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanteonNL/querykit/cmd/querykit/specs"
	"github.com/SanteonNL/querykit/models/identity"
	"github.com/SanteonNL/querykit/query/spec"
	"github.com/SanteonNL/querykit/query/types"
)

var created = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func TestFixtureSource(t *testing.T) {
	dir := t.TempDir()
	fixture := `[
		{"id": 1, "firstName": "Alice", "age": 25, "isActive": true, "role": "admin", "balance": "10.50"},
		{"id": 2, "firstName": "Bob", "age": 30, "role": "member", "nickname": "bobby"}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(fixture), 0o600))

	src, err := NewFixtureSource[identity.User](dir, "users", zerolog.Nop())
	require.NoError(t, err)

	users, err := Sequence[identity.User](src).List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, identity.RoleAdmin, users[0].Role)
	assert.Equal(t, "10.5", users[0].Balance.String())
	assert.Nil(t, users[0].Nickname)
	require.NotNil(t, users[1].Nickname)
	assert.Equal(t, "bobby", *users[1].Nickname)

	_, err = NewFixtureSource[identity.User](dir, "teams", zerolog.Nop())
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600))
	_, err = NewFixtureSource[identity.User](dir, "broken", zerolog.Nop())
	require.ErrorContains(t, err, "failed to decode fixture file")
}

func TestQueryStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users_all.sql"), []byte("SELECT * FROM users"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "teams.sql"), []byte("SELECT * FROM teams"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a query"), 0o600))

	store := NewQueryStore(zerolog.Nop())
	require.NoError(t, store.LoadQueryDirectory(dir))

	q, err := store.GetQuery("users")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users", q)

	_, err = store.GetQuery("README")
	require.Error(t, err)

	require.Error(t, store.LoadQueryDirectory(filepath.Join(dir, "missing")))
	assert.Equal(t, "users", EntityFromFile("/queries/Users_Active.sql"))
}

func TestSQLSource(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	const query = "SELECT id, first_name, last_name, email, nickname, age, login_count, balance, created_at, is_active, role, team_id FROM users"
	store := NewQueryStore(zerolog.Nop())
	store.Set("users", query)

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "nickname", "age", "login_count", "balance", "created_at", "is_active", "role", "team_id"}).
		AddRow(int64(1), "Alice", "Smith", "alice@example.com", nil, int64(25), int64(3), "10.50", created, true, "admin", int64(7)).
		AddRow(int64(2), "Bob", "Jones", "bob@example.com", "bobby", int64(30), int64(0), "0", created, false, "member", nil)
	mock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnRows(rows)

	src := NewSQLSource[identity.User](sqlx.NewDb(db, "postgres"), store, "users", zerolog.Nop())
	users, err := src.Load(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "Alice", users[0].FirstName)
	assert.Equal(t, int32(25), users[0].Age)
	assert.Equal(t, uint32(3), users[0].LoginCount)
	assert.Equal(t, identity.RoleAdmin, users[0].Role)
	require.NotNil(t, users[0].TeamID)
	assert.Equal(t, int64(7), *users[0].TeamID)
	assert.Nil(t, users[1].TeamID)
	require.NotNil(t, users[1].Nickname)
	assert.Equal(t, "bobby", *users[1].Nickname)

	require.NoError(t, mock.ExpectationsWereMet())
}

const (
	usersQuery = "SELECT id, first_name, last_name, role, team_id FROM users"
	teamsQuery = "SELECT id, name, plan FROM teams"
)

func userTeamSource(t *testing.T) (*SQLSource[identity.User], sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewQueryStore(zerolog.Nop())
	store.Set("users", usersQuery)
	store.Set("teams", teamsQuery)

	mock.ExpectQuery(regexp.QuoteMeta(usersQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "role", "team_id"}).
			AddRow(int64(1), "Alice", "Smith", "admin", int64(7)).
			AddRow(int64(2), "Bob", "Jones", "member", int64(8)).
			AddRow(int64(3), "Charlie", "Brown", "member", nil))
	mock.ExpectQuery(regexp.QuoteMeta(teamsQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "plan"}).
			AddRow(int64(7), "Growth", int64(2)).
			AddRow(int64(8), "Core", int64(0)))

	src := NewSQLSource[identity.User](sqlx.NewDb(db, "postgres"), store, "users", zerolog.Nop()).
		WithRelation("Team", UserTeams(store))
	return src, mock
}

func TestSQLSourceLoadsTeams(t *testing.T) {
	src, mock := userTeamSource(t)

	users, err := src.Load(context.Background(), []string{"team"})
	require.NoError(t, err)
	require.Len(t, users, 3)
	require.NotNil(t, users[0].Team)
	assert.Equal(t, "Growth", users[0].Team.Name)
	assert.Equal(t, identity.PlanPro, users[0].Team.Plan)
	require.NotNil(t, users[1].Team)
	assert.Equal(t, "Core", users[1].Team.Name)
	assert.Nil(t, users[2].Team)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSourceFiltersOnTeamFields(t *testing.T) {
	src, mock := userTeamSource(t)

	s, err := specs.PagedUsers(types.PagedRequest{
		FilterList: []types.FilterRequest{{Field: "teamName", FilterType: types.Equals, FilterValue: "growth"}},
	})
	require.NoError(t, err)

	users, err := spec.List(context.Background(), Sequence[identity.User](src), s)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].FirstName)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSourceRejectsUnknownRelation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewQueryStore(zerolog.Nop())
	store.Set("teams", teamsQuery)

	src := NewSQLSource[identity.Team](sqlx.NewDb(db, "postgres"), store, "teams", zerolog.Nop())
	_, err = src.Load(context.Background(), []string{"Owner"})
	require.EqualError(t, err, "sql source for teams cannot load relation Owner")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSourceErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewQueryStore(zerolog.Nop())
	src := NewSQLSource[identity.User](sqlx.NewDb(db, "postgres"), store, "users", zerolog.Nop())

	_, err = src.Load(context.Background(), nil)
	require.ErrorContains(t, err, "no query found")

	store.Set("users", "SELECT * FROM users")
	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)
	_, err = src.Load(context.Background(), nil)
	require.ErrorIs(t, err, assert.AnError)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSourcePreloadsIncludes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gdb, err := OpenGorm(db)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "age", "balance", "created_at", "is_active", "role", "team_id"}).
			AddRow(int64(1), "Alice", int64(25), "10.50", created, true, "admin", int64(7)))
	mock.ExpectQuery(`SELECT \* FROM "teams"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "plan", "seat_limit", "monthly_fee", "created_at"}).
			AddRow(int64(7), "Core", int64(2), int64(10), "99.00", created))

	src := NewGormSource[identity.User](gdb, zerolog.Nop())
	users, err := src.Load(context.Background(), []string{"Team"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].FirstName)
	require.NotNil(t, users[0].Team)
	assert.Equal(t, "Core", users[0].Team.Name)
	assert.Equal(t, identity.PlanPro, users[0].Team.Plan)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSourceWithoutIncludes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gdb, err := OpenGorm(db)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "teams"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "plan"}).
			AddRow(int64(1), "Core", int64(0)).
			AddRow(int64(2), "Edge", int64(3)))

	teams, err := NewGormSource[identity.Team](gdb, zerolog.Nop()).Load(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, identity.PlanEnterprise, teams[1].Plan)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewGormSource[identity.Team](gdb, zerolog.Nop()).Load(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoteSource(t *testing.T) {
	var include string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/teams", r.URL.Path)
		include = r.URL.Query().Get("include")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Core", "plan": "pro", "monthlyFee": "12.5"}]`))
	}))
	defer server.Close()

	src := NewRemoteSource[identity.Team](server.URL+"/v1/", "teams", 0, zerolog.Nop())
	teams, err := src.Load(context.Background(), []string{"Owner", "Members"})
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, identity.PlanPro, teams[0].Plan)
	assert.Equal(t, "Owner,Members", include)
}

func TestRemoteSourceRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	src := NewRemoteSource[identity.Team](server.URL, "teams", 3, zerolog.Nop())
	teams, err := src.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, teams)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRemoteSourceStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such entity", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewRemoteSource[identity.Team](server.URL, "teams", 0, zerolog.Nop()).Load(context.Background(), nil)
	require.ErrorContains(t, err, "upstream returned 404 for teams: no such entity")
}
