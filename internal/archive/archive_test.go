package archive

import (
	"context"
	"database/sql"
	stderrors "errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/metrics/mocks"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewRepository(&DB{DB: sqlx.NewDb(sqlDB, "postgres")}), mock
}

var columns = []string{
	"id", "title", "target", "profile_name", "command", "hostnames", "hosts_up", "hosts_down",
	"scan_xml", "raw_output", "comments", "profile", "started_at", "created_at",
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "host=localhost port=5432 dbname=scandeck user= password= sslmode=disable", cfg.DSN())
}

func TestComments(t *testing.T) {
	t.Run("value of nil map is empty object", func(t *testing.T) {
		v, err := Comments(nil).Value()
		require.NoError(t, err)
		assert.Equal(t, []byte("{}"), v)
	})

	t.Run("scan bytes and strings", func(t *testing.T) {
		var c Comments
		require.NoError(t, c.Scan([]byte(`{"web01":"patched"}`)))
		assert.Equal(t, "patched", c["web01"])

		require.NoError(t, c.Scan(`{"db01":"legacy"}`))
		assert.Equal(t, Comments{"db01": "legacy"}, c)

		require.NoError(t, c.Scan(nil))
		assert.Empty(t, c)
	})

	t.Run("scan rejects other types", func(t *testing.T) {
		var c Comments
		assert.Error(t, c.Scan(42))
	})
}

func TestProfile(t *testing.T) {
	v, err := Profile{}.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)

	var p Profile
	require.NoError(t, p.Scan([]byte(`{"name":"Web sweep","command":"nmap -p 80 %s"}`)))
	assert.Equal(t, "Web sweep", p.Name)

	require.NoError(t, p.Scan(`{}`))
	assert.Empty(t, p.Name)
	require.NoError(t, p.Scan(nil))
	assert.Error(t, p.Scan(3.5))
}

func TestRepositorySave(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO scan_archive")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	entry := &Entry{
		Title:     "Quick Scan on 10.0.0.0/24",
		Target:    "10.0.0.0/24",
		Command:   "nmap -T4 -F 10.0.0.0/24",
		ScanXML:   []byte("<nmaprun/>"),
		Comments:  Comments{"web01": "check TLS"},
		StartedAt: created.Add(-time.Minute),
	}
	require.NoError(t, repo.Save(context.Background(), entry))

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, created, entry.CreatedAt)
	assert.NotNil(t, entry.Hostnames)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySaveExistingEntryUpdates(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	for _, comment := range []string{"first pass", "second pass"} {
		mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE SET")).
			WithArgs(id, "office sweep", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), Comments{"web01": comment}, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	}

	entry := &Entry{ID: id, Title: "office sweep", ScanXML: []byte("<nmaprun/>")}
	for _, comment := range []string{"first pass", "second pass"} {
		entry.Comments = Comments{"web01": comment}
		require.NoError(t, repo.Save(context.Background(), entry))
		assert.Equal(t, id, entry.ID, "re-archiving keeps the id")
		assert.Equal(t, created, entry.CreatedAt)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySaveUniqueViolation(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO scan_archive")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	err := repo.Save(context.Background(), &Entry{ID: uuid.New(), Title: "dup", ScanXML: []byte("x")})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConflict))
	assert.NotContains(t, err.Error(), "duplicate key")
}

func TestRepositoryGet(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	mock.ExpectQuery(regexp.QuoteMeta("FROM scan_archive WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			id.String(), "Scan on example.com", "example.com", "", "nmap example.com",
			"{example.com}", 1, 0, []byte("<nmaprun/>"), "Starting Nmap", `{"example.com":"prod"}`,
			`{"name":"Web sweep","command":"nmap -p 80,443 %s","hint":"web"}`, now, now,
		))

	entry, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, entry.ID)
	assert.Equal(t, pq.StringArray{"example.com"}, entry.Hostnames)
	assert.Equal(t, "prod", entry.Comments["example.com"])
	assert.Equal(t, []byte("<nmaprun/>"), entry.ScanXML)
	assert.Equal(t, Profile{Name: "Web sweep", Command: "nmap -p 80,443 %s", Hint: "web"}, entry.Profile)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM scan_archive WHERE id = $1")).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), id)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestRepositorySearch(t *testing.T) {
	tests := []struct {
		name        string
		term        string
		wantPattern string
	}{
		{"plain term", "web", "%web%"},
		{"escapes wildcards", "50%_off", `%50\%\_off%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			now := time.Now().UTC()

			mock.ExpectQuery(regexp.QuoteMeta("ILIKE $1")).
				WithArgs(tt.wantPattern, 5).
				WillReturnRows(sqlmock.NewRows(columns).AddRow(
					uuid.New().String(), "t", "web", "", "nmap web", "{}", 1, 0,
					[]byte("<nmaprun/>"), "", "{}", "{}", now, now,
				))

			entries, err := repo.Search(context.Background(), tt.term, 5)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepositorySearchEmptyTermLists(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $1")).
		WithArgs(defaultSearchLimit).
		WillReturnRows(sqlmock.NewRows(columns))

	entries, err := repo.Search(context.Background(), "   ", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryDelete(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scan_archive")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), id))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scan_archive")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Delete(context.Background(), id)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS scan_archive")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.EnsureSchema(context.Background()))

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS scan_archive")).
		WillReturnError(stderrors.New("permission denied for schema public"))
	err := repo.EnsureSchema(context.Background())
	assert.True(t, errors.IsCode(err, errors.CodeDatabaseQuery))
}

func TestRepositoryReportsQueries(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := mocks.NewMockRecorder(ctrl)

	repo, mock := newMockRepository(t)
	repo.WithRecorder(recorder)
	id := uuid.New()

	recorder.EXPECT().ArchiveQuery("get", gomock.Any(), false)
	mock.ExpectQuery(regexp.QuoteMeta("FROM scan_archive WHERE id = $1")).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)
	_, err := repo.Get(context.Background(), id)
	require.Error(t, err)

	recorder.EXPECT().ArchiveQuery("delete", gomock.Any(), true)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scan_archive")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), id))
}
