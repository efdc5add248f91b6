package history

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/internal/session"
	"github.com/leapstack-labs/leapgrid/internal/state"
	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/internal/versions"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

type fixture struct {
	handlers *Handlers
	router   http.Handler
	sess     *session.Session
	saver    *versions.AutoSaver
	state    *state.SQLiteStore
	docPath  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	store, err := versions.NewStore(filepath.Join(dir, "versions"), 10)
	require.NoError(t, err)

	sess := session.New(store)

	stateStore := state.NewSQLiteStore()
	require.NoError(t, stateStore.Open(":memory:"))
	t.Cleanup(func() { _ = stateStore.Close() })
	require.NoError(t, stateStore.Migrate())

	saver := versions.NewAutoSaver(store, sess, core.DefaultAutoSaveSettings(), versions.WithAuditStore(stateStore))

	docPath := filepath.Join(dir, "budget.csv")
	require.NoError(t, os.WriteFile(docPath, []byte("item,amount\nrent,1200\n"), 0o644))
	require.NoError(t, sess.Open(docPath))

	h := NewHandlers(sess, saver, stateStore, notifier.New(), slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	r.Group(h.Routes)

	return &fixture{handlers: h, router: r, sess: sess, saver: saver, state: stateStore, docPath: docPath}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestListVersions_EmptyStore(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/versions", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var records []core.VersionRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Empty(t, records)
}

func TestSaveVersionThenList(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/versions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved core.VersionRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Contains(t, saved.FileName, "budget_v")

	rec = f.do(t, http.MethodGet, "/versions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []core.VersionRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, saved.FileName, records[0].FileName)
}

func TestRestoreVersion(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/versions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var saved core.VersionRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))

	require.NoError(t, f.sess.Apply("edit cell", func(doc *core.Document) error {
		return doc.SetCell(0, 1, "9999")
	}))

	rec = f.do(t, http.MethodPost, "/versions/"+saved.FileName+"/restore", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := f.sess.Snapshot()
	assert.Equal(t, "1200", doc.Rows[0][1])
	assert.Equal(t, f.docPath, doc.BoundPath)
	assert.True(t, f.sess.CanUndo(), "restore should be undoable")
}

func TestRestoreVersion_Unknown(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/versions/budget_v20990101_000000.csv/restore", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteVersion(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/versions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var saved core.VersionRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))

	rec = f.do(t, http.MethodDelete, "/versions/"+saved.FileName, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	records, err := f.sess.Versions()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGetAutoSave_Defaults(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/autosave", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var settings core.AutoSaveSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, core.DefaultAutoSaveSettings(), settings)
}

func TestSetAutoSave_ConfiguresSaverAndPersists(t *testing.T) {
	f := newFixture(t)

	want := core.AutoSaveSettings{Enabled: true, IntervalMinutes: 10, KeepVersions: 20}
	rec := f.do(t, http.MethodPut, "/autosave", want)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, want, f.saver.Settings())

	persisted, err := f.state.LoadAutoSave()
	require.NoError(t, err)
	assert.Equal(t, want, persisted)
}

func TestSetAutoSave_RejectsOutOfRange(t *testing.T) {
	f := newFixture(t)

	bad := core.AutoSaveSettings{Enabled: true, IntervalMinutes: 0, KeepVersions: 20}
	rec := f.do(t, http.MethodPut, "/autosave", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	assert.Equal(t, core.DefaultAutoSaveSettings(), f.saver.Settings())
}

func TestListEvents(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.sess.Apply("edit cell", func(doc *core.Document) error {
		return doc.SetCell(0, 1, "1300")
	}))
	f.saver.Tick()

	rec := f.do(t, http.MethodGet, "/autosave/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var events []core.AutoSaveEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, core.AutoSaveStatusSaved, events[0].Status)
	assert.Equal(t, f.docPath, events[0].DocumentPath)
}

func TestListEvents_BadLimit(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/autosave/events?limit=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
