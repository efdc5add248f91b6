package editor

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
	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/internal/versions"
)

func newTestHandlers(t *testing.T) (*Handlers, *session.Session, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := versions.NewStore(filepath.Join(dir, "versions"), 10)
	require.NoError(t, err)

	sess := session.New(store)

	docPath := filepath.Join(dir, "budget.csv")
	require.NoError(t, os.WriteFile(docPath, []byte("item,amount\nrent,1200\nfood,300\n"), 0o644))

	h := NewHandlers(sess, notifier.New(), slog.New(slog.DiscardHandler))
	return h, sess, docPath
}

func newTestRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Group(h.Routes)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) DocumentState {
	t.Helper()

	var st DocumentState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	return st
}

func TestGetDocument_NothingOpen(t *testing.T) {
	h, _, _ := newTestHandlers(t)
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodGet, "/document", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeState(t, rec)
	assert.False(t, st.Open)
	assert.False(t, st.CanUndo)
}

func TestOpenDocument(t *testing.T) {
	h, _, docPath := newTestHandlers(t)
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/document/open", map[string]string{"path": docPath})

	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeState(t, rec)
	assert.True(t, st.Open)
	assert.Equal(t, []string{"item", "amount"}, st.Columns)
	assert.Len(t, st.Rows, 2)
	assert.False(t, st.Dirty)
}

func TestOpenDocument_MissingPath(t *testing.T) {
	h, _, _ := newTestHandlers(t)
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/document/open", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpenDocument_MissingFile(t *testing.T) {
	h, _, _ := newTestHandlers(t)
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/document/open", map[string]string{"path": "/does/not/exist.csv"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSetCell(t *testing.T) {
	h, _, docPath := newTestHandlers(t)
	router := newTestRouter(h)
	doJSON(t, router, http.MethodPost, "/document/open", map[string]string{"path": docPath})

	rec := doJSON(t, router, http.MethodPost, "/cells", map[string]any{"row": 0, "col": 1, "value": "1250"})

	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeState(t, rec)
	assert.Equal(t, "1250", st.Rows[0][1])
	assert.True(t, st.Dirty)
	assert.True(t, st.CanUndo)
	assert.Equal(t, []string{"edit cell"}, st.UndoStack)
}

func TestSetCell_OutOfRange(t *testing.T) {
	h, _, docPath := newTestHandlers(t)
	router := newTestRouter(h)
	doJSON(t, router, http.MethodPost, "/document/open", map[string]string{"path": docPath})

	rec := doJSON(t, router, http.MethodPost, "/cells", map[string]any{"row": 99, "col": 0, "value": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSetCell_NoDocumentIsConflict(t *testing.T) {
	h, _, _ := newTestHandlers(t)
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/cells", map[string]any{"row": 0, "col": 0, "value": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRowOperations(t *testing.T) {
	h, _, docPath := newTestHandlers(t)
	router := newTestRouter(h)
	doJSON(t, router, http.MethodPost, "/document/open", map[string]string{"path": docPath})

	rec := doJSON(t, router, http.MethodPost, "/rows", map[string]any{"values": []string{"transport", "80"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeState(t, rec).Rows, 3)

	rec = doJSON(t, router, http.MethodDelete, "/rows/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeState(t, rec)
	assert.Len(t, st.Rows, 2)
	assert.Equal(t, "food", st.Rows[0][0])
}

func TestDeleteRow_BadIndex(t *testing.T) {
	h, _, docPath := newTestHandlers(t)
	router := newTestRouter(h)
	doJSON(t, router, http.MethodPost, "/document/open", map[string]string{"path": docPath})

	rec := doJSON(t, router, http.MethodDelete, "/rows/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestColumnOperations(t *testing.T) {
	h, _, docPath := newTestHandlers(t)
	router := newTestRouter(h)
	doJSON(t, router, http.MethodPost, "/document/open", map[string]string{"path": docPath})

	rec := doJSON(t, router, http.MethodPost, "/columns", map[string]string{"name": "notes", "default": "-"})
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeState(t, rec)
	assert.Equal(t, []string{"item", "amount", "notes"}, st.Columns)
	assert.Equal(t, "-", st.Rows[0][2])

	rec = doJSON(t, router, http.MethodDelete, "/columns/notes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"item", "amount"}, decodeState(t, rec).Columns)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	h, _, docPath := newTestHandlers(t)
	router := newTestRouter(h)
	doJSON(t, router, http.MethodPost, "/document/open", map[string]string{"path": docPath})
	doJSON(t, router, http.MethodPost, "/cells", map[string]any{"row": 0, "col": 1, "value": "1250"})

	rec := doJSON(t, router, http.MethodPost, "/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeState(t, rec)
	assert.Equal(t, "1200", st.Rows[0][1])
	assert.True(t, st.CanRedo)

	rec = doJSON(t, router, http.MethodPost, "/redo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st = decodeState(t, rec)
	assert.Equal(t, "1250", st.Rows[0][1])
	assert.False(t, st.CanRedo)
}

func TestUndo_EmptyHistoryIsNoOp(t *testing.T) {
	h, _, docPath := newTestHandlers(t)
	router := newTestRouter(h)
	doJSON(t, router, http.MethodPost, "/document/open", map[string]string{"path": docPath})

	rec := doJSON(t, router, http.MethodPost, "/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1200", decodeState(t, rec).Rows[0][1])
}

func TestSaveDocument(t *testing.T) {
	h, _, docPath := newTestHandlers(t)
	router := newTestRouter(h)
	doJSON(t, router, http.MethodPost, "/document/open", map[string]string{"path": docPath})
	doJSON(t, router, http.MethodPost, "/cells", map[string]any{"row": 0, "col": 1, "value": "999"})

	rec := doJSON(t, router, http.MethodPost, "/document/save", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeState(t, rec).Dirty)

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rent,999")
}

func TestSaveDocument_NothingOpen(t *testing.T) {
	h, _, _ := newTestHandlers(t)
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/document/save", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMutationsBroadcast(t *testing.T) {
	h, _, docPath := newTestHandlers(t)
	router := newTestRouter(h)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	doJSON(t, router, http.MethodPost, "/document/open", map[string]string{"path": docPath})

	select {
	case <-updates:
	default:
		t.Fatal("expected a notifier ping after opening a document")
	}
}
