package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/railplan/copilot/internal/store"
)

type mockAuditReader struct {
	entries   []store.AuditEntry
	err       error
	lastLimit int
}

func (m *mockAuditReader) RecentAudit(_ context.Context, limit int) ([]store.AuditEntry, error) {
	m.lastLimit = limit
	return m.entries, m.err
}

func auditRouter(reader AuditReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	r := gin.New()
	h := NewAuditHandler(reader, log)
	r.GET("/api/audit", h.Recent)
	return r
}

func getAudit(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestAuditRecent(t *testing.T) {
	reader := &mockAuditReader{entries: []store.AuditEntry{
		{ID: 2, Event: "commit", ClientID: "c1", Summary: "Created vehicle pool \"Regio\""},
		{ID: 1, Event: "preview", ClientID: "c1"},
	}}
	r := auditRouter(reader)

	w := getAudit(t, r, "/api/audit?limit=10")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if reader.lastLimit != 10 {
		t.Errorf("limit = %d, want 10", reader.lastLimit)
	}
	var resp struct {
		Entries []store.AuditEntry `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Entries) != 2 || resp.Entries[0].Event != "commit" {
		t.Errorf("entries = %+v", resp.Entries)
	}
}

func TestAuditDefaultLimit(t *testing.T) {
	reader := &mockAuditReader{}
	r := auditRouter(reader)

	w := getAudit(t, r, "/api/audit")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if reader.lastLimit != 50 {
		t.Errorf("limit = %d, want 50", reader.lastLimit)
	}
	// No entries must still serialize as an empty array, not null.
	if !strings.Contains(w.Body.String(), `"entries":[]`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAuditInvalidLimit(t *testing.T) {
	r := auditRouter(&mockAuditReader{})

	for _, limit := range []string{"abc", "0", "-1", "9999"} {
		if w := getAudit(t, r, "/api/audit?limit="+limit); w.Code != http.StatusBadRequest {
			t.Errorf("limit %q: status = %d, want 400", limit, w.Code)
		}
	}
}

func TestAuditWithoutDatabase(t *testing.T) {
	r := auditRouter(nil)

	w := getAudit(t, r, "/api/audit")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), ErrCodeAuditUnavailable) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAuditQueryError(t *testing.T) {
	r := auditRouter(&mockAuditReader{err: errors.New("connection reset")})

	w := getAudit(t, r, "/api/audit")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
