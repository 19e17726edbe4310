package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"substation/internal/api"
	"substation/internal/library"
	"substation/internal/logging"
)

type libraryStoreStub struct {
	items   []*library.Item
	history []*library.HistoryEntry
}

func (s *libraryStoreStub) ListWanted(context.Context) ([]*library.Item, error) {
	return s.items, nil
}

func (s *libraryStoreStub) History(context.Context, int) ([]*library.HistoryEntry, error) {
	return s.history, nil
}

func (s *libraryStoreStub) GetByID(context.Context, int64) (*library.Item, error) {
	if len(s.items) == 0 {
		return nil, nil
	}
	return s.items[0], nil
}

func TestAPIServerHandleWanted(t *testing.T) {
	store := &libraryStoreStub{items: []*library.Item{
		{ID: 1, Title: "Heat", Kind: library.KindMovie, MissingSubtitles: "['en']"},
	}}
	srv := &apiServer{librarySvc: api.NewLibraryService(store)}

	req := httptest.NewRequest(http.MethodGet, "/api/wanted", nil)
	w := httptest.NewRecorder()
	srv.handleWanted(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.WantedListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resp.Items))
	}
	if resp.Items[0].Title != "Heat" {
		t.Fatalf("unexpected title: %q", resp.Items[0].Title)
	}
}

func TestAPIServerHandleWantedRejectsPost(t *testing.T) {
	srv := &apiServer{librarySvc: api.NewLibraryService(&libraryStoreStub{})}

	req := httptest.NewRequest(http.MethodPost, "/api/wanted", nil)
	w := httptest.NewRecorder()
	srv.handleWanted(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestAPIServerHandleHistory(t *testing.T) {
	store := &libraryStoreStub{history: []*library.HistoryEntry{
		{ID: 9, ItemID: 1, Action: library.ActionDownloaded, Provider: "opensubtitles", Language: "en"},
	}}
	srv := &apiServer{librarySvc: api.NewLibraryService(store)}

	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=5", nil)
	w := httptest.NewRecorder()
	srv.handleHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Events) != 1 || resp.Events[0].Provider != "opensubtitles" {
		t.Fatalf("unexpected events: %+v", resp.Events)
	}
}

func TestAPIServerHandleHistoryRejectsBadLimit(t *testing.T) {
	srv := &apiServer{librarySvc: api.NewLibraryService(&libraryStoreStub{})}

	for _, limit := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/history?limit="+limit, nil)
		w := httptest.NewRecorder()
		srv.handleHistory(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("limit %q: expected 400, got %d", limit, w.Code)
		}
	}
}

func TestRequestLogAssignsRequestID(t *testing.T) {
	var handled bool
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handled = true
		w.WriteHeader(http.StatusTeapot)
	})

	handler := requestLog(logging.NewNop(), next)
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !handled {
		t.Fatal("expected wrapped handler to run")
	}
	if w.Code != http.StatusTeapot {
		t.Fatalf("expected status passthrough, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
}
