package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"usmtf_importer/internal/convert"
	"usmtf_importer/internal/messages"
	"usmtf_importer/internal/parser"
	"usmtf_importer/internal/sets"
	"usmtf_importer/internal/storage"
)

// fakeArchive records the last query and returns canned data.
type fakeArchive struct {
	imports []storage.Import
	last    storage.QueryParams
	err     error
}

func (f *fakeArchive) Save(context.Context, storage.Import) (int64, error) { return 0, nil }
func (f *fakeArchive) Close() error                                        { return nil }

func (f *fakeArchive) Query(_ context.Context, p storage.QueryParams) ([]storage.Import, error) {
	f.last = p
	return f.imports, f.err
}

func (f *fakeArchive) CountByType(context.Context) (map[string]int, error) {
	return map[string]int{"ACO": 2, "ATO": 1}, f.err
}

func (f *fakeArchive) TopIssues(_ context.Context, limit int) (map[string]uint64, error) {
	return map[string]uint64{"Too few points in POLYGON": uint64(limit)}, f.err
}

func newServer(t *testing.T, archive storage.Archive, keys ...string) http.Handler {
	t.Helper()
	records := sets.NewRegistry()
	if err := sets.Register(records); err != nil {
		t.Fatal(err)
	}
	msgs := messages.NewRegistry()
	messages.Register(msgs, records)
	return NewServer(archive, parser.New(records, msgs), nil, Config{APIKeys: keys}).Router()
}

func TestHealthEndpoint(t *testing.T) {
	router := newServer(t, &fakeArchive{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := newServer(t, &fakeArchive{}, "test-key-123", "another-key")

	tests := []struct {
		name       string
		path       string
		header     string
		value      string
		wantStatus int
	}{
		{"health is open", "/health", "", "", http.StatusOK},
		{"no key", "/imports", "", "", http.StatusUnauthorized},
		{"invalid key", "/imports", "X-API-Key", "wrong-key", http.StatusForbidden},
		{"valid key via X-API-Key", "/imports", "X-API-Key", "test-key-123", http.StatusOK},
		{"valid key via Bearer", "/imports", "Authorization", "Bearer another-key", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestImportsEndpoint(t *testing.T) {
	archive := &fakeArchive{imports: []storage.Import{{ID: 7, Path: "aco.txt", MessageType: "ACO", Valid: true}}}
	router := newServer(t, archive)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		want       storage.QueryParams
	}{
		{"defaults", "", http.StatusOK, storage.QueryParams{}},
		{"filters", "?type=aco&invalid=true&limit=5&path=%25blue%25", http.StatusOK,
			storage.QueryParams{MessageType: "ACO", InvalidOnly: true, Limit: 5, Path: "%blue%"}},
		{"bad limit", "?limit=zero", http.StatusBadRequest, storage.QueryParams{}},
		{"limit too large", "?limit=5000", http.StatusBadRequest, storage.QueryParams{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive.last = storage.QueryParams{}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/imports"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body)
			}
			if archive.last != tt.want {
				t.Errorf("query = %+v, want %+v", archive.last, tt.want)
			}
			if rec.Code != http.StatusOK {
				return
			}
			var imps []storage.Import
			if err := json.NewDecoder(rec.Body).Decode(&imps); err != nil {
				t.Fatal(err)
			}
			if len(imps) != 1 || imps[0].ID != 7 {
				t.Errorf("imports = %+v", imps)
			}
		})
	}
}

func TestImportsEndpointEmptyAndFailing(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(t, &fakeArchive{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/imports", nil))
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty archive body = %q", rec.Body)
	}

	rec = httptest.NewRecorder()
	newServer(t, &fakeArchive{err: errors.New("db gone")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/imports", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "db gone") {
		t.Errorf("got %d %s", rec.Code, rec.Body)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router := newServer(t, &fakeArchive{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/imports/stats?top=3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp StatsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ByType["ACO"] != 2 || resp.TopIssues["Too few points in POLYGON"] != 3 {
		t.Errorf("stats = %+v", resp)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/imports/stats?top=-1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestInspectEndpoint(t *testing.T) {
	router := newServer(t, &fakeArchive{})

	body := "EXER/BLUE FLAG 26//\nMSGID/ACO/CAOC/0001/FEB//\nACMID/ACM:ROZ/NAME:ROZ 1/CIRCLE/USE:ROZ//\n" +
		"CIRCLE/LATM:2037N05934E/10NM//\nEFFLEVEL/FLFL:FL250-FL290//\n"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/inspect?name=aco.txt", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var rep convert.Report
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatal(err)
	}
	if rep.Path != "aco.txt" || rep.MessageType != "ACO" || !rep.Valid || rep.Coverage.Registered != 5 {
		t.Errorf("report = %+v", rep)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/inspect", strings.NewReader("no main text")))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(t, &fakeArchive{}, "k").ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/imports", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("got %d %v", rec.Code, rec.Header())
	}
}
