package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/prodplan/internal/apiclient"
	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/retention"
	"github.com/bigkaa/prodplan/internal/service"
	"github.com/bigkaa/prodplan/internal/ui/auth"
	uimiddleware "github.com/bigkaa/prodplan/internal/ui/middleware"
	"github.com/bigkaa/prodplan/internal/ui/state"
)

const (
	testToken    = "tok"
	testPageSize = 3
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockAPI — in-memory API производственного плана.
type mockAPI struct {
	mu       sync.Mutex
	token    string
	records  []model.VideoRecord
	patches  map[int64][]map[string]json.RawMessage
	failIDs  map[int64]int
	created  []map[string]json.RawMessage
	deleted  []int64
	listHits int
}

func fixtureRecords() []model.VideoRecord {
	return []model.VideoRecord{
		{
			ID: 1, CompilationName: "Alpha",
			Stage: model.StagePrep, Status: model.StatusEditing, Priority: model.PriorityHigh,
			Director: &model.Person{ID: 1, Name: "Dan"}, Editor: &model.Person{ID: 10, Name: "Ann"},
			Tests: []model.TestMeasurement{
				{Version: model.V1, RetentionTime: model.Retention30s, RetentionValue: model.NumericValue(40)},
				{Version: model.V2, RetentionTime: model.Retention30s, RetentionValue: model.NumericValue(55)},
			},
		},
		{
			ID: 2, CompilationName: "Beta", Editor: &model.Person{ID: 11, Name: "Bob"},
			Tests: []model.TestMeasurement{
				{Version: model.V3, RetentionTime: model.Retention30s, RetentionValue: model.NumericValue(70)},
			},
		},
		{ID: 3, CompilationName: "Gamma", Editor: &model.Person{ID: 10, Name: "Ann"}},
		{ID: 4, CompilationName: "Delta"},
	}
}

func newMockAPI(t *testing.T) (*mockAPI, *httptest.Server) {
	t.Helper()
	m := &mockAPI{
		token:   testToken,
		records: fixtureRecords(),
		patches: make(map[int64][]map[string]json.RawMessage),
		failIDs: make(map[int64]int),
	}
	server := httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(server.Close)
	return m, server
}

func (m *mockAPI) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.URL.Path == "/api/auth/login" {
		var req struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]string{"token": m.token})
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+m.token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case r.URL.Path == "/api/directors":
		writeJSON(w, []model.Person{{ID: 1, Name: "Dan"}, {ID: 2, Name: "Dora"}})
	case r.URL.Path == "/api/editors":
		writeJSON(w, []model.Person{{ID: 10, Name: "Ann"}, {ID: 11, Name: "Bob"}})
	case r.URL.Path == "/api/videos" && r.Method == http.MethodGet:
		m.list(w, r)
	case r.URL.Path == "/api/videos" && r.Method == http.MethodPost:
		var body map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		m.created = append(m.created, body)
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, model.VideoRecord{ID: 100, CompilationName: "created"})
	case strings.HasPrefix(r.URL.Path, "/api/videos/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/videos/"), 10, 64)
		m.item(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (m *mockAPI) list(w http.ResponseWriter, r *http.Request) {
	m.listHits++
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size < 1 {
		size = 10
	}
	from := min(page*size, len(m.records))
	to := min(from+size, len(m.records))
	writeJSON(w, model.VideoPage{
		Content: slices.Clone(m.records[from:to]),
		Page: model.PageInfo{
			Size:          size,
			Number:        page,
			TotalElements: int64(len(m.records)),
			TotalPages:    (len(m.records) + size - 1) / size,
		},
	})
}

func (m *mockAPI) item(w http.ResponseWriter, r *http.Request, id int64) {
	idx := slices.IndexFunc(m.records, func(rec model.VideoRecord) bool { return rec.ID == id })
	if idx < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		if status, fail := m.failIDs[id]; fail {
			w.WriteHeader(status)
			return
		}
		data, _ := io.ReadAll(r.Body)
		var body map[string]json.RawMessage
		_ = json.Unmarshal(data, &body)
		m.patches[id] = append(m.patches[id], body)
		if raw, ok := body["tests"]; ok {
			var tests []model.TestMeasurement
			_ = json.Unmarshal(raw, &tests)
			m.records[idx].Tests = tests
		}
		writeJSON(w, m.records[idx])
	case http.MethodDelete:
		m.deleted = append(m.deleted, id)
		m.records = slices.Delete(m.records, idx, idx+1)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (m *mockAPI) patchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.patches {
		n += len(p)
	}
	return n
}

func (m *mockAPI) lastPatch(id int64) map[string]json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.patches[id]
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// testEnv — UI-маршруты поверх mock API.
type testEnv struct {
	api    *mockAPI
	store  *state.Store
	sm     *auth.SessionManager
	router http.Handler
	cookie []*http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api, server := newMockAPI(t)
	logger := testLogger()

	client, err := apiclient.New(server.URL, "", 5*time.Second, nil, logger)
	if err != nil {
		t.Fatal(err)
	}
	dirs := service.NewDirectoryCache(client, time.Minute, logger)
	videos := service.NewVideoService(client, dirs, logger)

	sm, err := auth.NewSessionManager("test-key", false)
	if err != nil {
		t.Fatal(err)
	}
	store := state.NewStore(10, time.Hour, 3)
	uiAuth := uimiddleware.NewUIAuth(sm, store, logger)
	inspector, err := auth.NewTokenInspector("", "", logger)
	if err != nil {
		t.Fatal(err)
	}
	memo, err := retention.NewMemo(8)
	if err != nil {
		t.Fatal(err)
	}

	authH := NewAuthHandler(client, inspector, sm, store, uiAuth, logger)
	videosH := NewVideosHandler(videos, uiAuth, testPageSize, retention.DefaultKey, logger)
	retentionH := NewRetentionHandler(videos, memo, retention.DefaultKey, testPageSize, uiAuth, logger)

	r := chi.NewRouter()
	r.Get("/ui/login", authH.HandleLoginPage)
	r.Post("/ui/login", authH.HandleLogin)
	r.Post("/ui/logout", authH.HandleLogout)
	r.Post("/ui/set-language", HandleSetLanguage)
	r.Group(func(r chi.Router) {
		r.Use(uiAuth.Middleware())
		r.Get("/ui/videos", videosH.HandleList)
		r.Get("/ui/videos/new", videosH.HandleNew)
		r.Post("/ui/videos", videosH.HandleCreate)
		r.Get("/ui/videos/{id}/edit", videosH.HandleEdit)
		r.Post("/ui/videos/{id}", videosH.HandleUpdate)
		r.Post("/ui/videos/{id}/delete", videosH.HandleDelete)
		r.Get("/ui/videos/{id}/tests", videosH.HandleTests)
		r.Post("/ui/videos/{id}/tests", videosH.HandleTestsAction)
		r.Post("/ui/selection/toggle", videosH.HandleToggle)
		r.Post("/ui/selection/clear", videosH.HandleClear)
		r.Get("/ui/bulk", videosH.HandleBulkForm)
		r.Post("/ui/bulk", videosH.HandleBulkApply)
		r.Get("/ui/retention", retentionH.HandleReport)
	})

	return &testEnv{api: api, store: store, sm: sm, router: r}
}

// login создаёт сессию пользователя alice, минуя форму входа.
func (e *testEnv) login(t *testing.T) *state.Session {
	t.Helper()
	st := e.store.Create("sid", testToken, "alice")
	w := httptest.NewRecorder()
	if err := e.sm.SetSessionCookie(w, &auth.SessionData{SessionID: "sid", Token: testToken, Username: "alice"}); err != nil {
		t.Fatal(err)
	}
	e.cookie = w.Result().Cookies()
	return st
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(http.MethodGet, path, nil, nil)
}

func (e *testEnv) post(path string, form url.Values) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, path, form, nil)
}

func (e *testEnv) do(method, path string, form url.Values, header http.Header) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	for _, c := range e.cookie {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// editValues — форма редактирования записи 1 без изменений.
func editValues() url.Values {
	return url.Values{
		"compilationName": {"Alpha"},
		"filmingStart":    {""},
		"editStart":       {""},
		"stage":           {"PREP"},
		"status":          {"EDITING"},
		"priority":        {"HIGH"},
		"referenceLink":   {""},
		"comment":         {""},
		"director":        {"Dan"},
		"editor":          {"Ann"},
		"release1":        {""},
		"release2":        {""},
		"release3":        {""},
	}
}
