package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/service"
)

// fakeAPI — минимальный REST API для команд CLI.
type fakeAPI struct {
	mu      sync.Mutex
	records []model.VideoRecord
	patches map[int64][]map[string]json.RawMessage
	fail    map[int64]bool
}

func newFakeAPI(t *testing.T) (*fakeAPI, string) {
	t.Helper()
	api := &fakeAPI{
		records: []model.VideoRecord{
			{
				ID: 1, CompilationName: "Alpha", Status: model.StatusEditing,
				Director: &model.Person{ID: 1, Name: "Dan"},
				Releases: []model.Release{{ReleaseDateTime: "2024-06-01T10:00", Part: 1}},
				Tests: []model.TestMeasurement{
					{Version: model.V1, RetentionTime: model.Retention30s, RetentionValue: model.NumericValue(40)},
					{Version: model.V2, RetentionTime: model.Retention30s, RetentionValue: model.NumericValue(55)},
				},
			},
			{ID: 2, CompilationName: "Beta"},
			{ID: 3, CompilationName: "Gamma"},
		},
		patches: make(map[int64][]map[string]json.RawMessage),
		fail:    make(map[int64]bool),
	}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv.URL
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if r.URL.Path == "/api/auth/login" {
		var req struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "cli-token"})
		return
	}
	if r.Header.Get("Authorization") != "Bearer cli-token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case r.URL.Path == "/api/directors":
		_ = json.NewEncoder(w).Encode([]model.Person{{ID: 1, Name: "Dan"}, {ID: 2, Name: "Dora"}})
	case r.URL.Path == "/api/editors":
		_ = json.NewEncoder(w).Encode([]model.Person{{ID: 10, Name: "Ann"}})
	case r.URL.Path == "/api/videos":
		_ = json.NewEncoder(w).Encode(model.VideoPage{
			Content: a.records,
			Page:    model.PageInfo{Size: 10, TotalElements: int64(len(a.records)), TotalPages: 1},
		})
	case strings.HasPrefix(r.URL.Path, "/api/videos/") && r.Method == http.MethodPatch:
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/videos/"), 10, 64)
		if a.fail[id] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var body map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		a.patches[id] = append(a.patches[id], body)
		w.WriteHeader(http.StatusNoContent)
	case strings.HasPrefix(r.URL.Path, "/api/videos/") && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (a *fakeAPI) patchKeys(id int64) [][]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([][]string, 0, len(a.patches[id]))
	for _, p := range a.patches[id] {
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		out = append(out, keys)
	}
	return out
}

// runCLI выполняет команду с изолированным файлом токена.
func runCLI(t *testing.T, apiURL, tokenFile, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api", apiURL, "--token-file", tokenFile, "--token", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func loggedIn(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("cli-token\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func requireContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("вывод не содержит %q:\n%s", want, out)
	}
}

func TestLogin_SavesToken(t *testing.T) {
	_, url := newFakeAPI(t)
	tokenFile := filepath.Join(t.TempDir(), "nested", "token")

	out, err := runCLI(t, url, tokenFile, "secret\n", "login", "-u", "alice")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	requireContains(t, out, "alice")

	data, err := os.ReadFile(tokenFile)
	if err != nil || strings.TrimSpace(string(data)) != "cli-token" {
		t.Fatalf("токен не сохранён: %q %v", data, err)
	}
	info, _ := os.Stat(tokenFile)
	if info.Mode().Perm() != 0o600 {
		t.Errorf("права файла токена = %v", info.Mode().Perm())
	}

	if _, err := runCLI(t, url, tokenFile, "wrong\n", "login", "-u", "alice"); err == nil {
		t.Error("неверный пароль должен давать ошибку")
	}
}

func TestCommands_RequireToken(t *testing.T) {
	_, url := newFakeAPI(t)
	_, err := runCLI(t, url, filepath.Join(t.TempDir(), "missing"), "", "videos", "list")
	if err == nil || !strings.Contains(err.Error(), "login") {
		t.Errorf("ожидалась подсказка выполнить login, получено %v", err)
	}
}

func TestVideosList(t *testing.T) {
	_, url := newFakeAPI(t)
	out, err := runCLI(t, url, loggedIn(t), "", "videos", "list")
	if err != nil {
		t.Fatalf("videos list: %v", err)
	}
	for _, want := range []string{"Alpha", "Beta", "Gamma", "Dan", "2024-06-01T10:00", "всего записей: 3"} {
		requireContains(t, out, want)
	}
}

func TestVideosEdit_SendsOnlyChanges(t *testing.T) {
	api, url := newFakeAPI(t)
	token := loggedIn(t)

	out, err := runCLI(t, url, token, "", "videos", "edit", "1", "--comment", "new cut", "--director", "Dan", "--clear-stage")
	if err != nil {
		t.Fatalf("videos edit: %v", err)
	}
	requireContains(t, out, "обновлена")
	// Режиссёр не изменился; очистка этапа отправляется всегда.
	if got := api.patchKeys(1); len(got) != 1 || !slices.Equal(got[0], []string{"clearStage", "comment"}) {
		t.Errorf("поля PATCH = %v", got)
	}
}

func TestVideosEdit_ReleaseSlotsKeepOthers(t *testing.T) {
	api, url := newFakeAPI(t)

	if _, err := runCLI(t, url, loggedIn(t), "", "videos", "edit", "1", "--release2", "2024-07-01T10:00"); err != nil {
		t.Fatalf("videos edit: %v", err)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	var releases []model.Release
	if err := json.Unmarshal(api.patches[1][0]["releases"], &releases); err != nil {
		t.Fatal(err)
	}
	want := []model.Release{{ReleaseDateTime: "2024-06-01T10:00", Part: 1}, {ReleaseDateTime: "2024-07-01T10:00", Part: 2}}
	if !slices.Equal(releases, want) {
		t.Errorf("releases = %v", releases)
	}
}

func TestVideosEdit_UnchangedReleaseSendsList(t *testing.T) {
	api, url := newFakeAPI(t)

	if _, err := runCLI(t, url, loggedIn(t), "", "videos", "edit", "1", "--release1", "2024-06-01T10:00"); err != nil {
		t.Fatalf("videos edit: %v", err)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.patches[1]) != 1 {
		t.Fatalf("ожидался один PATCH, получено %d", len(api.patches[1]))
	}
	var releases []model.Release
	if err := json.Unmarshal(api.patches[1][0]["releases"], &releases); err != nil {
		t.Fatal(err)
	}
	want := []model.Release{{ReleaseDateTime: "2024-06-01T10:00", Part: 1}}
	if !slices.Equal(releases, want) {
		t.Errorf("releases = %v", releases)
	}
}

func TestVideosEdit_UnknownDirector(t *testing.T) {
	api, url := newFakeAPI(t)

	_, err := runCLI(t, url, loggedIn(t), "", "videos", "edit", "1", "--director", "Ghost")
	if err == nil || !strings.Contains(err.Error(), "Ghost") {
		t.Fatalf("ожидалась ошибка разрешения имени, получено %v", err)
	}
	if len(api.patchKeys(1)) != 0 {
		t.Error("PATCH не должен отправляться")
	}
}

func TestBulkEdit_PartialFailure(t *testing.T) {
	api, url := newFakeAPI(t)
	api.fail[2] = true

	out, err := runCLI(t, url, loggedIn(t), "", "bulk-edit", "--ids", "1,2,3,3", "--status", "READY")
	if !errors.Is(err, service.ErrPartialBatch) {
		t.Fatalf("ожидалась ErrPartialBatch, получено %v", err)
	}
	requireContains(t, out, "2 из 3")
	requireContains(t, out, "  2: ")
	for _, id := range []int64{1, 3} {
		if got := api.patchKeys(id); len(got) != 1 || !slices.Equal(got[0], []string{"status"}) {
			t.Errorf("PATCH %d = %v", id, got)
		}
	}
}

func TestBulkEdit_NoFields(t *testing.T) {
	_, url := newFakeAPI(t)
	if _, err := runCLI(t, url, loggedIn(t), "", "bulk-edit", "--ids", "1"); err == nil {
		t.Error("без полей команда должна завершаться ошибкой")
	}
}

func TestTestsShowAndSet(t *testing.T) {
	api, url := newFakeAPI(t)
	token := loggedIn(t)

	out, err := runCLI(t, url, token, "", "tests", "show", "1")
	if err != nil {
		t.Fatalf("tests show: %v", err)
	}
	requireContains(t, out, "Лучшая версия в 30s: V2")

	if _, err := runCLI(t, url, token, "", "tests", "set", "2", "--row", "v1:30s=42", "--row", "V3:3s=7.5"); err != nil {
		t.Fatalf("tests set: %v", err)
	}
	api.mu.Lock()
	got := string(api.patches[2][0]["tests"])
	api.mu.Unlock()
	want := `[{"version":"V1","retentionTime":"30s","retentionValue":42},{"version":"V3","retentionTime":"3s","retentionValue":7.5}]`
	if got != want {
		t.Errorf("tests = %s", got)
	}

	if _, err := runCLI(t, url, token, "", "tests", "set", "2", "--row", "V1:30s=abc"); err == nil {
		t.Error("нечисловое значение должно отклоняться")
	}
}

func TestRetention(t *testing.T) {
	_, url := newFakeAPI(t)
	out, err := runCLI(t, url, loggedIn(t), "", "retention")
	if err != nil {
		t.Fatalf("retention: %v", err)
	}
	requireContains(t, out, "*55")
	requireContains(t, out, "—")

	if _, err := runCLI(t, url, loggedIn(t), "", "retention", "--rt", "60s"); err == nil {
		t.Error("недопустимый момент должен отклоняться")
	}
}
