package diff

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bigkaa/prodplan/internal/domain/model"
)

// TestComputeBulkUpdate проверяет правила массового редактирования.
func TestComputeBulkUpdate(t *testing.T) {
	tests := []struct {
		name   string
		values BulkValues
		want   UpdatePayload
	}{
		{
			name:   "пустая форма",
			values: BulkValues{},
			want:   UpdatePayload{},
		},
		{
			name: "пустые введённые значения пропускаются",
			values: BulkValues{
				Stage:   model.Present(model.Stage("")),
				Comment: model.Present(""),
			},
			want: UpdatePayload{},
		},
		{
			name: "заполненные поля отправляются",
			values: BulkValues{
				Stage:    model.Present(model.StageFilming),
				Priority: model.Present(model.PriorityHigh),
				Director: model.Present("Bob"),
			},
			want: UpdatePayload{
				Stage:      ptr(model.StageFilming),
				Priority:   ptr(model.PriorityHigh),
				DirectorID: ptr(int64(43)),
			},
		},
		{
			name: "флажки очистки",
			values: BulkValues{
				FilmingStart:  model.Cleared[string](),
				ReferenceLink: model.Cleared[string](),
				Editor:        model.Cleared[string](),
			},
			want: UpdatePayload{
				ClearFilmingStart:  true,
				ClearReferenceLink: true,
				ClearEditor:        true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeBulkUpdate(tt.values, testDirectory())
			if err != nil {
				t.Fatalf("неожиданная ошибка: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("тело отличается (-want +got):\n%s", diff)
			}
		})
	}
}

// TestComputeBulkUpdateUnknownEditor проверяет блокировку при неизвестном имени.
func TestComputeBulkUpdateUnknownEditor(t *testing.T) {
	_, err := ComputeBulkUpdate(BulkValues{Editor: model.Present("Nobody")}, testDirectory())
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("ожидалась ErrResolution, получено %v", err)
	}
}

// TestBuildCreate проверяет формирование тела создания записи.
func TestBuildCreate(t *testing.T) {
	req := BuildCreate(CreateValues{
		CompilationName: " New ",
		Stage:           model.Present(model.StagePrep),
		ReferenceLink:   "http://",
		Comment:         "ok!",
	})
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("ошибка сериализации: %v", err)
	}
	want := `{"compilationName":"New","filmingStart":"","editStart":"","stage":"PREP"}`
	if string(data) != want {
		t.Errorf("ожидалось %s, получено %s", want, data)
	}

	req = BuildCreate(CreateValues{
		CompilationName: "New",
		ReferenceLink:   "https://example.com",
		Comment:         "long enough",
	})
	if req.ReferenceLink == nil || *req.ReferenceLink != "https://example.com" {
		t.Errorf("ссылка должна быть отправлена: %v", req.ReferenceLink)
	}
	if req.Comment == nil || *req.Comment != "long enough" {
		t.Errorf("комментарий должен быть отправлен: %v", req.Comment)
	}
}

// TestTestsUpdate проверяет, что пустой список тестов сериализуется как [].
func TestTestsUpdate(t *testing.T) {
	data, err := json.Marshal(TestsUpdate(nil))
	if err != nil {
		t.Fatalf("ошибка сериализации: %v", err)
	}
	if string(data) != `{"tests":[]}` {
		t.Errorf("неверная сериализация: %s", data)
	}
}
