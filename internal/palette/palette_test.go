package palette

import "testing"

// TestAssignerFirstSeenOrder проверяет порядок назначения и цикличность палитры.
func TestAssignerFirstSeenOrder(t *testing.T) {
	a := NewAssigner(3)
	names := []string{"Eve", "Bob", "Eve", "Kim", "Lee", "Bob"}
	want := []string{"editor-color-0", "editor-color-1", "editor-color-0", "editor-color-2", "editor-color-0", "editor-color-1"}

	for i, name := range names {
		if got := a.Class(name); got != want[i] {
			t.Errorf("Class(%q) = %q, ожидалось %q", name, got, want[i])
		}
	}
	if a.Len() != 4 {
		t.Errorf("ожидалось 4 имени, получено %d", a.Len())
	}
}

// TestAssignerEmptyName проверяет нейтральный класс для строки без монтажёра.
func TestAssignerEmptyName(t *testing.T) {
	a := NewAssigner(5)
	if got := a.Class(""); got != NeutralClass {
		t.Errorf("ожидался %q, получено %q", NeutralClass, got)
	}
	if a.Len() != 0 {
		t.Error("пустое имя не должно занимать цвет")
	}
}

// TestAssignerInvalidSize проверяет защиту от нулевого размера палитры.
func TestAssignerInvalidSize(t *testing.T) {
	a := NewAssigner(0)
	if a.Class("x") != "editor-color-0" || a.Class("y") != "editor-color-0" {
		t.Error("при размере палитры 1 все имена получают цвет 0")
	}
}
