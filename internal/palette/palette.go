// Пакет palette — назначение цветов монтажёрам в пределах сессии.
// Цвет выдаётся в порядке первого появления имени, по кругу.
package palette

import "strconv"

// NeutralClass — CSS-класс строки без монтажёра.
const NeutralClass = "editor-color"

// Assigner — таблица «имя → индекс цвета». Не безопасен для конкурентного использования.
type Assigner struct {
	size   int
	next   int
	byName map[string]int
}

// NewAssigner создаёт таблицу для палитры из size цветов.
func NewAssigner(size int) *Assigner {
	if size < 1 {
		size = 1
	}
	return &Assigner{size: size, byName: make(map[string]int)}
}

// Index возвращает индекс цвета для имени. Пустое имя цвета не получает.
func (a *Assigner) Index(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	if i, ok := a.byName[name]; ok {
		return i, true
	}
	i := a.next % a.size
	a.byName[name] = i
	a.next++
	return i, true
}

// Class возвращает CSS-класс строки для имени монтажёра.
func (a *Assigner) Class(name string) string {
	i, ok := a.Index(name)
	if !ok {
		return NeutralClass
	}
	return NeutralClass + "-" + strconv.Itoa(i)
}

// Len возвращает число имён, получивших цвет.
func (a *Assigner) Len() int {
	return len(a.byName)
}
