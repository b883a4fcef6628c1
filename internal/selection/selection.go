// Пакет selection — множество выбранных записей, привязанное к текущей
// странице списка. Смена страницы очищает множество, обновление той же
// страницы оставляет только видимые записи.
package selection

import "slices"

// PageKey — идентичность страницы списка.
type PageKey struct {
	Page int
	Size int
	Sort string
}

// Set — выбранные идентификаторы в порядке выбора.
// Не безопасен для конкурентного использования.
type Set struct {
	page  PageKey
	bound bool
	ids   []int64
}

// New создаёт пустое множество, не привязанное к странице.
func New() *Set {
	return &Set{}
}

// Page возвращает страницу, к которой привязано множество.
func (s *Set) Page() (PageKey, bool) {
	return s.page, s.bound
}

// Toggle переключает принадлежность id и возвращает новое состояние.
func (s *Set) Toggle(id int64) bool {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Contains сообщает, выбран ли id.
func (s *Set) Contains(id int64) bool {
	return slices.Contains(s.ids, id)
}

// IDs возвращает копию выбранных идентификаторов.
func (s *Set) IDs() []int64 {
	return slices.Clone(s.ids)
}

// Len возвращает число выбранных записей.
func (s *Set) Len() int {
	return len(s.ids)
}

// Clear очищает множество, сохраняя привязку к странице.
func (s *Set) Clear() {
	s.ids = nil
}

// Reconcile согласует множество с загруженной страницей.
// Другая страница (номер, размер или сортировка) очищает множество;
// та же страница оставляет только идентификаторы из visible.
// Возвращает true, если множество изменилось.
func (s *Set) Reconcile(page PageKey, visible []int64) bool {
	if !s.bound || s.page != page {
		changed := len(s.ids) > 0
		s.page = page
		s.bound = true
		s.ids = nil
		return changed
	}
	before := len(s.ids)
	s.ids = slices.DeleteFunc(s.ids, func(id int64) bool {
		return !slices.Contains(visible, id)
	})
	return len(s.ids) != before
}
