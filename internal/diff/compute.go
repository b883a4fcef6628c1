package diff

import (
	"errors"
	"slices"

	"github.com/bigkaa/prodplan/internal/domain/model"
)

// Directory — справочники режиссёров и монтажёров для разрешения имён.
type Directory struct {
	Directors []model.Person
	Editors   []model.Person
}

// Director ищет режиссёра по точному совпадению имени.
func (d Directory) Director(name string) (model.Person, bool) {
	return lookup(d.Directors, name)
}

// Editor ищет монтажёра по точному совпадению имени.
func (d Directory) Editor(name string) (model.Person, bool) {
	return lookup(d.Editors, name)
}

func lookup(people []model.Person, name string) (model.Person, bool) {
	i := slices.IndexFunc(people, func(p model.Person) bool { return p.Name == name })
	if i < 0 {
		return model.Person{}, false
	}
	return people[i], true
}

// EditValues — значения формы редактирования одной записи.
// Releases[i] соответствует части i+1.
type EditValues struct {
	CompilationName model.Field[string]
	FilmingStart    model.Field[string]
	EditStart       model.Field[string]
	Releases        [model.MaxReleases]model.Field[string]
	Stage           model.Field[model.Stage]
	Status          model.Field[model.Status]
	Priority        model.Field[model.Priority]
	ReferenceLink   model.Field[string]
	Comment         model.Field[string]
	Director        model.Field[string]
	Editor          model.Field[string]
}

// ComputeUpdate сравнивает форму с исходной записью и возвращает минимальное
// тело PATCH. Если имя режиссёра или монтажёра не разрешилось, возвращается
// ошибка и тело отправлять нельзя.
func ComputeUpdate(original *model.VideoRecord, edited EditValues, dir Directory) (UpdatePayload, error) {
	var p UpdatePayload

	p.CompilationName, p.ClearCompilationName = scalar(edited.CompilationName, original.CompilationName)
	p.FilmingStart, p.ClearFilmingStart = scalar(edited.FilmingStart, original.FilmingStart)
	p.EditStart, p.ClearEditStart = scalar(edited.EditStart, original.EditStart)
	p.Status, p.ClearStatus = scalar(edited.Status, original.Status)
	p.ReferenceLink, p.ClearReferenceLink = scalar(edited.ReferenceLink, original.ReferenceLink)
	p.Comment, p.ClearComment = scalar(edited.Comment, original.Comment)

	// Для этапа и приоритета очистка отправляется всегда,
	// даже если исходное значение уже пустое.
	p.Stage, p.ClearStage = strict(edited.Stage, original.Stage)
	p.Priority, p.ClearPriority = strict(edited.Priority, original.Priority)

	p.Releases = releases(edited.Releases, original)

	var errs []error
	var err error
	p.DirectorID, p.ClearDirector, err = person(FieldDirector, edited.Director, original.DirectorName(), dir.Director)
	errs = append(errs, err)
	p.EditorID, p.ClearEditor, err = person(FieldEditor, edited.Editor, original.EditorName(), dir.Editor)
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		return UpdatePayload{}, err
	}
	return p, nil
}

// scalar применяет общее правило: значение отправляется при изменении,
// очистка — только если исходное значение было непустым.
func scalar[T comparable](edited model.Field[T], original T) (*T, bool) {
	var zero T
	if edited.IsAbsent() {
		return nil, false
	}
	v, ok := edited.Value()
	if !ok || v == zero {
		return nil, original != zero
	}
	if v == original {
		return nil, false
	}
	return &v, false
}

// strict отличается от scalar тем, что очистка отправляется безусловно.
func strict[T comparable](edited model.Field[T], original T) (*T, bool) {
	var zero T
	if edited.IsAbsent() {
		return nil, false
	}
	v, ok := edited.Value()
	if !ok || v == zero {
		return nil, true
	}
	if v == original {
		return nil, false
	}
	return &v, false
}

// releases собирает список релизов из слотов формы. Номер части равен
// номеру слота. Если заполнен хотя бы один слот, отправляется весь список,
// даже совпадающий с исходным. Пустой список — только если у записи были релизы.
func releases(slots [model.MaxReleases]model.Field[string], original *model.VideoRecord) *[]model.Release {
	submitted := false
	list := make([]model.Release, 0, model.MaxReleases)
	for i, slot := range slots {
		if slot.IsAbsent() {
			continue
		}
		submitted = true
		if v, ok := slot.Value(); ok && v != "" {
			list = append(list, model.Release{ReleaseDateTime: v, Part: i + 1})
		}
	}
	if !submitted {
		return nil
	}
	if len(list) == 0 && len(original.Releases) == 0 {
		return nil
	}
	return &list
}

// person разрешает имя режиссёра или монтажёра. Сравнение идёт по имени,
// идентификатор берётся из справочника только при изменении.
func person(field string, edited model.Field[string], originalName string, resolve func(string) (model.Person, bool)) (*int64, bool, error) {
	if edited.IsAbsent() {
		return nil, false, nil
	}
	name, _ := edited.Value()
	if name == originalName {
		return nil, false, nil
	}
	if name == "" {
		return nil, true, nil
	}
	p, ok := resolve(name)
	if !ok {
		return nil, false, &ResolutionError{Field: field, Name: name}
	}
	id := p.ID
	return &id, false, nil
}
