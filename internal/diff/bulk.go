package diff

import (
	"errors"
	"strings"

	"github.com/bigkaa/prodplan/internal/domain/model"
)

// BulkValues — значения формы массового редактирования.
// Cleared означает отмеченный флажок «очистить» и имеет приоритет над значением.
type BulkValues struct {
	FilmingStart  model.Field[string]
	EditStart     model.Field[string]
	Stage         model.Field[model.Stage]
	Status        model.Field[model.Status]
	Priority      model.Field[model.Priority]
	ReferenceLink model.Field[string]
	Comment       model.Field[string]
	Director      model.Field[string]
	Editor        model.Field[string]
}

// ComputeBulkUpdate строит одно тело PATCH, применяемое ко всем выбранным
// записям. Исходной записи нет, поэтому заполненное поле отправляется всегда,
// пустое пропускается, очистка отправляется по флажку.
func ComputeBulkUpdate(values BulkValues, dir Directory) (UpdatePayload, error) {
	var p UpdatePayload

	p.FilmingStart, p.ClearFilmingStart = bulkScalar(values.FilmingStart)
	p.EditStart, p.ClearEditStart = bulkScalar(values.EditStart)
	p.Stage, p.ClearStage = bulkScalar(values.Stage)
	p.Status, p.ClearStatus = bulkScalar(values.Status)
	p.Priority, p.ClearPriority = bulkScalar(values.Priority)
	p.ReferenceLink, p.ClearReferenceLink = bulkScalar(values.ReferenceLink)
	p.Comment, p.ClearComment = bulkScalar(values.Comment)

	var errs []error
	var err error
	p.DirectorID, p.ClearDirector, err = bulkPerson(FieldDirector, values.Director, dir.Director)
	errs = append(errs, err)
	p.EditorID, p.ClearEditor, err = bulkPerson(FieldEditor, values.Editor, dir.Editor)
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		return UpdatePayload{}, err
	}
	return p, nil
}

func bulkScalar[T comparable](f model.Field[T]) (*T, bool) {
	var zero T
	if f.IsClear() {
		return nil, true
	}
	v, ok := f.Value()
	if !ok || v == zero {
		return nil, false
	}
	return &v, false
}

func bulkPerson(field string, f model.Field[string], resolve func(string) (model.Person, bool)) (*int64, bool, error) {
	if f.IsClear() {
		return nil, true, nil
	}
	name, ok := f.Value()
	if !ok || name == "" {
		return nil, false, nil
	}
	p, found := resolve(name)
	if !found {
		return nil, false, &ResolutionError{Field: field, Name: name}
	}
	id := p.ID
	return &id, false, nil
}

// Минимальная длина ссылки и комментария, при которой они отправляются при создании.
const (
	minReferenceLinkLen = 8
	minCommentLen       = 4
)

// CreateValues — значения формы создания записи.
type CreateValues struct {
	CompilationName string
	FilmingStart    string
	EditStart       string
	Stage           model.Field[model.Stage]
	Status          model.Field[model.Status]
	Priority        model.Field[model.Priority]
	ReferenceLink   string
	Comment         string
}

// BuildCreate формирует тело POST /api/videos.
// Название и даты отправляются всегда; перечисления — только если выбраны;
// слишком короткие ссылка и комментарий отбрасываются.
func BuildCreate(values CreateValues) model.CreateRequest {
	req := model.CreateRequest{
		CompilationName: strings.TrimSpace(values.CompilationName),
		FilmingStart:    strings.TrimSpace(values.FilmingStart),
		EditStart:       strings.TrimSpace(values.EditStart),
	}
	if v, ok := values.Stage.Value(); ok {
		req.Stage = &v
	}
	if v, ok := values.Status.Value(); ok {
		req.Status = &v
	}
	if v, ok := values.Priority.Value(); ok {
		req.Priority = &v
	}
	if link := strings.TrimSpace(values.ReferenceLink); len(link) >= minReferenceLinkLen {
		req.ReferenceLink = &link
	}
	if comment := strings.TrimSpace(values.Comment); len([]rune(comment)) >= minCommentLen {
		req.Comment = &comment
	}
	return req
}
