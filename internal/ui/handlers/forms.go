// forms.go — разбор форм в значения Diff Engine и заполнение форм данными записи.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/bigkaa/prodplan/internal/diff"
	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/service"
	"github.com/bigkaa/prodplan/internal/ui/pages"
)

// enumField разбирает select-поле перечисления.
func enumField[T ~string](r *http.Request, name string, parse func(string) (T, bool)) (model.Field[T], error) {
	raw, submitted := formValue(r, name)
	f, ok := model.EnumInput(raw, submitted, parse)
	if !ok {
		return f, fmt.Errorf("%w: недопустимое значение %s %q", service.ErrValidation, name, raw)
	}
	return f, nil
}

// textField разбирает текстовое поле: отсутствует, очищено или задано.
func textField(r *http.Request, name string) model.Field[string] {
	raw, submitted := formValue(r, name)
	return model.TextInput(raw, submitted)
}

func parseCreateForm(r *http.Request) (diff.CreateValues, error) {
	if err := r.ParseForm(); err != nil {
		return diff.CreateValues{}, fmt.Errorf("%w: %w", service.ErrValidation, err)
	}
	values := diff.CreateValues{
		CompilationName: r.PostForm.Get("compilationName"),
		FilmingStart:    r.PostForm.Get("filmingStart"),
		EditStart:       r.PostForm.Get("editStart"),
		ReferenceLink:   r.PostForm.Get("referenceLink"),
		Comment:         r.PostForm.Get("comment"),
	}
	var err error
	if values.Stage, err = enumField(r, "stage", model.ParseStage); err != nil {
		return values, err
	}
	if values.Status, err = enumField(r, "status", model.ParseStatus); err != nil {
		return values, err
	}
	if values.Priority, err = enumField(r, "priority", model.ParsePriority); err != nil {
		return values, err
	}
	return values, nil
}

func parseEditForm(r *http.Request) (diff.EditValues, error) {
	if err := r.ParseForm(); err != nil {
		return diff.EditValues{}, fmt.Errorf("%w: %w", service.ErrValidation, err)
	}
	values := diff.EditValues{
		CompilationName: textField(r, "compilationName"),
		FilmingStart:    textField(r, "filmingStart"),
		EditStart:       textField(r, "editStart"),
		ReferenceLink:   textField(r, "referenceLink"),
		Comment:         textField(r, "comment"),
		Director:        textField(r, "director"),
		Editor:          textField(r, "editor"),
	}
	for i := range values.Releases {
		values.Releases[i] = textField(r, "release"+strconv.Itoa(i+1))
	}
	var err error
	if values.Stage, err = enumField(r, "stage", model.ParseStage); err != nil {
		return values, err
	}
	if values.Status, err = enumField(r, "status", model.ParseStatus); err != nil {
		return values, err
	}
	if values.Priority, err = enumField(r, "priority", model.ParsePriority); err != nil {
		return values, err
	}
	return values, nil
}

// bulkField — поле массовой формы: флажок clear_<name> имеет приоритет,
// пустое значение означает «не менять».
func bulkField(r *http.Request, name string) model.Field[string] {
	if r.PostForm.Get("clear_"+name) != "" {
		return model.Cleared[string]()
	}
	f := textField(r, name)
	if f.IsClear() {
		return model.Absent[string]()
	}
	return f
}

func bulkEnum[T ~string](r *http.Request, name string, parse func(string) (T, bool)) (model.Field[T], error) {
	if r.PostForm.Get("clear_"+name) != "" {
		return model.Cleared[T](), nil
	}
	f, err := enumField(r, name, parse)
	if err != nil {
		return f, err
	}
	if f.IsClear() {
		return model.Absent[T](), nil
	}
	return f, nil
}

func parseBulkForm(r *http.Request) (diff.BulkValues, error) {
	if err := r.ParseForm(); err != nil {
		return diff.BulkValues{}, fmt.Errorf("%w: %w", service.ErrValidation, err)
	}
	values := diff.BulkValues{
		FilmingStart:  bulkField(r, "filmingStart"),
		EditStart:     bulkField(r, "editStart"),
		ReferenceLink: bulkField(r, "referenceLink"),
		Comment:       bulkField(r, "comment"),
		Director:      bulkField(r, "director"),
		Editor:        bulkField(r, "editor"),
	}
	var err error
	if values.Stage, err = bulkEnum(r, "stage", model.ParseStage); err != nil {
		return values, err
	}
	if values.Status, err = bulkEnum(r, "status", model.ParseStatus); err != nil {
		return values, err
	}
	if values.Priority, err = bulkEnum(r, "priority", model.ParsePriority); err != nil {
		return values, err
	}
	return values, nil
}

// createForm заполняет форму создания введёнными значениями.
func createForm(username string, values diff.CreateValues) pages.VideoFormData {
	stage, _ := values.Stage.Value()
	status, _ := values.Status.Value()
	priority, _ := values.Priority.Value()
	return pages.VideoFormData{
		Username:        username,
		CompilationName: values.CompilationName,
		FilmingStart:    values.FilmingStart,
		EditStart:       values.EditStart,
		ReferenceLink:   values.ReferenceLink,
		Comment:         values.Comment,
		Stages:          pages.EnumOptions(model.Stages, stage),
		Statuses:        pages.EnumOptions(model.Statuses, status),
		Priorities:      pages.EnumOptions(model.Priorities, priority),
	}
}

// editForm заполняет форму редактирования значениями записи.
func editForm(username string, rec *model.VideoRecord, dir diff.Directory) pages.VideoFormData {
	data := pages.VideoFormData{
		Username:        username,
		ID:              rec.ID,
		CompilationName: rec.CompilationName,
		FilmingStart:    rec.FilmingStart,
		EditStart:       rec.EditStart,
		ReferenceLink:   rec.ReferenceLink,
		Comment:         rec.Comment,
		Stages:          pages.EnumOptions(model.Stages, rec.Stage),
		Statuses:        pages.EnumOptions(model.Statuses, rec.Status),
		Priorities:      pages.EnumOptions(model.Priorities, rec.Priority),
		Directors:       personOptions(dir.Directors, rec.DirectorName()),
		Editors:         personOptions(dir.Editors, rec.EditorName()),
	}
	for i := range data.Releases {
		data.Releases[i] = rec.ReleaseForPart(i + 1)
	}
	return data
}

// fillEditForm переносит отправленные значения в форму, чтобы ввод не терялся.
func fillEditForm(data *pages.VideoFormData, r *http.Request) {
	data.CompilationName = r.PostForm.Get("compilationName")
	data.FilmingStart = r.PostForm.Get("filmingStart")
	data.EditStart = r.PostForm.Get("editStart")
	data.ReferenceLink = r.PostForm.Get("referenceLink")
	data.Comment = r.PostForm.Get("comment")
	for i := range data.Releases {
		data.Releases[i] = r.PostForm.Get("release" + strconv.Itoa(i+1))
	}
	reselect(data.Stages, r.PostForm.Get("stage"))
	reselect(data.Statuses, r.PostForm.Get("status"))
	reselect(data.Priorities, r.PostForm.Get("priority"))
	data.Directors = withOption(data.Directors, r.PostForm.Get("director"))
	data.Editors = withOption(data.Editors, r.PostForm.Get("editor"))
}

// personOptions строит список имён. Текущее имя, отсутствующее в справочнике,
// сохраняется в списке, чтобы не потерять значение при сохранении.
func personOptions(people []model.Person, selected string) []pages.Option {
	return withOption(pages.PersonOptions(people, selected), selected)
}

func withOption(options []pages.Option, selected string) []pages.Option {
	reselect(options, selected)
	if selected == "" {
		return options
	}
	for _, o := range options {
		if o.Value == selected {
			return options
		}
	}
	return append(options, pages.Option{Value: selected, Label: selected, Selected: true})
}

func reselect(options []pages.Option, selected string) {
	for i := range options {
		options[i].Selected = options[i].Value == selected
	}
}
