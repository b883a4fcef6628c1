package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bigkaa/prodplan/internal/diff"
	"github.com/bigkaa/prodplan/internal/domain/model"
)

// fieldFlag — пара флагов --<name> и --clear-<name> для одного поля записи.
type fieldFlag struct {
	value string
	clear bool
}

// fieldFlags — флаги полей, общие для videos edit и bulk-edit.
type fieldFlags struct {
	cmd    *cobra.Command
	fields map[string]*fieldFlag
}

// Поля, редактируемые обеими командами.
var sharedFields = []struct{ name, usage string }{
	{"filming-start", "дата начала съёмки"},
	{"edit-start", "дата начала монтажа"},
	{"stage", "этап: PREP, FILMING, DONE_FILMING, CANCELED, REFILM"},
	{"status", "статус: EDITING, TESTING, READY, POSTED"},
	{"priority", "приоритет: LOW, MEDIUM, HIGH"},
	{"reference-link", "ссылка на референс"},
	{"comment", "комментарий"},
	{"director", "имя режиссёра"},
	{"editor", "имя монтажёра"},
}

func newFieldFlags(cmd *cobra.Command, extra ...struct{ name, usage string }) *fieldFlags {
	ff := &fieldFlags{cmd: cmd, fields: make(map[string]*fieldFlag)}
	for _, f := range append(append([]struct{ name, usage string }{}, sharedFields...), extra...) {
		flag := &fieldFlag{}
		ff.fields[f.name] = flag
		cmd.Flags().StringVar(&flag.value, f.name, "", f.usage)
		cmd.Flags().BoolVar(&flag.clear, "clear-"+f.name, false, "очистить: "+f.usage)
		cmd.MarkFlagsMutuallyExclusive(f.name, "clear-"+f.name)
	}
	return ff
}

// text возвращает состояние поля: очистка, значение или отсутствие.
func (ff *fieldFlags) text(name string) model.Field[string] {
	f := ff.fields[name]
	switch {
	case f.clear:
		return model.Cleared[string]()
	case ff.cmd.Flags().Changed(name):
		return model.TextInput(f.value, true)
	default:
		return model.Absent[string]()
	}
}

func fieldEnum[T ~string](ff *fieldFlags, name string, parse func(string) (T, bool)) (model.Field[T], error) {
	f := ff.fields[name]
	if f.clear {
		return model.Cleared[T](), nil
	}
	if !ff.cmd.Flags().Changed(name) {
		return model.Absent[T](), nil
	}
	field, ok := model.EnumInput(f.value, true, parse)
	if !ok {
		return field, fmt.Errorf("недопустимое значение --%s %q", name, f.value)
	}
	return field, nil
}

// any сообщает, задан ли хотя бы один флаг поля.
func (ff *fieldFlags) any() bool {
	for name, f := range ff.fields {
		if f.clear || ff.cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func (ff *fieldFlags) bulkValues() (diff.BulkValues, error) {
	values := diff.BulkValues{
		FilmingStart:  ff.text("filming-start"),
		EditStart:     ff.text("edit-start"),
		ReferenceLink: ff.text("reference-link"),
		Comment:       ff.text("comment"),
		Director:      ff.text("director"),
		Editor:        ff.text("editor"),
	}
	var err error
	if values.Stage, err = fieldEnum(ff, "stage", model.ParseStage); err != nil {
		return values, err
	}
	if values.Status, err = fieldEnum(ff, "status", model.ParseStatus); err != nil {
		return values, err
	}
	if values.Priority, err = fieldEnum(ff, "priority", model.ParsePriority); err != nil {
		return values, err
	}
	return values, nil
}

// editFields — флаги, доступные только при правке одной записи.
var editFields = []struct{ name, usage string }{
	{"name", "название компиляции"},
	{"release1", "дата выхода части 1"},
	{"release2", "дата выхода части 2"},
	{"release3", "дата выхода части 3"},
}

// editValues строит значения правки. Незаданные слоты релизов заполняются
// текущими значениями записи, если задан хотя бы один.
func (ff *fieldFlags) editValues(original *model.VideoRecord) (diff.EditValues, error) {
	bulk, err := ff.bulkValues()
	if err != nil {
		return diff.EditValues{}, err
	}
	values := diff.EditValues{
		CompilationName: ff.text("name"),
		FilmingStart:    bulk.FilmingStart,
		EditStart:       bulk.EditStart,
		Stage:           bulk.Stage,
		Status:          bulk.Status,
		Priority:        bulk.Priority,
		ReferenceLink:   bulk.ReferenceLink,
		Comment:         bulk.Comment,
		Director:        bulk.Director,
		Editor:          bulk.Editor,
	}

	touched := false
	for i := range values.Releases {
		values.Releases[i] = ff.text("release" + strconv.Itoa(i+1))
		touched = touched || !values.Releases[i].IsAbsent()
	}
	if touched {
		for i, slot := range values.Releases {
			if slot.IsAbsent() {
				values.Releases[i] = model.Present(original.ReleaseForPart(i + 1))
			}
		}
	}
	return values, nil
}
