// Пакет contract — встроенный OpenAPI-контракт REST API производственного плана
// и проверка исходящих тел запросов по его схемам.
package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var specYAML []byte

// ErrContractViolation — тело запроса не соответствует контракту API.
var ErrContractViolation = errors.New("тело запроса не соответствует контракту API")

// Имена схем, по которым проверяются исходящие тела.
const (
	SchemaVideoCreate = "VideoCreate"
	SchemaVideoUpdate = "VideoUpdate"
)

// Validator проверяет JSON-тела по схемам контракта.
type Validator struct {
	doc     *openapi3.T
	schemas map[string]*openapi3.Schema
}

// Spec возвращает встроенный контракт в исходном виде.
func Spec() []byte {
	return specYAML
}

// New загружает и валидирует встроенный контракт.
func New(ctx context.Context) (*Validator, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("загрузка OpenAPI-контракта: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("валидация OpenAPI-контракта: %w", err)
	}
	if doc.Components == nil {
		return nil, errors.New("в OpenAPI-контракте нет components")
	}

	v := &Validator{doc: doc, schemas: make(map[string]*openapi3.Schema)}
	for _, name := range []string{SchemaVideoCreate, SchemaVideoUpdate} {
		ref, ok := doc.Components.Schemas[name]
		if !ok || ref == nil || ref.Value == nil {
			return nil, fmt.Errorf("в OpenAPI-контракте нет схемы %s", name)
		}
		v.schemas[name] = ref.Value
	}
	return v, nil
}

// Version возвращает версию контракта.
func (v *Validator) Version() string {
	if v.doc.Info == nil {
		return ""
	}
	return v.doc.Info.Version
}

// ValidateCreate проверяет тело POST /api/videos.
func (v *Validator) ValidateCreate(body []byte) error {
	return v.validate(SchemaVideoCreate, body)
}

// ValidateUpdate проверяет тело PATCH /api/videos/{id}.
func (v *Validator) ValidateUpdate(body []byte) error {
	return v.validate(SchemaVideoUpdate, body)
}

func (v *Validator) validate(name string, body []byte) error {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrContractViolation, name, err)
	}
	if err := v.schemas[name].VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrContractViolation, name, err)
	}
	return nil
}
