package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Schema is the subset of JSON Schema a fixture is described with. A loaded
// schema is treated as immutable.
type Schema struct {
	ID          string             `json:"$id,omitempty" yaml:"$id,omitempty"`
	Ref         string             `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Title       string             `json:"title,omitempty" yaml:"title,omitempty"`
	Type        string             `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string             `json:"format,omitempty" yaml:"format,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required    []string           `json:"required,omitempty" yaml:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty" yaml:"items,omitempty"`
	Enum        []interface{}      `json:"enum,omitempty" yaml:"enum,omitempty"`
	Const       interface{}        `json:"const,omitempty" yaml:"const,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	MinLength   *int               `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int               `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	MinItems    *int               `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems    *int               `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	Definitions map[string]*Schema `json:"definitions,omitempty" yaml:"definitions,omitempty"`
	Generator   *GeneratorSpec     `json:"x-generator,omitempty" yaml:"x-generator,omitempty"`
}

const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeNull    = "null"
)

// GeneratorSpec pins a property to one of the registered value generators.
type GeneratorSpec struct {
	Type   string                 `json:"type" yaml:"type"`
	Params map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
}

// Record is a generated document. It has no identity until persisted.
type Record map[string]interface{}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IDField is the key persisted representations carry their identifier under.
const IDField = "_id"

// PersistedRecord is a generated record plus the identifier the store assigned.
type PersistedRecord struct {
	ID     string `json:"id"`
	Record Record `json:"record"`
}

// InsertResult is what a gateway reports for one batch insert. IDs and
// Records are in insertion order.
type InsertResult struct {
	IDs     []string
	Records []PersistedRecord
}

// ParseExternalRefs decodes external schema references supplied as raw JSON.
// Empty input and JSON null mean "no external references". Anything other
// than an array of schema objects is a configuration error.
func ParseExternalRefs(raw json.RawMessage) ([]*Schema, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &Error{Kind: KindConfiguration, Op: "parse_refs", Err: fmt.Errorf("external references needs to be an array of schemas: %w", err)}
	}
	refs := make([]*Schema, 0, len(items))
	for i, item := range items {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			return nil, &Error{Kind: KindConfiguration, Op: "parse_refs", Err: fmt.Errorf("external reference %d is null", i)}
		}
		var s Schema
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, &Error{Kind: KindConfiguration, Op: "parse_refs", Err: fmt.Errorf("external reference %d is not a schema object: %w", i, err)}
		}
		refs = append(refs, &s)
	}
	return refs, nil
}

type TargetConfig struct {
	Name     string            `json:"name" yaml:"name" mapstructure:"name"`
	Kind     string            `json:"kind" yaml:"kind" mapstructure:"kind" validate:"required,oneof=memory sqlite postgres mysql elasticsearch surrealdb"`
	DSN      string            `json:"dsn" yaml:"dsn" mapstructure:"dsn" validate:"required_unless=Kind memory"`
	Database string            `json:"database,omitempty" yaml:"database,omitempty" mapstructure:"database"`
	Schema   string            `json:"schema,omitempty" yaml:"schema,omitempty" mapstructure:"schema"`
	Options  map[string]string `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
}

type TargetCheck struct {
	Kind         string             `json:"kind"`
	CheckedAt    time.Time          `json:"checked_at"`
	OK           bool               `json:"ok"`
	LatencyMS    int64              `json:"latency_ms"`
	ServerVer    string             `json:"server_version,omitempty"`
	Capabilities TargetCapabilities `json:"capabilities"`
	Error        string             `json:"error,omitempty"`
}

type TargetCapabilities struct {
	CanInsert bool `json:"can_insert"`
	CanRemove bool `json:"can_remove"`
}

const (
	TargetMemory        = "memory"
	TargetSQLite        = "sqlite"
	TargetPostgres      = "postgres"
	TargetMySQL         = "mysql"
	TargetElasticsearch = "elasticsearch"
	TargetSurrealDB     = "surrealdb"
)
