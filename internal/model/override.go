package model

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/mmrzaf/fixturegen/internal/domain"
)

// Override is applied on top of each generated record. A single mapping
// applies to every record; a sequence of L mappings applies mapping i mod L
// to record i.
type Override struct {
	single   domain.Record
	sequence []domain.Record
	isSeq    bool
}

// Fields returns an override that applies the same mapping to every record.
func Fields(fields map[string]interface{}) Override {
	return Override{single: domain.Record(fields)}
}

// Cycle returns an override that applies the mappings positionally.
func Cycle(fields ...map[string]interface{}) Override {
	seq := make([]domain.Record, len(fields))
	for i, f := range fields {
		seq[i] = domain.Record(f)
	}
	return Override{sequence: seq, isSeq: true}
}

// IsSequence reports whether o cycles through several mappings.
func (o Override) IsSequence() bool { return o.isSeq }

// Len is the number of mappings in a sequence override, or 1 for a single
// mapping.
func (o Override) Len() int {
	if o.isSeq {
		return len(o.sequence)
	}
	return 1
}

func (o Override) at(i int) domain.Record {
	if !o.isSeq {
		return o.single
	}
	return o.sequence[i%len(o.sequence)]
}

// ParseOverride decodes a JSON object (single override) or a JSON array of
// objects (cycled override). Empty input or null means no override.
func ParseOverride(raw json.RawMessage) (Override, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Override{}, nil
	}
	switch trimmed[0] {
	case '{':
		var m map[string]interface{}
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return Override{}, domain.ConfigurationError("parse_override", "", err)
		}
		return Fields(m), nil
	case '[':
		var ms []map[string]interface{}
		if err := json.Unmarshal(trimmed, &ms); err != nil {
			return Override{}, domain.ConfigurationError("parse_override", "", err)
		}
		return Cycle(ms...), nil
	default:
		return Override{}, domain.ConfigurationError("parse_override", "",
			errors.New("override must be an object or an array of objects"))
	}
}

// apply returns a shallow copy of base with override keys replacing or
// adding fields.
func apply(base, override domain.Record) domain.Record {
	out := base.Clone()
	if out == nil {
		out = domain.Record{}
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
