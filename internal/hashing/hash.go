package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/mmrzaf/fixturegen/internal/domain"
)

// HashSchema fingerprints a fixture schema. encoding/json writes map keys
// in sorted order, so equal schemas hash equally regardless of the order
// their source file listed properties in.
func HashSchema(schema *domain.Schema) (string, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

type targetKeyPayload struct {
	Kind     string `json:"kind"`
	DSN      string `json:"dsn"`
	Schema   string `json:"schema,omitempty"`
	Database string `json:"database,omitempty"`
}

// TargetKey identifies a backing store. Records created against one target
// are only ever cleared against the same key.
func TargetKey(target *domain.TargetConfig) string {
	data, _ := json.Marshal(targetKeyPayload{
		Kind:     target.Kind,
		DSN:      target.DSN,
		Schema:   target.Schema,
		Database: target.Database,
	})
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
