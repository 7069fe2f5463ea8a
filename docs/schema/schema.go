// Package schema exposes the embedded JSON Schema for the record wire format
// so tools can validate documents without carrying their own copy.
package schema

import (
	_ "embed"
	"encoding/json"
	"sync"
)

// Record schema content embedded for runtime distribution.
//
//go:embed record.schema.json
var recordSchema []byte

type schemaDoc struct {
	ID       string   `json:"$id"`
	Title    string   `json:"title"`
	Required []string `json:"required"`
}

var (
	docOnce sync.Once
	doc     schemaDoc
	docErr  error
)

func load() (schemaDoc, error) {
	docOnce.Do(func() {
		docErr = json.Unmarshal(recordSchema, &doc)
	})
	return doc, docErr
}

// Record returns a defensive copy of the embedded record schema JSON.
func Record() []byte {
	return append([]byte(nil), recordSchema...)
}

// ID returns the canonical $id the schema declares.
func ID() (string, error) {
	d, err := load()
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

// RequiredFields returns the top-level fields the schema marks required, in
// declaration order.
func RequiredFields() ([]string, error) {
	d, err := load()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), d.Required...), nil
}
