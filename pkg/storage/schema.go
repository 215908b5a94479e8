package storage

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// requestDefinition is shared by the collection schema.
const requestDefinition = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id":       {"type": "string", "minLength": 1},
    "name":     {"type": "string"},
    "url":      {"type": "string"},
    "method":   {"type": "string"},
    "headers":  {"type": ["object", "null"], "additionalProperties": {"type": "string"}},
    "params":   {"type": ["object", "null"], "additionalProperties": {"type": "string"}},
    "bodyType": {"enum": ["none", "json", "form", "text", ""]},
    "tests":    {"type": "string"},
    "preRun":   {"type": "string"},
    "auth": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type":        {"enum": ["none", "basic", "bearer", "apikey", "oauth2"]},
        "credentials": {"type": "object"}
      }
    }
  }
}`

const collectionSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "requests"],
  "definitions": {
    "request": ` + requestDefinition + `,
    "folder": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {
        "id":       {"type": "string"},
        "name":     {"type": "string"},
        "requests": {"type": ["array", "null"], "items": {"$ref": "#/definitions/request"}},
        "folders":  {"type": ["array", "null"], "items": {"$ref": "#/definitions/folder"}}
      }
    }
  },
  "properties": {
    "id":       {"type": "string", "minLength": 1},
    "name":     {"type": "string"},
    "requests": {"type": ["array", "null"], "items": {"$ref": "#/definitions/request"}},
    "folders":  {"type": ["array", "null"], "items": {"$ref": "#/definitions/folder"}}
  }
}`

const environmentSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name"],
  "properties": {
    "id":        {"type": "string", "minLength": 1},
    "name":      {"type": "string"},
    "variables": {"type": ["object", "null"], "additionalProperties": {"type": "string"}}
  }
}`

var (
	collectionSchema  = mustSchema(collectionSchemaJSON)
	environmentSchema = mustSchema(environmentSchemaJSON)
)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("storage: invalid embedded schema: %v", err))
	}
	return schema
}

// validate checks data against schema and folds every violation into one error.
func validate(schema *gojsonschema.Schema, data []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema violation: %s", strings.Join(msgs, "; "))
}
