package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"todont/internal/service"
)

const addItemSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["desc"],
  "properties": {
    "desc": {"type": "string", "minLength": 1, "pattern": "\\S"}
  }
}`

const updateItemSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["desc", "complete"],
  "properties": {
    "id": {"type": "integer"},
    "desc": {"type": "string", "minLength": 1, "pattern": "\\S"},
    "complete": {"type": "boolean"}
  }
}`

// schemas holds the compiled request body schemas.
type schemas struct {
	add    *jsonschema.Schema
	update *jsonschema.Schema
}

func compileSchemas() (*schemas, error) {
	add, err := compileSchema("mem://todont/add-item.json", addItemSchema)
	if err != nil {
		return nil, err
	}
	update, err := compileSchema("mem://todont/update-item.json", updateItemSchema)
	if err != nil {
		return nil, err
	}
	return &schemas{add: add, update: update}, nil
}

func compileSchema(url, src string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(src)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", url, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", url, err)
	}
	return schema, nil
}

// decodeValid validates body against schema, then decodes it into v.
// Validation failures become ErrInvalid service errors.
func decodeValid(schema *jsonschema.Schema, body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return service.Errorf(service.ErrInvalid, "invalid JSON body")
	}
	if err := schema.Validate(doc); err != nil {
		return service.Errorf(service.ErrInvalid, "%s", schemaMessage(err))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return service.Errorf(service.ErrInvalid, "invalid JSON body")
	}
	return nil
}

// descRequired matches the message the backends use for blank descriptions.
const descRequired = "description required"

// schemaMessage reduces a validation error to its most specific cause.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	field := strings.TrimPrefix(ve.InstanceLocation, "/")
	if field == "desc" && blankKeyword(ve.KeywordLocation) {
		return descRequired
	}
	if field == "" {
		return ve.Message
	}
	return field + ": " + ve.Message
}

func blankKeyword(loc string) bool {
	return strings.HasSuffix(loc, "/minLength") || strings.HasSuffix(loc, "/pattern")
}
