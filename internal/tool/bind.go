package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Invocation is a tool paired with arguments that passed validation.
type Invocation struct {
	Tool        Tool
	Input       any
	Description string // e.g., "Reading src/main.go"
}

// Run executes the bound call.
func (inv *Invocation) Run(ctx context.Context) (Result, error) {
	return inv.Tool.Execute(ctx, inv.Input)
}

// Bind validates raw JSON arguments against t's declared schema, decodes them
// into t's input struct and runs the input's own Validate. Every failure is a
// *ValidationError.
func Bind(t Tool, args json.RawMessage) (*Invocation, error) {
	schema, err := compiledSchema(t)
	if err != nil {
		return nil, err
	}

	doc, err := decodeArgs(args)
	if err != nil {
		return nil, &ValidationError{Tool: t.Name(), Cause: err}
	}

	if schema != nil {
		if err := schema.Validate(doc); err != nil {
			return nil, &ValidationError{Tool: t.Name(), Cause: err}
		}
	}

	input := t.Input()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  input,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder for %s: %w", t.Name(), err)
	}
	if err := dec.Decode(doc); err != nil {
		return nil, &ValidationError{Tool: t.Name(), Cause: err}
	}

	if v, ok := input.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, &ValidationError{Tool: t.Name(), Cause: err}
		}
	}

	description := t.Name()
	if s, ok := input.(fmt.Stringer); ok {
		description = s.String()
	}

	return &Invocation{Tool: t, Input: input, Description: description}, nil
}

// decodeArgs turns the payload into generic JSON values. An absent payload is
// an empty object.
func decodeArgs(args json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return doc, nil
}

var schemaCache sync.Map

func compiledSchema(t Tool) (*jsonschema.Schema, error) {
	decl := t.Declaration()
	if decl.Parameters == nil {
		return nil, nil
	}
	raw, err := json.Marshal(decl.Parameters)
	if err != nil {
		return nil, &SchemaError{Tool: t.Name(), Cause: err}
	}
	key := string(raw)
	if cached, ok := schemaCache.Load(key); ok {
		if compiled, ok := cached.(*jsonschema.Schema); ok {
			return compiled, nil
		}
	}

	compiled, err := jsonschema.CompileString(t.Name()+".schema.json", key)
	if err != nil {
		return nil, &SchemaError{Tool: t.Name(), Cause: err}
	}
	schemaCache.Store(key, compiled)
	return compiled, nil
}
