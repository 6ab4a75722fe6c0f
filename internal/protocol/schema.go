package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBase = "mem://protocol/"

var (
	schemasOnce sync.Once
	schemasErr  error
	frameSchema *jsonschema.Schema
	cmdsSchema  *jsonschema.Schema
)

func compileSchemas() {
	c := jsonschema.NewCompiler()
	for _, name := range []string{"frame.schema.json", "commands.schema.json"} {
		b, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			schemasErr = err
			return
		}
		if err := c.AddResource(schemaBase+name, bytes.NewReader(b)); err != nil {
			schemasErr = fmt.Errorf("%s: %w", name, err)
			return
		}
	}
	if frameSchema, schemasErr = c.Compile(schemaBase + "frame.schema.json"); schemasErr != nil {
		return
	}
	cmdsSchema, schemasErr = c.Compile(schemaBase + "commands.schema.json")
}

func validate(raw []byte, pick func() *jsonschema.Schema) error {
	schemasOnce.Do(compileSchemas)
	if schemasErr != nil {
		return fmt.Errorf("compile schemas: %w", schemasErr)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return pick().Validate(v)
}

// ValidateFrame checks a raw FRAME message against the embedded schema.
func ValidateFrame(raw []byte) error {
	return validate(raw, func() *jsonschema.Schema { return frameSchema })
}

// ValidateCommands checks a raw COMMANDS message against the embedded schema.
func ValidateCommands(raw []byte) error {
	return validate(raw, func() *jsonschema.Schema { return cmdsSchema })
}
