// Package mapdef reads map definitions from JSON files under a root
// directory and validates them against an embedded JSON schema.
package mapdef

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"tilecore/internal/app/ports"
	"tilecore/internal/domain/world"
)

//go:embed map_definition.schema.json
var schemaText string

var schema = jsonschema.MustCompileString("map_definition.schema.json", schemaText)

var ErrInvalidDefinitionPath = fmt.Errorf("map definition path: %w", ports.ErrInvalidID)

type Provider struct {
	Root string
}

// Definition loads <Root>/<id>.json. A missing file is ports.ErrNotFound;
// a file that fails the schema is a world.ConfigurationError.
func (p Provider) Definition(_ context.Context, id string) (world.MapDefinition, error) {
	id = strings.TrimSpace(id)
	path, err := secureJoin(p.Root, id+".json")
	if err != nil {
		return world.MapDefinition{}, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return world.MapDefinition{}, ports.ErrNotFound
	}
	if err != nil {
		return world.MapDefinition{}, err
	}
	def, err := Decode(raw)
	if err != nil {
		return world.MapDefinition{}, fmt.Errorf("map %s: %w", id, err)
	}
	if def.ID == "" {
		def.ID = id
	}
	if def.ID != id {
		return world.MapDefinition{}, &world.ConfigurationError{Field: "id", Reason: fmt.Sprintf("file %s.json declares id %q", id, def.ID)}
	}
	return def, nil
}

// Decode validates raw against the schema and decodes it. Tiles without
// an explicit size are 1x1.
func Decode(raw []byte) (world.MapDefinition, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return world.MapDefinition{}, &world.ConfigurationError{Field: "definition", Reason: err.Error()}
	}
	if err := schema.Validate(doc); err != nil {
		return world.MapDefinition{}, &world.ConfigurationError{Field: "definition", Reason: err.Error()}
	}
	var def world.MapDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return world.MapDefinition{}, &world.ConfigurationError{Field: "definition", Reason: err.Error()}
	}
	for i := range def.Tiles {
		if def.Tiles[i].Width == 0 {
			def.Tiles[i].Width = 1
		}
		if def.Tiles[i].Height == 0 {
			def.Tiles[i].Height = 1
		}
	}
	return def, nil
}

func secureJoin(root, rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" || rel == ".json" {
		return "", ErrInvalidDefinitionPath
	}
	if filepath.IsAbs(rel) {
		return "", ErrInvalidDefinitionPath
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	target := filepath.Clean(filepath.Join(rootAbs, rel))
	if !strings.HasPrefix(target, rootAbs+string(filepath.Separator)) {
		return "", ErrInvalidDefinitionPath
	}
	return target, nil
}
