package config

import (
	"bytes"

	"github.com/santhosh-tekuri/jsonschema/v6"

	rootconfig "github.com/recast-dev/recast/config"
)

var rootSchema *jsonschema.Schema

func init() {
	js, err := jsonschema.UnmarshalJSON(bytes.NewReader(rootconfig.Schema()))
	if err != nil {
		panic(err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft2020)
	if err := compiler.AddResource("schema.json", js); err != nil {
		panic(err)
	}

	rootSchema, err = compiler.Compile("schema.json")
	if err != nil {
		panic(err)
	}
}

// Validate checks one decoded document against the declarative document
// schema. The document must already be decoded into plain maps and slices.
func Validate(doc any) error {
	return rootSchema.Validate(doc)
}
