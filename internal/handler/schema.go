package handler

import (
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/Smackface/go-job-extractor/internal/extractor"
)

const schemaBaseID = "https://github.com/Smackface/go-job-extractor/schemas/" + SchemaVersion + "/"

// Schemas returns the JSON Schema documents of the v1 envelopes, keyed by name.
func Schemas() map[string]*jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}

	docs := map[string]struct {
		v     any
		title string
	}{
		"event":      {&Event{}, "Job extraction event"},
		"event_body": {&EventBody{}, "Job extraction event body"},
		"response":   {&Response{}, "Job extraction response"},
		"error_body": {&ErrorBody{}, "Job extraction error body"},
		"job_record": {&extractor.JobRecord{}, "Job record"},
	}

	out := make(map[string]*jsonschema.Schema, len(docs))
	for name, d := range docs {
		s := r.Reflect(d.v)
		s.ID = jsonschema.ID(schemaBaseID + name + ".json")
		s.Title = d.title
		out[name] = s
	}
	return out
}

// SchemaNames lists the keys of Schemas in sorted order.
func SchemaNames() []string {
	names := make([]string, 0, 5)
	for name := range Schemas() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupSchema returns one schema by name.
func LookupSchema(name string) (*jsonschema.Schema, error) {
	s, ok := Schemas()[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q (have %v)", name, SchemaNames())
	}
	return s, nil
}
