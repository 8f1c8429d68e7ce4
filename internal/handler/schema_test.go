package handler

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSchemaNames(t *testing.T) {
	want := []string{"error_body", "event", "event_body", "job_record", "response"}
	if diff := cmp.Diff(want, SchemaNames()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemas_RequiredFields(t *testing.T) {
	tests := map[string][]string{
		"event":      {"body"},
		"event_body": {"result"},
		"response":   {"statusCode"},
		"error_body": {"error", "message"},
		"job_record": {"Job Poster", "Job Title", "Job Description", "Job Location", "Technical Skills"},
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := LookupSchema(name)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(want, s.Required); diff != "" {
				t.Errorf("required mismatch (-want +got):\n%s", diff)
			}
			if !strings.HasSuffix(string(s.ID), "/"+SchemaVersion+"/"+name+".json") {
				t.Errorf("id = %q", s.ID)
			}
		})
	}
}

func TestSchemas_ErrorKindsEnumerated(t *testing.T) {
	s, err := LookupSchema("error_body")
	if err != nil {
		t.Fatal(err)
	}
	prop, ok := s.Properties.Get("error")
	if !ok {
		t.Fatal("error property missing")
	}
	want := []any{"MalformedInputError", "ServiceUnavailableError", "SchemaViolationError", "InternalError"}
	if diff := cmp.Diff(want, prop.Enum); diff != "" {
		t.Errorf("enum mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemas_Marshal(t *testing.T) {
	s, err := LookupSchema("response")
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"statusCode"`, `"job_data"`, `"body"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("schema %s missing %s", data, field)
		}
	}
}

func TestLookupSchema_Unknown(t *testing.T) {
	if _, err := LookupSchema("nope"); err == nil {
		t.Error("expected error for unknown schema")
	}
}
