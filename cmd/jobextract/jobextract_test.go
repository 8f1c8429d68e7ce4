package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Smackface/go-job-extractor/internal/config"
)

func TestOpenAIFlags_ApplyOnlyChanged(t *testing.T) {
	f := newOpenAIFlags()
	if err := f.FlagSet().Parse([]string{"--model", "gpt-4o", "--timeout", "20s"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.OpenAIConfig{Model: "gpt-4o-mini", BaseURL: "https://proxy.internal/v1", Timeout: time.Second}
	f.apply(&cfg)

	want := config.OpenAIConfig{Model: "gpt-4o", BaseURL: "https://proxy.internal/v1", Timeout: 20 * time.Second}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEvent(t *testing.T) {
	t.Cleanup(func() { invokePrompt, invokeEvent = "", "" })

	invokePrompt = "Posted by Acme"
	event, err := readEvent(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := event.Prompt(); got != "Posted by Acme" {
		t.Errorf("prompt from --prompt = %q", got)
	}

	invokePrompt = ""
	path := filepath.Join(t.TempDir(), "event.json")
	if err := os.WriteFile(path, []byte(`{"body":"{\"result\":\"from file\"}"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	invokeEvent = path
	event, err = readEvent(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := event.Prompt(); got != "from file" {
		t.Errorf("prompt from file = %q", got)
	}

	invokeEvent = "-"
	event, err = readEvent(strings.NewReader(`{"body":"{\"result\":\"from stdin\"}"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := event.Prompt(); got != "from stdin" {
		t.Errorf("prompt from stdin = %q", got)
	}

	if _, err := readEvent(strings.NewReader(`{}`)); err == nil {
		t.Error("expected error for event without body")
	}
}

func TestSchemaCommand(t *testing.T) {
	t.Cleanup(func() { schemaName = "" })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"schema", "--name", "job_record"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("schema: %v", err)
	}

	var doc struct {
		Title    string   `json:"title"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if doc.Title != "Job record" || len(doc.Required) != 5 {
		t.Errorf("unexpected schema: %+v", doc)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "jobextract dev (envelope v1)\n" {
		t.Errorf("version output = %q", got)
	}
}
