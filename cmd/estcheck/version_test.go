package main

import (
	"encoding/json"
	"strings"
	"testing"

	"estcheck/internal/version"
)

func TestVersionPretty(t *testing.T) {
	out, err := runCLI(t, "", "version", "--color", "off")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "estcheck "+version.Version+": ") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := runCLI(t, "", "version", "--format", "json", "--full")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if payload.Tool != "estcheck" || payload.Version != version.Version {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.GitCommit == "" || payload.BuildDate == "" {
		t.Fatalf("--full must fill every field, got %+v", payload)
	}
}

func TestVersionRejectsFormat(t *testing.T) {
	if _, err := runCLI(t, "", "version", "--format", "yaml"); err == nil {
		t.Fatalf("expected an error for yaml")
	}
}
