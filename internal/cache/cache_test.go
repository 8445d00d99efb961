package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"

	"estcheck/internal/diag"
	"estcheck/internal/source"
)

func sampleDiagnostics() []diag.Diagnostic {
	at := func(line, col uint32) source.Location {
		return source.Location{Start: source.Position{Line: line, Column: col}, Flags: source.HasLines}
	}
	return []diag.Diagnostic{
		diag.NewError(diag.BndDuplicateBinding, at(2, 4), "Identifier 'x' has already been declared").
			WithNote(at(1, 4), "first declared here"),
		diag.NewError(diag.StrWith, source.Location{Span: source.Span{Start: 10, End: 20}, Flags: source.HasSpan}, "Strict mode code may not include a with statement"),
	}
}

func TestKeyIsDeterministicAndOrderSensitive(t *testing.T) {
	a := Key(42, "module", "strict=false")
	b := Key(42, "module", "strict=false")
	if a != b {
		t.Fatalf("same inputs must give same digest")
	}
	if a.IsZero() {
		t.Fatalf("digest must not be zero")
	}
	if Key(43, "module", "strict=false") == a {
		t.Fatalf("content hash must change the digest")
	}
	if Key(42, "strict=false", "module") == a {
		t.Fatalf("part order must change the digest")
	}
	// separators keep "ab"+"c" apart from "a"+"bc"
	if Key(1, "ab", "c") == Key(1, "a", "bc") {
		t.Fatalf("parts must be delimited")
	}
	if len(a.String()) != 32 {
		t.Fatalf("expected 32 hex chars, got %q", a.String())
	}
}

func TestDiskRoundTrip(t *testing.T) {
	c, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	key := Key(7, "script")

	var miss Payload
	if ok, err := c.Get(key, &miss); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	in := &Payload{Path: "a.json", ContentHash: 7, Mode: "script", Diagnostics: sampleDiagnostics()}
	if err := c.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out Payload
	ok, err := c.Get(key, &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out.Schema != SchemaVersion || out.Path != "a.json" || out.Mode != "script" {
		t.Fatalf("unexpected payload header: %+v", out)
	}
	if diff := cmp.Diff(in.Diagnostics, out.Diagnostics); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}

	leftovers, _ := filepath.Glob(filepath.Join(c.Dir(), "results", "*", "tmp-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestDiskSchemaMismatchIsMiss(t *testing.T) {
	c, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Key(1)
	if err := c.Put(key, &Payload{Path: "x.json"}); err != nil {
		t.Fatal(err)
	}
	stale, err := msgpack.Marshal(&Payload{Schema: SchemaVersion + 1, Path: "x.json"})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.pathFor(key), stale, 0o600); err != nil {
		t.Fatal(err)
	}
	var out Payload
	if ok, err := c.Get(key, &out); ok || err != nil {
		t.Fatalf("payload from another schema must be a miss, got ok=%v err=%v", ok, err)
	}
}

func TestDiskDropAll(t *testing.T) {
	c, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll on empty cache: %v", err)
	}
	key := Key(2, "module")
	if err := c.Put(key, &Payload{Path: "y.json"}); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	var out Payload
	if ok, err := c.Get(key, &out); ok || err != nil {
		t.Fatalf("expected miss after DropAll, got ok=%v err=%v", ok, err)
	}
}

func TestNilDiskIsInert(t *testing.T) {
	var c *Disk
	if err := c.Put(Key(1), &Payload{}); err != nil {
		t.Fatal(err)
	}
	var out Payload
	if ok, err := c.Get(Key(1), &out); ok || err != nil {
		t.Fatalf("nil cache must miss")
	}
}

func TestMemoryHitMiss(t *testing.T) {
	c := NewMemory(4)
	key := Key(9, "module")
	if _, _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	diags := sampleDiagnostics()
	c.Put(key, "first.json", diags)
	c.Put(key, "second.json", nil)

	got, path, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit")
	}
	if path != "first.json" {
		t.Fatalf("first writer must win, got %q", path)
	}
	if diff := cmp.Diff(diags, got); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}

	got[0].Notes[0].Msg = "mutated"
	again, _, _ := c.Get(key)
	if again[0].Notes[0].Msg != "first declared here" {
		t.Fatalf("cache entries must not alias caller slices")
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}
}
