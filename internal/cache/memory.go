package cache

import (
	"sync"

	"estcheck/internal/diag"
)

// minimal per-process cache by digest
type entry struct {
	path  string
	diags []diag.Diagnostic
}

// Memory is an in-process cache of validation results. Identical inputs
// checked under identical settings share one entry, so a directory with
// vendored copies of the same file validates it once.
type Memory struct {
	mu    sync.RWMutex
	byKey map[Digest]entry
}

// NewMemory creates a Memory with the given capacity hint.
func NewMemory(capHint int) *Memory {
	return &Memory{byKey: make(map[Digest]entry, capHint)}
}

// Get returns a copy of the cached diagnostics and the path they were first
// computed for.
func (c *Memory) Get(key Digest) ([]diag.Diagnostic, string, bool) {
	if c == nil {
		return nil, "", false
	}
	c.mu.RLock()
	rec, ok := c.byKey[key]
	c.mu.RUnlock()
	if !ok {
		return nil, "", false
	}
	return cloneDiagnostics(rec.diags), rec.path, true
}

// Put stores diagnostics under key. The first writer wins.
func (c *Memory) Put(key Digest, path string, diags []diag.Diagnostic) {
	if c == nil {
		return
	}
	c.mu.Lock()
	if _, ok := c.byKey[key]; !ok {
		c.byKey[key] = entry{path: path, diags: cloneDiagnostics(diags)}
	}
	c.mu.Unlock()
}

// Len returns the number of entries.
func (c *Memory) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}

func cloneDiagnostics(in []diag.Diagnostic) []diag.Diagnostic {
	if in == nil {
		return nil
	}
	out := make([]diag.Diagnostic, len(in))
	for i, d := range in {
		if d.Notes != nil {
			d.Notes = append([]diag.Note(nil), d.Notes...)
		}
		out[i] = d
	}
	return out
}
