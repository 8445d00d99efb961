package testkit

import (
	"fmt"

	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/source"
)

// CheckLocationInvariants runs a minimal set of location invariants on a
// checked program:
// 1) every node range is well-formed and lies inside its parent's range
// 2) every diagnostic and note points at the location of some node, or at
// no location at all
// 3) the diagnostics are reported in location order
func CheckLocationInvariants(program *estree.Node, diags []diag.Diagnostic) error {
	if program == nil || !program.Is(estree.Program) {
		return fmt.Errorf("root is not a Program")
	}

	locs := make(map[source.Location]struct{})
	if err := walkLocations(program, source.Location{}, locs); err != nil {
		return err
	}

	for i, d := range diags {
		if err := knownLocation(locs, d.Location); err != nil {
			return fmt.Errorf("diagnostic %d (%s): %w", i, d.Code.ID(), err)
		}
		for j, n := range d.Notes {
			if err := knownLocation(locs, n.Location); err != nil {
				return fmt.Errorf("diagnostic %d (%s) note %d: %w", i, d.Code.ID(), j, err)
			}
		}
		if i > 0 && d.Location.Before(diags[i-1].Location) {
			return fmt.Errorf("diagnostic %d at %s reported after %s", i, d.Location, diags[i-1].Location)
		}
	}
	return nil
}

func walkLocations(n *estree.Node, parent source.Location, locs map[source.Location]struct{}) error {
	loc := n.Loc
	if loc.HasSpan() {
		sp := loc.Span
		if sp.End < sp.Start {
			return fmt.Errorf("%s: inverted range %v", n.Type, sp)
		}
		// node inside parent
		if parent.HasSpan() && !parent.Span.Contains(sp) {
			return fmt.Errorf("%s: range %v is outside parent range %v", n.Type, sp, parent.Span)
		}
	}
	if loc.HasLines() && loc.End.Less(loc.Start) {
		return fmt.Errorf("%s: loc ends before it starts", n.Type)
	}
	locs[loc] = struct{}{}

	next := parent
	if loc.HasSpan() {
		next = loc
	}
	for _, field := range n.FieldNames() {
		if child := n.Child(field); child != nil {
			if err := walkLocations(child, next, locs); err != nil {
				return err
			}
			continue
		}
		for _, child := range n.Children(field) {
			if child == nil {
				continue
			}
			if err := walkLocations(child, next, locs); err != nil {
				return err
			}
		}
	}
	return nil
}

func knownLocation(locs map[source.Location]struct{}, loc source.Location) error {
	if loc.IsZero() {
		return nil
	}
	if _, ok := locs[loc]; !ok {
		return fmt.Errorf("location %s does not belong to any node", loc)
	}
	return nil
}
