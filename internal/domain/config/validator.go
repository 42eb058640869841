package config

import (
	"fmt"
	"slices"
)

// Validate checks document-level constraints. Checks that depend on the
// loaded data run later, during reconciliation.
func (d *Document) Validate() error {
	errs := NewErrorList()

	if d.Width < 0 {
		errs.AddValidation("width", fmt.Sprintf("must not be negative, got %v", d.Width), "Omit width to use the default.")
	}
	if d.Height < 0 {
		errs.AddValidation("height", fmt.Sprintf("must not be negative, got %v", d.Height), "Omit height to use the default.")
	}
	if d.Depth < 0 {
		errs.AddValidation("depth", "must not be negative", "")
	}
	if d.Depth > 0 && d.Depth >= max(len(d.Nesting), 1) {
		errs.AddValidation("depth", fmt.Sprintf("exceeds the nesting levels (%d)", len(d.Nesting)),
			"Add nesting levels or lower depth.")
	}

	sources := []struct {
		name string
		spec SourceSpec
	}{
		{"data", d.Data}, {"attrs", d.Attrs}, {"coords", d.Coords},
		{"nodes", d.Nodes}, {"edges", d.Edges.SourceSpec},
	}
	for _, src := range sources {
		if src.spec.URL != "" && src.spec.Rows != nil {
			errs.AddValidation(src.name, "url and rows are mutually exclusive", "Keep one of the two.")
		}
	}

	seen := make(map[string]bool, len(d.Color.Mapping))
	for _, e := range d.Color.Mapping {
		if seen[e.ID] {
			errs.AddValidation("color", fmt.Sprintf("id key %q mapped twice", e.ID), "")
		}
		seen[e.ID] = true
	}

	if d.Time.Fixed && d.Time.Key == "" {
		errs.AddValidation("time.fixed", "requires time.key", "Set time.key to the field holding time values.")
	}
	for _, v := range d.Time.Solo {
		if slices.Contains(d.Time.Mute, v) {
			errs.AddValidation("time.solo", fmt.Sprintf("%q is both solo and muted", v), "")
		}
	}

	return errs.AsError()
}
