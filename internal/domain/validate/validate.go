// Package validate checks a visualisation state for configuration
// problems before it is drawn.
package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/redraw/internal/domain/apptype"
	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/ports"
)

// Issue codes.
const (
	CodeTypeUnknown     = "TYPE_UNKNOWN"
	CodeDataMissing     = "DATA_MISSING"
	CodeIDMissing       = "ID_MISSING"
	CodeEdgesMissing    = "EDGES_MISSING"
	CodeNodesMissing    = "NODES_MISSING"
	CodeColorKeyUnknown = "COLOR_KEY_UNKNOWN"
	CodeTimeKeyUnknown  = "TIME_KEY_UNKNOWN"
)

// Issue is one configuration problem.
type Issue struct {
	Code    string
	Field   string
	Message string
}

// String returns a formatted issue.
func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// Error aggregates the issues found in one validation.
type Error struct {
	Issues []Issue
}

// Error returns the issues joined on one line.
func (e *Error) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

// Has reports whether an issue with code was found.
func (e *Error) Has(code string) bool {
	for _, i := range e.Issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

// Validator is the reference ports.Validator. The first issue found is
// stored in the state's error message so the renderer can show it.
type Validator struct {
	registry *apptype.Registry
	logger   ports.Logger
}

var _ ports.Validator = (*Validator)(nil)

// NewValidator creates a Validator over the registry.
func NewValidator(registry *apptype.Registry) *Validator {
	return &Validator{registry: registry}
}

// WithLogger returns a Validator that logs each issue.
func (v *Validator) WithLogger(logger ports.Logger) *Validator {
	return &Validator{registry: v.registry, logger: logger}
}

// Validate checks s and returns an *Error listing every issue, or nil.
func (v *Validator) Validate(ctx context.Context, s *state.State) error {
	issues := v.check(s)
	if len(issues) == 0 {
		s.Error.Message = ""
		return nil
	}

	s.Error.Message = issues[0].Message
	if v.logger != nil {
		for _, i := range issues {
			v.logger.Warn(ctx, "configuration issue",
				ports.F("code", i.Code),
				ports.F("field", i.Field),
				ports.F("message", i.Message))
		}
	}
	return &Error{Issues: issues}
}

func (v *Validator) check(s *state.State) []Issue {
	var issues []Issue
	loc := s.Locale()
	appType := s.Type.Value

	desc, known := apptype.Descriptor{}, false
	if v.registry != nil {
		desc, known = v.registry.Lookup(appType)
	}
	if !known {
		msg := "no visualization type selected"
		if appType != "" {
			msg = fmt.Sprintf("unknown visualization type %q", appType)
		}
		return append(issues, Issue{Code: CodeTypeUnknown, Field: "type", Message: msg})
	}

	label := loc.Label(appType)
	hasSource := func(c *state.Channel) bool {
		return c.HasSource() || c.URL != ""
	}

	if desc.Requires(apptype.CapData) && !hasSource(&s.Data.Channel) {
		issues = append(issues, Issue{
			Code: CodeDataMissing, Field: "data",
			Message: fmt.Sprintf("the %s visualization requires data", label),
		})
	}
	if desc.Requires(apptype.CapEdges) && !hasSource(&s.Edges.Channel) {
		issues = append(issues, Issue{
			Code: CodeEdgesMissing, Field: "edges",
			Message: fmt.Sprintf("the %s visualization requires edges", label),
		})
	}
	if desc.Requires(apptype.CapNodes) && !hasSource(&s.Nodes.Channel) && !hasSource(&s.Edges.Channel) {
		issues = append(issues, Issue{
			Code: CodeNodesMissing, Field: "nodes",
			Message: fmt.Sprintf("the %s visualization requires nodes or edges", label),
		})
	}

	if s.ID.Value == "" {
		issues = append(issues, Issue{Code: CodeIDMissing, Field: "id", Message: "no id field set"})
	} else if s.Data.Keys != nil && !s.Data.Keys.Has(s.ID.Value) {
		issues = append(issues, Issue{
			Code: CodeIDMissing, Field: "id",
			Message: fmt.Sprintf("id field %q not found in data", s.ID.Value),
		})
	}

	if s.Color.IsSet() && s.Color.Key != "" && s.Data.Keys != nil &&
		!s.Data.Keys.Has(s.Color.Key) && !s.Attrs.Keys.Has(s.Color.Key) {
		issues = append(issues, Issue{
			Code: CodeColorKeyUnknown, Field: "color",
			Message: fmt.Sprintf("color key %q not found in data or attrs", s.Color.Key),
		})
	}

	if s.Time.Value != "" && s.Data.Keys != nil && !s.Data.Keys.Has(s.Time.Value) {
		issues = append(issues, Issue{
			Code: CodeTimeKeyUnknown, Field: "time",
			Message: fmt.Sprintf("time field %q not found in data", s.Time.Value),
		})
	}

	return issues
}
