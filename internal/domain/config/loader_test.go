package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/testutil"
)

func TestLoad_Fixture(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.WriteFixtureToDir(t, dir, "redraw.yaml", "redraw.yaml")

	doc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", doc.Version)
	assert.Equal(t, "network", doc.Type)
	assert.Equal(t, 640.0, doc.Width)
	assert.Equal(t, "2024", doc.Title.Sub)
	assert.Equal(t, []ColorEntry{{ID: "id", Key: "size"}, {ID: "group", Key: "weight"}}, doc.Color.Mapping)
	assert.Equal(t, "nodes.json", doc.Nodes.URL)
	assert.Equal(t, "source", doc.Edges.Source)
	assert.True(t, doc.Legend)
	assert.Equal(t, dir, doc.baseDir)
}

func TestLoad_NotFound(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, IsUserError(err, ErrCodeConfigNotFound))
}

func TestLoad_ParseErrorCarriesPath(t *testing.T) {
	t.Parallel()

	path := testutil.WriteTempFile(t, t.TempDir(), "bad.yaml", "type: [network\n")
	_, err := Load(path)
	require.Error(t, err)

	ue := GetUserError(err)
	require.NotNil(t, ue)
	assert.Equal(t, ErrCodeConfigParse, ue.Code)
	assert.Contains(t, ue.Context, path)
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		code    string
		checkFn func(t *testing.T, d *Document)
	}{
		{
			name:  "empty document",
			input: "",
			checkFn: func(t *testing.T, d *Document) {
				assert.Empty(t, d.Type)
			},
		},
		{
			name:  "plain colour key",
			input: "type: scatter\ncolor: size\n",
			checkFn: func(t *testing.T, d *Document) {
				assert.Equal(t, "size", d.Color.Key)
				assert.Empty(t, d.Color.Mapping)
			},
		},
		{
			name:  "inline rows",
			input: "type: bar\ndata:\n  rows:\n    - {id: a, value: 3}\n",
			checkFn: func(t *testing.T, d *Document) {
				require.Len(t, d.Data.Rows, 1)
				assert.Equal(t, 3, d.Data.Rows[0]["value"])
			},
		},
		{
			name:  "version with v prefix",
			input: "version: v1.2.0\n",
		},
		{
			name:  "unsupported major",
			input: "version: 2.0.0\n",
			code:  ErrCodeConfigVersion,
		},
		{
			name:  "invalid version",
			input: "version: latest\n",
			code:  ErrCodeConfigVersion,
		},
		{
			name:  "unknown field",
			input: "colour: size\n",
			code:  ErrCodeConfigParse,
		},
		{
			name:  "colour as list",
			input: "color: [a, b]\n",
			code:  ErrCodeConfigParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := Parse([]byte(tt.input))
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, IsUserError(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)
			if tt.checkFn != nil {
				tt.checkFn(t, d)
			}
		})
	}
}

func TestDocument_MarshalKeepsColorOrder(t *testing.T) {
	t.Parallel()

	d, err := Parse([]byte("type: network\ncolor:\n  zeta: a\n  alpha: b\n"))
	require.NoError(t, err)

	out, err := d.Marshal()
	require.NoError(t, err)
	testutil.AssertYAMLEquals(t, "type: network\ncolor:\n  zeta: a\n  alpha: b\n", string(out))

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, d.Color, again.Color)
}

func TestDocument_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		doc    Document
		fields []string
	}{
		{name: "empty is valid", doc: Document{}},
		{name: "negative size", doc: Document{Width: -1, Height: -2}, fields: []string{"width", "height"}},
		{name: "depth without nesting", doc: Document{Depth: 1}, fields: []string{"depth"}},
		{name: "depth within nesting", doc: Document{Depth: 1, Nesting: []string{"region", "id"}}},
		{
			name:   "url and rows",
			doc:    Document{Nodes: SourceSpec{URL: "n.json", Rows: []map[string]any{}}},
			fields: []string{"nodes"},
		},
		{
			name:   "duplicate colour id",
			doc:    Document{Color: ColorSpec{Mapping: []ColorEntry{{"id", "a"}, {"id", "b"}}}},
			fields: []string{"color"},
		},
		{name: "fixed without key", doc: Document{Time: TimeSpec{Fixed: true}}, fields: []string{"time.fixed"}},
		{
			name:   "solo and mute overlap",
			doc:    Document{Time: TimeSpec{Solo: []string{"a"}, Mute: []string{"a"}}},
			fields: []string{"time.solo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.doc.Validate()
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				return
			}
			var list *ErrorList
			require.ErrorAs(t, err, &list)
			got := make([]string, 0, list.Len())
			for _, e := range list.Errors() {
				got = append(got, e.Context)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestDocument_NewState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc, err := Load(testutil.WriteFixtureToDir(t, dir, "redraw.yaml", "redraw.yaml"))
	require.NoError(t, err)

	s, err := doc.NewState()
	require.NoError(t, err)

	assert.Equal(t, "network", s.Type.Value)
	assert.True(t, s.Type.Changed)
	assert.Equal(t, 640.0, s.Width.Value)
	assert.Equal(t, 480.0, s.Height.Viz)
	assert.Equal(t, "Trade network", s.Title.Value)
	assert.Equal(t, "de_DE", s.Locale().Tag)
	assert.Equal(t, filepath.Join(dir, "nodes.json"), s.Nodes.URL)
	assert.True(t, s.Nodes.NeedsLoad())
	assert.Equal(t, state.ColorMapping{{ID: "id", Key: "size"}, {ID: "group", Key: "weight"}}, s.Color.Mapping)
	assert.Equal(t, "size", s.Color.ResolveKey(s.ID.Value))
	assert.True(t, s.Legend.Value)
	assert.True(t, s.Dev)
}

func TestDocument_ApplyIsDiffMarking(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte("type: scatter\nid: id\ncolor: size\naxes: {x: gdp, y: life}\ndata:\n  url: https://example.com/d.json\n"))
	require.NoError(t, err)

	s := state.New(100, 100)
	require.NoError(t, doc.Apply(s))
	assert.Equal(t, "https://example.com/d.json", s.Data.URL)
	s.ClearChanged()

	require.NoError(t, doc.Apply(s))
	assert.False(t, s.Color.Changed)
	assert.False(t, s.Axes.Changed)
	assert.False(t, s.Type.Changed)

	doc.Color = ColorSpec{Key: "pop"}
	require.NoError(t, doc.Apply(s))
	assert.True(t, s.Color.Changed)
}

func TestDocument_ApplyUnknownLocale(t *testing.T) {
	t.Parallel()

	doc := &Document{Type: "bar", Locale: "xx_XX"}
	err := doc.Apply(state.New(10, 10))
	require.Error(t, err)
	assert.True(t, IsUserError(err, ErrCodeLocaleUnknown))
}

func TestDocument_ResolveSources(t *testing.T) {
	t.Parallel()

	d := &Document{baseDir: "/docs"}
	assert.Equal(t, "https://x.test/a.csv", d.resolve("https://x.test/a.csv"))
	assert.Equal(t, "file:///tmp/a.csv", d.resolve("file:///tmp/a.csv"))
	assert.Equal(t, "/abs/a.csv", d.resolve("/abs/a.csv"))
	assert.Equal(t, filepath.Join("/docs", "a.csv"), d.resolve("a.csv"))
	assert.Equal(t, "a.csv", (&Document{}).resolve("a.csv"))
}

func TestDocument_DrawField(t *testing.T) {
	t.Parallel()

	layoutOnly, err := Parse([]byte("type: scatter\nid: id\ndraw: false\n"))
	require.NoError(t, err)
	require.NotNil(t, layoutOnly.Draw)

	s, err := layoutOnly.NewState()
	require.NoError(t, err)
	assert.True(t, s.Draw.Update, "first reconciliation always draws")

	require.NoError(t, layoutOnly.Apply(s))
	assert.False(t, s.Draw.Update)

	full, err := Parse([]byte("type: scatter\nid: id\n"))
	require.NoError(t, err)
	require.NoError(t, full.Apply(s))
	assert.True(t, s.Draw.Update)
}
