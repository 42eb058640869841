package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/testutil"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  Format
		input   string
		want    []state.Record
		wantErr bool
	}{
		{
			name:   "json list",
			format: FormatJSON,
			input:  `[{"id": "a", "v": 1}]`,
			want:   []state.Record{{"id": "a", "v": 1.0}},
		},
		{
			name:   "json rows object",
			format: FormatJSON,
			input:  `{"rows": [{"id": "a"}]}`,
			want:   []state.Record{{"id": "a"}},
		},
		{
			name:   "csv converts numbers",
			format: FormatCSV,
			input:  "id, value, note\na, 3, x\nb, 4.5, nan\n",
			want: []state.Record{
				{"id": "a", "value": 3.0, "note": "x"},
				{"id": "b", "value": 4.5, "note": "nan"},
			},
		},
		{
			name:   "csv header only",
			format: FormatCSV,
			input:  "id,value\n",
			want:   []state.Record{},
		},
		{
			name:   "yaml rows object",
			format: FormatYAML,
			input:  "rows:\n  - id: a\n",
			want:   []state.Record{{"id": "a"}},
		},
		{
			name:   "empty yaml",
			format: FormatYAML,
			input:  "",
			want:   []state.Record{},
		},
		{
			name:    "invalid json",
			format:  FormatJSON,
			input:   `[{"id": }]`,
			wantErr: true,
		},
		{
			name:    "unknown format",
			format:  "",
			input:   "a,b",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode(tt.format, []byte(tt.input), "")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := Decode("xml", []byte("<rows/>"), "")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFetch_Fixtures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l := New()
	ctx := context.Background()

	tests := []struct {
		fixture string
		idKey   string
		check   func(t *testing.T, rows []state.Record)
	}{
		{
			fixture: "nodes.json",
			check: func(t *testing.T, rows []state.Record) {
				require.Len(t, rows, 3)
				assert.Equal(t, "alpha", rows[0]["id"])
				assert.Equal(t, 9.0, rows[1]["size"])
			},
		},
		{
			fixture: "edges.csv",
			check: func(t *testing.T, rows []state.Record) {
				require.Len(t, rows, 3)
				assert.Equal(t, state.Record{"source": "alpha", "target": "beta", "weight": 3.0}, rows[0])
			},
		},
		{
			fixture: "sales.yaml",
			check: func(t *testing.T, rows []state.Record) {
				require.Len(t, rows, 4)
				assert.Equal(t, "north", rows[0]["region"])
				v, ok := state.Number(rows[3]["value"])
				require.True(t, ok)
				assert.Equal(t, 75.0, v)
			},
		},
		{
			fixture: "sales.toml",
			check: func(t *testing.T, rows []state.Record) {
				require.Len(t, rows, 2)
				assert.Equal(t, int64(2023), rows[1]["year"])
			},
		},
		{
			fixture: "attrs.ini",
			idKey:   "region",
			check: func(t *testing.T, rows []state.Record) {
				require.Len(t, rows, 2)
				assert.Equal(t, state.Record{
					"region": "north", "label": "North", "color": "#1f77b4", "population": 1200.0,
				}, rows[0])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			t.Parallel()

			path := testutil.WriteFixtureToDir(t, dir, tt.fixture, tt.fixture)
			rows, err := l.Fetch(ctx, path, tt.idKey)
			require.NoError(t, err)
			tt.check(t, rows)
		})
	}
}

func TestFetch_FileURL(t *testing.T) {
	t.Parallel()

	path := testutil.WriteFixtureToDir(t, t.TempDir(), "nodes.json", "nodes.json")
	rows, err := New().Fetch(context.Background(), "file://"+filepath.ToSlash(path), "")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestFetch_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := New().Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "")
	require.Error(t, err)
}

func TestFetch_HTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			_, _ = w.Write([]byte("id,value\na,1\n"))
		case "/data.json":
			_, _ = w.Write([]byte(`[{"id":"b"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	l := New(WithHTTPClient(srv.Client()))
	ctx := context.Background()

	rows, err := l.Fetch(ctx, srv.URL+"/data", "")
	require.NoError(t, err)
	assert.Equal(t, []state.Record{{"id": "a", "value": 1.0}}, rows)

	rows, err = l.Fetch(ctx, srv.URL+"/data.json", "")
	require.NoError(t, err)
	assert.Equal(t, []state.Record{{"id": "b"}}, rows)

	_, err = l.Fetch(ctx, srv.URL+"/missing.json", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	t.Parallel()

	_, err := New().Fetch(context.Background(), "ftp://example.com/a.csv", "")
	require.Error(t, err)
}

func TestLoad_ReturnsRowsWithoutTouchingState(t *testing.T) {
	t.Parallel()

	path := testutil.WriteFixtureToDir(t, t.TempDir(), "edges.csv", "edges.csv")
	s := state.New(100, 100)
	s.SetURL(state.ChannelEdges, path)
	s.ClearChanged()

	type result struct {
		rows []state.Record
		err  error
	}
	resCh := make(chan result, 1)
	New().Load(context.Background(), s, state.ChannelEdges, func(rows []state.Record, err error) {
		resCh <- result{rows, err}
	})

	select {
	case res := <-resCh:
		require.NoError(t, res.err)
		assert.Len(t, res.rows, 3)
	case <-time.After(5 * time.Second):
		t.Fatal("load did not complete")
	}
	assert.False(t, s.Edges.Loaded)
	assert.False(t, s.Edges.Changed)
	assert.Nil(t, s.Edges.Value)
}

func TestLoad_Cancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	s := state.New(100, 100)
	s.SetURL(state.ChannelData, srv.URL+"/slow.json")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	New(WithHTTPClient(srv.Client())).Load(ctx, s, state.ChannelData, func(rows []state.Record, err error) {
		assert.Nil(t, rows)
		errCh <- err
	})
	cancel()

	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled load did not complete")
	}
	assert.False(t, s.Data.Loaded)
	assert.Nil(t, s.Data.Value)
}

func TestLoad_UnknownChannel(t *testing.T) {
	t.Parallel()

	var got error
	New().Load(context.Background(), state.New(1, 1), "bogus", func(_ []state.Record, err error) { got = err })
	require.Error(t, got)
}
