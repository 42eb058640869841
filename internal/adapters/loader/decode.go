package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
)

// ErrUnsupportedFormat is returned for sources whose format cannot be
// determined or decoded.
var ErrUnsupportedFormat = errors.New("unsupported data format")

// Format is a source encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatINI  Format = "ini"
)

// FormatFromExt maps a file extension to a Format.
func FormatFromExt(ext string) Format {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json":
		return FormatJSON
	case "csv":
		return FormatCSV
	case "yaml", "yml":
		return FormatYAML
	case "toml":
		return FormatTOML
	case "ini":
		return FormatINI
	}
	return ""
}

// Decode parses data in the given format into records. JSON, YAML and TOML
// sources are a list of objects, or an object holding the list under
// "rows". CSV sources have a header row. Numeric text is converted to
// float64 for CSV and INI.
func Decode(format Format, data []byte, idKey string) ([]state.Record, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatCSV:
		return decodeCSV(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		return decodeTOML(data)
	case FormatINI:
		return decodeINI(data, idKey)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

type rowsDoc struct {
	Rows []map[string]any `json:"rows" yaml:"rows" toml:"rows"`
}

func decodeJSON(data []byte) ([]state.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc rowsDoc
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		return records(doc.Rows), nil
	}
	var rows []map[string]any
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, err
	}
	return records(rows), nil
}

func decodeYAML(data []byte) ([]state.Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return []state.Record{}, nil
	}
	if node.Content[0].Kind == yaml.MappingNode {
		var doc rowsDoc
		if err := node.Decode(&doc); err != nil {
			return nil, err
		}
		return records(doc.Rows), nil
	}
	var rows []map[string]any
	if err := node.Decode(&rows); err != nil {
		return nil, err
	}
	return records(rows), nil
}

func decodeTOML(data []byte) ([]state.Record, error) {
	var doc rowsDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return records(doc.Rows), nil
}

func decodeCSV(data []byte) ([]state.Record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []state.Record{}, nil
	}
	if err != nil {
		return nil, err
	}

	rows := make([]state.Record, 0)
	for {
		line, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := make(state.Record, len(header))
		for i, key := range header {
			rec[key] = scalar(line[i])
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// decodeINI reads one record per section. Values may contain '#', so
// inline comments are not stripped.
func decodeINI(data []byte, idKey string) ([]state.Record, error) {
	if idKey == "" {
		idKey = "id"
	}
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return nil, err
	}

	rows := make([]state.Record, 0)
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		rec := state.Record{idKey: sec.Name()}
		for _, k := range sec.Keys() {
			rec[k.Name()] = scalar(k.String())
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func records(rows []map[string]any) []state.Record {
	out := make([]state.Record, len(rows))
	for i, r := range rows {
		out[i] = state.Record(r)
	}
	return out
}

// scalar converts numeric text to float64 and leaves anything else as is.
func scalar(v string) any {
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return v
}
