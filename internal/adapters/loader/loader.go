// Package loader fetches channel rows from local files and HTTP sources.
package loader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/ports"
)

// DefaultTimeout bounds a single HTTP fetch.
const DefaultTimeout = 30 * time.Second

// maxBody caps the size of a fetched source.
const maxBody = 64 << 20

// Loader implements ports.Loader.
type Loader struct {
	client *http.Client
	logger ports.Logger
}

var _ ports.Loader = (*Loader)(nil)

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for http and https sources.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		l.client = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger ports.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{client: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the channel's URL in the background and hands the rows to
// done. The state is only read, before Load returns.
func (l *Loader) Load(ctx context.Context, s *state.State, channel state.ChannelName, done func([]state.Record, error)) {
	ch := s.Channel(channel)
	if ch == nil {
		done(nil, fmt.Errorf("unknown channel %q", channel))
		return
	}
	ref := ch.URL
	idKey := s.ID.Value

	go func() {
		start := time.Now()
		rows, err := l.Fetch(ctx, ref, idKey)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			done(nil, err)
			return
		}
		if l.logger != nil {
			l.logger.Debug(ctx, "channel loaded",
				ports.F("channel", channel.String()),
				ports.F("url", ref),
				ports.F("rows", len(rows)),
				ports.F("duration", time.Since(start)))
		}
		done(rows, nil)
	}()
}

// Fetch reads and decodes the rows at ref. INI sections become records
// whose idKey (default "id") holds the section name.
func (l *Loader) Fetch(ctx context.Context, ref, idKey string) ([]state.Record, error) {
	data, format, err := l.read(ctx, ref)
	if err != nil {
		return nil, err
	}
	rows, err := Decode(format, data, idKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ref, err)
	}
	return rows, nil
}

// read returns the raw bytes at ref and the format inferred from its
// extension or, for HTTP, its content type.
func (l *Loader) read(ctx context.Context, ref string) ([]byte, Format, error) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return readFile(ref)
	}

	switch u.Scheme {
	case "file":
		p := u.Path
		if u.Host != "" && u.Host != "localhost" {
			p = "//" + u.Host + p
		}
		return readFile(filepath.FromSlash(p))
	case "http", "https":
		return l.get(ctx, u)
	}
	return nil, "", fmt.Errorf("unsupported scheme %q in %s", u.Scheme, ref)
}

func readFile(p string) ([]byte, Format, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, FormatFromExt(filepath.Ext(p)), nil
}

func (l *Loader) get(ctx context.Context, u *url.URL) ([]byte, Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/json, text/csv, application/yaml, application/toml, */*")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch %s: %s", u, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", u, err)
	}

	format := FormatFromExt(path.Ext(u.Path))
	if format == "" {
		if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
			format = FormatFromMediaType(mt)
		}
	}
	return data, format, nil
}

// FormatFromMediaType maps a content type to a Format.
func FormatFromMediaType(mt string) Format {
	switch {
	case strings.HasSuffix(mt, "json"):
		return FormatJSON
	case mt == "text/csv":
		return FormatCSV
	case strings.HasSuffix(mt, "yaml"):
		return FormatYAML
	case strings.HasSuffix(mt, "toml"):
		return FormatTOML
	}
	return ""
}
