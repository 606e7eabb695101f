// Package datasource resolves the location of an input table. A location is
// either a local file path or an http(s) URL; both open to a byte stream.
package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeFile is a file on the local filesystem
	SourceTypeFile SourceType = "file"
	// SourceTypeHTTP is a resource fetched over HTTP(S)
	SourceTypeHTTP SourceType = "http"
)

// DataSource represents one resolved input location
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Location is the absolute path or the URL
	Location string `json:"location"`
	// ModTime is the last modification time (files only)
	ModTime time.Time `json:"mod_time"`
	// Size is the file size in bytes (files only)
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	if s.Type == SourceTypeHTTP {
		return fmt.Sprintf("%s (%s)", s.Location, s.Type)
	}
	return fmt.Sprintf("%s (%s, %d bytes)", s.Location, s.Type, s.Size)
}

// IsLocal reports whether the source can be watched on disk.
func (s DataSource) IsLocal() bool {
	return s.Type == SourceTypeFile
}

// Resolve classifies loc. File locations are made absolute and stat'ed; a
// missing file is not an error here, Open reports it.
func Resolve(loc string) (DataSource, error) {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return DataSource{}, fmt.Errorf("empty data location")
	}

	if u, err := url.Parse(loc); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if u.Host == "" {
			return DataSource{}, fmt.Errorf("url %q has no host", loc)
		}
		return DataSource{Type: SourceTypeHTTP, Location: loc}, nil
	}

	abs, err := filepath.Abs(loc)
	if err != nil {
		return DataSource{}, fmt.Errorf("resolve %q: %w", loc, err)
	}
	src := DataSource{Type: SourceTypeFile, Location: abs}
	if info, err := os.Stat(abs); err == nil {
		src.ModTime = info.ModTime()
		src.Size = info.Size()
	}
	return src, nil
}

// Open returns a reader over the source contents. client may be nil, in
// which case http.DefaultClient is used.
func Open(ctx context.Context, src DataSource, client *http.Client) (io.ReadCloser, error) {
	switch src.Type {
	case SourceTypeFile:
		f, err := os.Open(src.Location)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", src.Location, err)
		}
		return f, nil

	case SourceTypeHTTP:
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Location, nil)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", src.Location, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src.Location, err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status %s", src.Location, resp.Status)
		}
		return resp.Body, nil

	default:
		return nil, fmt.Errorf("unknown source type %q", src.Type)
	}
}
