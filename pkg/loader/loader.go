// Package loader fetches the node and edge tables and turns them into a
// typed model.Graph.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/cooc/internal/datasource"
	"github.com/vanderheijden86/cooc/pkg/debug"
	"github.com/vanderheijden86/cooc/pkg/metrics"
	"github.com/vanderheijden86/cooc/pkg/model"
)

// Default locations of the two tables, relative to the working directory.
const (
	DefaultNodesPath = "chart_data/cooc32long_bw_nodelist.csv"
	DefaultEdgesPath = "chart_data/cooc32long_bw_edgelist.csv"
)

// ErrMissingColumn is returned when a table lacks a column the pipeline
// cannot run without.
var ErrMissingColumn = errors.New("missing required column")

// Record is one CSV row keyed by header name.
type Record map[string]string

// Options configures Load.
type Options struct {
	NodesPath  string
	EdgesPath  string
	HTTPClient *http.Client // nil uses http.DefaultClient
}

// Tables holds the raw records of both inputs.
type Tables struct {
	Nodes []Record
	Edges []Record
}

// Fetch retrieves both tables concurrently and returns once both are
// parsed. Either failure fails the whole fetch.
func Fetch(ctx context.Context, opts Options) (*Tables, error) {
	defer metrics.Timer(metrics.DataLoad)()
	start := time.Now()

	nodesLoc := opts.NodesPath
	if nodesLoc == "" {
		nodesLoc = DefaultNodesPath
	}
	edgesLoc := opts.EdgesPath
	if edgesLoc == "" {
		edgesLoc = DefaultEdgesPath
	}

	var tables Tables
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := fetchTable(ctx, nodesLoc, opts.HTTPClient, "id")
		if err != nil {
			return fmt.Errorf("node list: %w", err)
		}
		tables.Nodes = recs
		return nil
	})
	g.Go(func() error {
		recs, err := fetchTable(ctx, edgesLoc, opts.HTTPClient, "source", "target")
		if err != nil {
			return fmt.Errorf("edge list: %w", err)
		}
		tables.Edges = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	debug.Log("fetched %d node records and %d edge records in %v", len(tables.Nodes), len(tables.Edges), time.Since(start))
	return &tables, nil
}

// Load fetches both tables and preprocesses them into a graph. Links are
// not resolved; that happens when the layout is set up.
func Load(ctx context.Context, opts Options) (*model.Graph, error) {
	tables, err := Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	return Preprocess(tables.Nodes, tables.Edges), nil
}

func fetchTable(ctx context.Context, loc string, client *http.Client, required ...string) ([]Record, error) {
	src, err := datasource.Resolve(loc)
	if err != nil {
		return nil, err
	}
	rc, err := datasource.Open(ctx, src, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	recs, err := ReadCSV(rc, required...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Location, err)
	}
	return recs, nil
}

// ReadCSV parses comma-separated text with a header row. Short rows yield
// empty strings for the missing columns; extra cells are dropped.
func ReadCSV(r io.Reader, required ...string) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table")
	}
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	for _, col := range required {
		if !contains(header, col) {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	var recs []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse row %d: %w", len(recs)+2, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
