package loader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/cooc/pkg/loader"
	"github.com/vanderheijden86/cooc/pkg/testutil"
)

const nodesCSV = `id,label,bw_count,bw_diff,bw_which,w_count,louvain,fstgrdy
1,A,10,2,b,3,0,1
2,B,5,-1,w,4,1,1
`

const edgesCSV = `source,target
1,2
`

func TestLoad_Files(t *testing.T) {
	dir := t.TempDir()
	nodes := testutil.WriteFile(t, filepath.Join(dir, "nodes.csv"), nodesCSV)
	edges := testutil.WriteFile(t, filepath.Join(dir, "edges.csv"), edgesCSV)

	g, err := loader.Load(context.Background(), loader.Options{NodesPath: nodes, EdgesPath: edges})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	testutil.AssertNodeCount(t, g, 2)
	if len(g.Links) != 1 {
		t.Fatalf("links = %d, want 1", len(g.Links))
	}
	a := g.NodeByID("1")
	if a == nil || a.Label != "A" || a.BWCount.Value != 10 || a.Louvain.Value != 0 {
		t.Errorf("node 1 = %+v", a)
	}
	if a.BCount != a.BWCount {
		t.Errorf("b_count should fall back to bw_count, got %v", a.BCount)
	}
	if err := g.Resolve(); err != nil {
		t.Errorf("Resolve: %v", err)
	}
}

func TestLoad_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chart_data/nodes.csv":
			_, _ = w.Write([]byte(nodesCSV))
		case "/chart_data/edges.csv":
			_, _ = w.Write([]byte(edgesCSV))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	g, err := loader.Load(context.Background(), loader.Options{
		NodesPath:  srv.URL + "/chart_data/nodes.csv",
		EdgesPath:  srv.URL + "/chart_data/edges.csv",
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	testutil.AssertNodeCount(t, g, 2)
}

func TestLoad_EitherFailureAborts(t *testing.T) {
	dir := t.TempDir()
	nodes := testutil.WriteFile(t, filepath.Join(dir, "nodes.csv"), nodesCSV)

	_, err := loader.Load(context.Background(), loader.Options{
		NodesPath: nodes,
		EdgesPath: filepath.Join(dir, "missing.csv"),
	})
	if err == nil {
		t.Fatal("expected error when edge list is missing")
	}
	if !strings.Contains(err.Error(), "edge list") {
		t.Errorf("error should name the failing table: %v", err)
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := loader.Load(ctx, loader.Options{
		NodesPath:  srv.URL + "/n.csv",
		EdgesPath:  srv.URL + "/e.csv",
		HTTPClient: srv.Client(),
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := loader.ReadCSV(strings.NewReader("from,to\n1,2\n"), "source", "target")
	if !errors.Is(err, loader.ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
}

func TestReadCSV_RaggedRowsAndBOM(t *testing.T) {
	in := "\xef\xbb\xbfid,label,bw_count\n1,A\n2,B,7,extra\n\n"
	recs, err := loader.ReadCSV(strings.NewReader(in), "id")
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if recs[0]["bw_count"] != "" {
		t.Errorf("missing cell should be empty, got %q", recs[0]["bw_count"])
	}
	if recs[1]["bw_count"] != "7" {
		t.Errorf("bw_count = %q, want 7", recs[1]["bw_count"])
	}
}

func TestReadCSV_Empty(t *testing.T) {
	if _, err := loader.ReadCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestLoad_GeneratedFixture(t *testing.T) {
	gen := testutil.NewDefault()
	gf := gen.Clusters(3, 5)
	nodes, edges := testutil.WriteCSVFixture(t, t.TempDir(), gf)

	g, err := loader.Load(context.Background(), loader.Options{NodesPath: nodes, EdgesPath: edges})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	testutil.AssertNodeCount(t, g, len(gf.Nodes))
	if len(g.Links) != len(gf.Edges) {
		t.Errorf("links = %d, want %d", len(g.Links), len(gf.Edges))
	}
}

// FuzzReadCSV verifies the table parser never panics.
//
// Run with: go test -fuzz=FuzzReadCSV -fuzztime=1m ./pkg/loader/...
func FuzzReadCSV(f *testing.F) {
	seeds := []string{
		nodesCSV,
		edgesCSV,
		"",
		"id\n",
		"id,label\n\"unterminated,x\n",
		"id,,\n1,,\n",
		"\xef\xbb\xbf",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, in string) {
		recs, err := loader.ReadCSV(strings.NewReader(in), "id")
		if err != nil {
			return
		}
		g := loader.Preprocess(recs, nil)
		if len(g.Nodes) != len(recs) {
			t.Fatalf("preprocess dropped records: %d vs %d", len(g.Nodes), len(recs))
		}
	})
}
