//go:build ignore

// generate_testdata.go writes sample co-occurrence networks for demos and
// benchmarking.
// Usage: go run scripts/generate_testdata.go [outdir]
//
// Creates, under chart_data/ by default:
//
//	cooc32long_bw_{nodelist,edgelist}.csv  (the default inputs, 4 clusters of 8)
//	small_{nodes,edges}.csv    (100 nodes, clustered)
//	medium_{nodes,edges}.csv   (1000 nodes, clustered)
//	large_{nodes,edges}.csv    (5000 nodes, sparse random)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/cooc/pkg/testutil"
)

type datasetSpec struct {
	nodes, edges string
	build        func(*testutil.Generator) testutil.GraphFixture
}

var datasets = []datasetSpec{
	{"cooc32long_bw_nodelist.csv", "cooc32long_bw_edgelist.csv", func(g *testutil.Generator) testutil.GraphFixture { return g.Clusters(4, 8) }},
	{"small_nodes.csv", "small_edges.csv", func(g *testutil.Generator) testutil.GraphFixture { return g.Clusters(10, 10) }},
	{"medium_nodes.csv", "medium_edges.csv", func(g *testutil.Generator) testutil.GraphFixture { return g.Clusters(25, 40) }},
	{"large_nodes.csv", "large_edges.csv", func(g *testutil.Generator) testutil.GraphFixture { return g.Random(5000, 0.0006) }},
}

func main() {
	outputDir := "chart_data"
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for i, ds := range datasets {
		gen := testutil.New(testutil.GeneratorConfig{Seed: int64(i + 1), MaxCount: 500})
		gf := ds.build(gen)
		fmt.Printf("Generating %s (%s)...\n", ds.nodes, gf.Description)

		nodesCSV, edgesCSV := gen.ToCSV(gf)
		for name, content := range map[string]string{ds.nodes: nodesCSV, ds.edges: edgesCSV} {
			path := filepath.Join(outputDir, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
				os.Exit(1)
			}
		}
		fmt.Printf("  %d nodes, %d edges\n", len(gf.Nodes), len(gf.Edges))
	}
	fmt.Println("Done.")
}
