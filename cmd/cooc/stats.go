package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/cooc/pkg/analysis"
)

func (a *app) statsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print structural statistics of the network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			g, err := loadGraph(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			s := analysis.Analyze(g)

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(s, "", "  ")
				if err != nil {
					return fmt.Errorf("encode stats: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
			writeStats(out, s)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func writeStats(w io.Writer, s analysis.Stats) {
	fmt.Fprintf(w, "Nodes:        %d\n", s.NodeCount)
	fmt.Fprintf(w, "Links:        %d\n", s.LinkCount)
	fmt.Fprintf(w, "Density:      %.4f\n", s.Density)
	fmt.Fprintf(w, "Components:   %d (isolated: %d)\n", s.Components, s.Isolated)
	if s.SelfLoops+s.DuplicateLinks+s.DanglingLinks+s.DuplicateIDs > 0 {
		fmt.Fprintf(w, "Skipped:      %d self-loops, %d duplicate links, %d dangling links, %d duplicate ids\n",
			s.SelfLoops, s.DuplicateLinks, s.DanglingLinks, s.DuplicateIDs)
	}
	fmt.Fprintf(w, "Max k-core:   %d\n", s.MaxCore)
	fmt.Fprintf(w, "Communities:  %d (modularity %.3f)\n", len(s.CommunitySizes), s.Modularity)

	writeRanked(w, "Top degree", s.TopDegree, "%.0f")
	writeRanked(w, "Top PageRank", s.TopPageRank, "%.4f")
	writeRanked(w, "Top betweenness", s.TopBetweenness, "%.1f")

	if len(s.Skipped) > 0 {
		keys := make([]string, 0, len(s.Skipped))
		for k := range s.Skipped {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "Skipped %s: %s\n", k, s.Skipped[k])
		}
	}
}

func writeRanked(w io.Writer, title string, ranked []analysis.Ranked, scoreFmt string) {
	if len(ranked) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(title)))
	for i, r := range ranked {
		label := r.Label
		if label == "" {
			label = r.ID
		}
		fmt.Fprintf(w, "%3d. %-24s "+scoreFmt+"\n", i+1, label, r.Score)
	}
}
