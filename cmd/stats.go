package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/intelligrit/emotion-atlas/internal/graph"
	"github.com/intelligrit/emotion-atlas/internal/pipeline"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics of the saved graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		files := pipeline.FilesIn(dataDir)
		g, err := graph.Load(files.Graph, files.Catalog)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No graph saved yet. Run emotion-atlas to start.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("loading graph: %w", err)
		}
		st := g.Stats()

		if statsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}

		fmt.Printf("Network Statistics\n")
		fmt.Printf("==================\n")
		fmt.Printf("Nodes:          %d\n", st.NumNodes)
		fmt.Printf("Edges:          %d\n", st.NumEdges)
		fmt.Printf("Average degree: %.2f\n", st.AvgDegree)
		fmt.Printf("Components:     %d\n", st.NumComponents)
		if st.AvgAttractionDegree != nil {
			fmt.Printf("Average attraction degree: %.2f\n", *st.AvgAttractionDegree)
		}
		if st.AvgEmotionDegree != nil {
			fmt.Printf("Average emotion degree:    %.2f\n", *st.AvgEmotionDegree)
		}
		if n := st.HighestDegreeAttraction; n != nil {
			fmt.Printf("Most connected attraction: %s (%d)\n", n.Name, n.Degree)
		}
		if n := st.HighestDegreeEmotion; n != nil {
			fmt.Printf("Most connected emotion:    %s (%d)\n", n.Name, n.Degree)
		}
		if e := st.HighestWeightEdge; e != nil {
			fmt.Printf("Heaviest edge: %s - %s (weight %d over %d observations)\n",
				e.SourceName, e.TargetName, e.Weight, e.Count)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}
