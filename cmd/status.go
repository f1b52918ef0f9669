package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/intelligrit/emotion-atlas/internal/pipeline"
	"github.com/intelligrit/emotion-atlas/internal/progress"
	"github.com/intelligrit/emotion-atlas/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pipeline progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := progress.Open(pipeline.FilesIn(dataDir).Progress)
		if errors.Is(err, progress.ErrNotFound) {
			fmt.Println("No progress checkpoint yet. Run emotion-atlas to start.")
			return nil
		}
		if err != nil {
			return err
		}
		sum := tree.Summarize()

		fmt.Printf("Pipeline Status\n")
		fmt.Printf("===============\n")
		fmt.Printf("Countries done:   %d / %d\n", sum.Countries.Done, sum.Countries.Total)
		fmt.Printf("Cities done:      %d / %d\n", sum.Cities.Done, sum.Cities.Total)
		fmt.Printf("Attractions done: %d / %d\n", sum.Attractions.Done, sum.Attractions.Total)
		fmt.Printf("Reviews done:     %d / %d\n", sum.Reviews.Done, sum.Reviews.Total)

		if len(sum.Continents) > 0 {
			fmt.Printf("\nPer-Continent Breakdown\n")
			fmt.Printf("-----------------------\n")
			for _, c := range sum.Continents {
				mark := " "
				if c.Done {
					mark = "x"
				}
				fmt.Printf("  [%s] %-14s countries: %2d/%-2d  cities: %3d/%-3d  attractions: %4d/%-4d  reviews: %5d/%d\n",
					mark, c.Name,
					c.Countries.Done, c.Countries.Total,
					c.Cities.Done, c.Cities.Total,
					c.Attractions.Done, c.Attractions.Total,
					c.Reviews.Done, c.Reviews.Total)
			}
		}

		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		counts := s.CacheCounts()
		var tables []string
		for t := range counts {
			tables = append(tables, t)
		}
		sort.Strings(tables)

		fmt.Printf("\nCaches\n")
		fmt.Printf("------\n")
		for _, t := range tables {
			fmt.Printf("  %-20s %d\n", t, counts[t])
		}
		if id := s.Meta("last_run_id"); id != "" {
			fmt.Printf("\nLast run: %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
