package main

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/andrewblim/predictopedia/internal/pipeline"
)

var (
	retrieveOutput    string
	retrieveRevisions bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <year|start-end> [year...]",
	Short: "Scrape and reconcile film data for the given years",
	Long:  "Scrapes the annual gross charts, attaches critic-catalog metadata and resolved article titles, and writes the film table. With --revisions it also fills the revision cache.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		years, err := parseYearArgs(args)
		if err != nil {
			return err
		}
		p := pipeline.New(cfg)
		return withLedger(cmd.Context(), "retrieve", strings.Join(args, " "), func() (int, error) {
			return p.Retrieve(cmd.Context(), years, retrieveOutput, retrieveRevisions)
		})
	},
}

func init() {
	retrieveCmd.Flags().StringVarP(&retrieveOutput, "output", "o", "films.csv", "film table output path")
	retrieveCmd.Flags().BoolVar(&retrieveRevisions, "revisions", false, "also scrape revision history into the cache")
	rootCmd.AddCommand(retrieveCmd)
}

// parseYearArgs accepts single years and inclusive ranges like 2008-2011.
func parseYearArgs(args []string) ([]int, error) {
	var years []int
	for _, arg := range args {
		if start, end, ok := strings.Cut(arg, "-"); ok {
			s, err1 := strconv.Atoi(start)
			e, err2 := strconv.Atoi(end)
			if err1 != nil || err2 != nil || e < s {
				return nil, eris.Errorf("invalid year range %q", arg)
			}
			for y := s; y <= e; y++ {
				years = append(years, y)
			}
			continue
		}
		y, err := strconv.Atoi(arg)
		if err != nil {
			return nil, eris.Errorf("invalid year %q", arg)
		}
		years = append(years, y)
	}
	return years, nil
}
