package main

import (
	"github.com/spf13/cobra"

	"github.com/andrewblim/predictopedia/internal/film"
	"github.com/andrewblim/predictopedia/internal/pipeline"
)

var revisionsFilms string

var revisionsCmd = &cobra.Command{
	Use:   "revisions",
	Short: "Scrape revision history for a saved film table",
	Long:  "Reads a film table and fetches each film's pre-opening edit history into the revision cache. Every film must already have a resolved article title.",
	RunE: func(cmd *cobra.Command, args []string) error {
		films, err := film.ReadTableFile(revisionsFilms)
		if err != nil {
			return err
		}
		p := pipeline.New(cfg)
		return withLedger(cmd.Context(), "revisions", revisionsFilms, func() (int, error) {
			if err := p.ScrapeRevisions(cmd.Context(), films); err != nil {
				return 0, err
			}
			return len(films), nil
		})
	},
}

func init() {
	revisionsCmd.Flags().StringVarP(&revisionsFilms, "films", "f", "films.csv", "film table input path")
	rootCmd.AddCommand(revisionsCmd)
}
