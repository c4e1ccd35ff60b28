package main

import (
	"github.com/spf13/cobra"

	"github.com/andrewblim/predictopedia/internal/pipeline"
)

var (
	featuresFilms  string
	featuresOutput string
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Extract model features from a film table and the revision cache",
	Long:  "Reads a film table, loads each film's cached revisions, and writes the feature table. A film with a resolved title but no cache entry aborts the run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.New(cfg)
		return withLedger(cmd.Context(), "features", featuresFilms, func() (int, error) {
			return p.Features(cmd.Context(), featuresFilms, featuresOutput)
		})
	},
}

func init() {
	featuresCmd.Flags().StringVarP(&featuresFilms, "films", "f", "films.csv", "film table input path")
	featuresCmd.Flags().StringVarP(&featuresOutput, "output", "o", "features.csv", "feature table output path")
	rootCmd.AddCommand(featuresCmd)
}
