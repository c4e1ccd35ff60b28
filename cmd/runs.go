package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrewblim/predictopedia/internal/store"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CREATED\tCOMMAND\tARGS\tFILMS\tSTATUS")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.Command, r.Args, r.Films, r.Status)
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
