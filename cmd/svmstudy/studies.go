package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thalesfsp/svmstudy/internal/store"
)

func newStudiesCmd(a *app) *cobra.Command {
	studiesCmd := &cobra.Command{
		Use:   "studies",
		Short: "List journaled studies",
		RunE:  a.studies,
	}

	studiesCmd.Flags().StringVar(&a.cfg.Store.DBPath, "db", a.cfg.Store.DBPath, "SQLite journal path")

	return studiesCmd
}

func (a *app) studies(cmd *cobra.Command, args []string) error {
	journal, err := a.openStore()
	if err != nil {
		return err
	}
	defer journal.Close()

	studies, err := journal.Studies(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tTRIALS\tBEST TRIAL\tBEST VALUE")

	for _, s := range studies {
		bestTrial, bestValue := "-", "-"
		if s.BestTrial.Valid {
			bestTrial = strconv.FormatInt(s.BestTrial.Int64, 10)
		}

		if s.BestValue.Valid {
			bestValue = fmt.Sprintf("%.4f", s.BestValue.Float64)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", s.ID, s.Name, s.CreatedAt, s.Trials, bestTrial, bestValue)
	}

	return w.Flush()
}

// openStore opens the journal named by --db.
func (a *app) openStore() (*store.Store, error) {
	if a.cfg.Store.DBPath == "" {
		return nil, fmt.Errorf("--db is required")
	}

	return store.Open(a.cfg.Store.DBPath)
}
