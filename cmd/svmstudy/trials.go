package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTrialsCmd(a *app) *cobra.Command {
	var studyID string

	trialsCmd := &cobra.Command{
		Use:   "trials",
		Short: "List the trials of a journaled study",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.trials(cmd, studyID)
		},
	}

	trialsCmd.Flags().StringVar(&a.cfg.Store.DBPath, "db", a.cfg.Store.DBPath, "SQLite journal path")
	trialsCmd.Flags().StringVar(&studyID, "study", "", "Study id (required)")
	_ = trialsCmd.MarkFlagRequired("study")

	return trialsCmd
}

func (a *app) trials(cmd *cobra.Command, studyID string) error {
	journal, err := a.openStore()
	if err != nil {
		return err
	}
	defer journal.Close()

	trials, err := journal.Trials(cmd.Context(), studyID)
	if err != nil {
		return err
	}

	if len(trials) == 0 {
		return fmt.Errorf("no trials for study %q", studyID)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSTATE\tVALUE\tDURATION\tPARAMS\tERROR")

	for _, t := range trials {
		value := "inf"
		if t.Value.Valid {
			value = fmt.Sprintf("%.4f", t.Value.Float64)
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%dms\t%s\t%s\n", t.Number, t.State, value, t.DurationMS, t.Params, t.Error.String)
	}

	return w.Flush()
}
