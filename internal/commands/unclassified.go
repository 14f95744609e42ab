package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/contflow/contflow/internal/ledger"
	"github.com/contflow/contflow/internal/report"
)

func newUnclassifiedCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "unclassified",
		Short: "List transactions awaiting manual classification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnclassified(cmd.Context(), repoDir)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory")

	return cmd
}

func runUnclassified(ctx context.Context, repoDir string) error {
	ws, ctx, err := openWorkspace(ctx, repoDir)
	if err != nil {
		return err
	}
	st, err := ws.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	txns, err := ledger.NewService(st).Unclassified(ctx)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		fmt.Println("No unclassified transactions")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tData\tValor\tDescrição")
	for _, t := range txns {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.DateString(), report.Money(t.Amount), t.Description)
	}
	return tw.Flush()
}
