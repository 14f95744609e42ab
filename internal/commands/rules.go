package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/contflow/contflow/internal/ledger"
)

func newRulesCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List learned classification rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(cmd.Context(), repoDir)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory")

	return cmd
}

func runRules(ctx context.Context, repoDir string) error {
	ws, ctx, err := openWorkspace(ctx, repoDir)
	if err != nil {
		return err
	}
	st, err := ws.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rules, err := ledger.NewService(st).Rules(ctx)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		fmt.Println("No rules yet")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Descrição\tTipo\tCategoria\tSubcategoria")
	for _, r := range rules {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Description, r.Type, r.Category, r.Subcategory)
	}
	return tw.Flush()
}
