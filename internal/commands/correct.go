package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/contflow/contflow/internal/ledger"
	"github.com/contflow/contflow/internal/model"
)

func newCorrectCommand() *cobra.Command {
	var repoDir string
	var c model.Classification

	cmd := &cobra.Command{
		Use:   "correct <id>",
		Short: "Reclassify a transaction and remember the choice for its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}
			return runCorrect(cmd.Context(), repoDir, id, c)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory")
	cmd.Flags().StringVar(&c.Type, "type", "", "type, e.g. Entrada or Saída (required)")
	cmd.Flags().StringVar(&c.Category, "category", "", "category (required)")
	cmd.Flags().StringVar(&c.Subcategory, "subcategory", "", "subcategory (required)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("subcategory")

	return cmd
}

func runCorrect(ctx context.Context, repoDir string, id int64, c model.Classification) error {
	ws, ctx, err := openWorkspace(ctx, repoDir)
	if err != nil {
		return err
	}
	st, err := ws.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	txn, err := ledger.NewService(st).RecordCorrection(ctx, id, c)
	var rue *ledger.RuleUpsertError
	if errors.As(err, &rue) {
		fmt.Printf("Transaction %d classified as %s / %s / %s\n", id, txn.Type, txn.Category, txn.Subcategory)
		return err
	}
	if err != nil {
		return err
	}

	if tax, err := ws.loadTaxonomy(); err == nil && !tax.Contains(txn.Classification) {
		fmt.Fprintf(os.Stderr, "warning: %s / %s / %s is not in the chart of accounts\n", txn.Type, txn.Category, txn.Subcategory)
	}
	fmt.Printf("Transaction %d classified as %s / %s / %s\n", id, txn.Type, txn.Category, txn.Subcategory)
	fmt.Printf("Rule saved for %q\n", model.NormalizeDescription(txn.Description))
	return nil
}
