package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contflow/contflow/internal/classifier"
)

func newClassifyCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Show how a description would be classified",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd.Context(), repoDir, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory")

	return cmd
}

func runClassify(ctx context.Context, repoDir, description string) error {
	ws, ctx, err := openWorkspace(ctx, repoDir)
	if err != nil {
		return err
	}
	tax, err := ws.loadTaxonomy()
	if err != nil {
		return err
	}
	st, err := ws.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := classifier.New(st, tax).Classify(ctx, description)
	if err != nil {
		return err
	}
	fmt.Printf("%s / %s / %s (%s)\n", res.Type, res.Category, res.Subcategory, res.Source)
	return nil
}
