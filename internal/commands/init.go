package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/contflow/contflow/internal/config"
	"github.com/contflow/contflow/internal/gitops"
	"github.com/contflow/contflow/internal/importer"
	"github.com/contflow/contflow/internal/store"
	"github.com/contflow/contflow/internal/taxonomy"
)

func newInitCommand() *cobra.Command {
	var name string
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ContFlow workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), absDir, name, useGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&useGit, "git", false, "version the configuration and chart of accounts in git")

	return cmd
}

func runInit(ctx context.Context, dir, name string, useGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default(name)

	// Create directory structure.
	dirs := []string{
		"accounts",
		"logs",
		"data",
		cfg.Import.Dir,
		filepath.Join(cfg.Import.Dir, importer.ProcessedDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write the default chart of accounts.
	chart := taxonomy.NewService(taxonomy.DefaultChart())
	if err := chart.Save(config.Path(dir, cfg.Taxonomy.Path)); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	gitignore := "data/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, cfg.Import.Dir, ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	// Create the ledger schema.
	st, err := store.Open(ctx, cfg.Database.Driver, cfg.DSN(dir))
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	fmt.Printf("Initialized ContFlow workspace for %s at %s (%d chart entries)\n", name, dir, chart.Len())

	if !useGit {
		return nil
	}
	if !gitops.IsRepo(dir) {
		if err := gitops.Init(ctx, dir); err != nil {
			return err
		}
	}
	hash, err := gitops.Commit(ctx, dir, "init: "+name, gitops.DefaultAuthor,
		config.FileName, cfg.Taxonomy.Path, ".gitignore", filepath.Join(cfg.Import.Dir, ".gitkeep"))
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}
	fmt.Printf("Committed workspace files (%s)\n", hash)
	return nil
}
