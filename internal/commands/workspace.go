package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/contflow/contflow/internal/config"
	"github.com/contflow/contflow/internal/logger"
	"github.com/contflow/contflow/internal/store"
	"github.com/contflow/contflow/internal/taxonomy"
)

// workspace is an initialised ContFlow directory and its configuration.
type workspace struct {
	root string
	cfg  *config.Config
	log  zerolog.Logger
}

// openWorkspace loads the configuration under repoDir and returns a context
// carrying the configured logger.
func openWorkspace(ctx context.Context, repoDir string) (*workspace, context.Context, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, ctx, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.LoadWorkspace(root)
	if err != nil {
		return nil, ctx, fmt.Errorf("loading workspace %s: %w", root, err)
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: logger.Format(cfg.Log.Format)})
	ws := &workspace{root: root, cfg: cfg, log: log}
	return ws, logger.WithContext(ctx, log), nil
}

func (w *workspace) openStore(ctx context.Context) (*store.SQLStore, error) {
	return store.Open(ctx, w.cfg.Database.Driver, w.cfg.DSN(w.root))
}

func (w *workspace) loadTaxonomy() (*taxonomy.Service, error) {
	return taxonomy.Load(config.Path(w.root, w.cfg.Taxonomy.Path))
}

func (w *workspace) importDir() string {
	return config.Path(w.root, w.cfg.Import.Dir)
}
