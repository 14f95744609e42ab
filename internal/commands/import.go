package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/contflow/contflow/internal/importer"
	"github.com/contflow/contflow/internal/importlog"
	"github.com/contflow/contflow/internal/ingest"
	"github.com/contflow/contflow/internal/logger"
	"github.com/contflow/contflow/internal/store"
)

func newImportCommand() *cobra.Command {
	var repoDir string
	var format string

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import bank statements into the ledger",
		Long: `Import bank statements into the ledger.

With no files, every statement in the workspace import directory is imported
and moved to its processed/ subdirectory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), repoDir, args, format)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory")
	cmd.Flags().StringVar(&format, "format", "", "statement format (csv, xlsx, xls); default from file extension")

	return cmd
}

func runImport(ctx context.Context, repoDir string, files []string, format string) error {
	ws, ctx, err := openWorkspace(ctx, repoDir)
	if err != nil {
		return err
	}

	st, err := ws.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	imp, err := newStatementImporter(ws, st, format)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		n, err := imp.importPending(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Printf("No statements in %s\n", ws.importDir())
		}
		return nil
	}

	for _, path := range files {
		if _, err := imp.importFile(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// statementImporter runs statement files through the ingest pipeline and
// records each batch in the import log.
type statementImporter struct {
	ws       *workspace
	pipeline *ingest.Pipeline
	registry *importer.Registry
	format   string
}

func newStatementImporter(ws *workspace, st store.Store, format string) (*statementImporter, error) {
	tax, err := ws.loadTaxonomy()
	if err != nil {
		return nil, err
	}
	comma, err := ws.cfg.Comma()
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = ws.cfg.Import.Format
	}
	return &statementImporter{
		ws:       ws,
		pipeline: ingest.New(st, tax),
		registry: importer.DefaultRegistry(comma),
		format:   format,
	}, nil
}

// importFile imports one statement and prints its report.
func (s *statementImporter) importFile(ctx context.Context, path string) (*ingest.Report, error) {
	parser, err := s.registry.ForFile(path, s.format)
	if err != nil {
		return nil, err
	}
	rep, err := s.pipeline.RunFile(ctx, parser, path)
	if err != nil {
		return nil, err
	}
	printReport(rep)

	entry := importlog.Entry{
		Timestamp:  time.Now().UTC(),
		BatchID:    rep.BatchID,
		File:       rep.File,
		Inserted:   rep.Inserted,
		Duplicates: rep.Duplicates,
		Rejected:   len(rep.Rejected),
	}
	if err := importlog.Append(s.ws.root, []importlog.Entry{entry}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write import log: %v\n", err)
	}
	return rep, nil
}

// importPending imports every statement in the import directory and moves
// it to processed/. Files that cannot be read are moved to failed/ and the
// pass goes on; store errors end the pass. It returns the number of files
// imported.
func (s *statementImporter) importPending(ctx context.Context) (int, error) {
	dir := s.ws.importDir()
	files, err := importer.Scan(dir)
	if err != nil {
		return 0, err
	}

	log := logger.FromContext(ctx)
	n := 0
	for _, f := range files {
		_, err := s.importFile(ctx, f.Path)
		var re importer.ReadError
		if errors.As(err, &re) {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", f.Name, err)
			log.Warn().Str("file", f.Name).Err(err).Msg("statement skipped")
			if err := importer.MarkFailed(dir, f.Name); err != nil {
				return n, err
			}
			continue
		}
		if err != nil {
			return n, fmt.Errorf("importing %s: %w", f.Name, err)
		}
		if err := importer.MarkProcessed(dir, f.Name); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func printReport(rep *ingest.Report) {
	fmt.Printf("%s: %d imported, %d duplicates, %d rejected (batch %s)\n",
		rep.File, rep.Inserted, rep.Duplicates, len(rep.Rejected), rep.BatchID)
	for _, r := range rep.Rejected {
		fmt.Printf("  rejected %v\n", r.Err)
	}
}
