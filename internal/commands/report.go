package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/contflow/contflow/internal/ledger"
	"github.com/contflow/contflow/internal/model"
	"github.com/contflow/contflow/internal/report"
	"github.com/contflow/contflow/internal/store"
)

func newReportCommand() *cobra.Command {
	var repoDir, from, to string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the cash-flow statement for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRange(from, to)
			if err != nil {
				return err
			}
			return runReport(cmd.Context(), repoDir, r)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory")
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default: open)")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (default: open)")

	return cmd
}

func parseRange(from, to string) (store.DateRange, error) {
	var r store.DateRange
	var err error
	if from != "" {
		if r.From, err = time.Parse(model.DateFormat, from); err != nil {
			return r, fmt.Errorf("invalid --from %q: want YYYY-MM-DD", from)
		}
	}
	if to != "" {
		if r.To, err = time.Parse(model.DateFormat, to); err != nil {
			return r, fmt.Errorf("invalid --to %q: want YYYY-MM-DD", to)
		}
	}
	return r, nil
}

func runReport(ctx context.Context, repoDir string, r store.DateRange) error {
	ws, ctx, err := openWorkspace(ctx, repoDir)
	if err != nil {
		return err
	}
	st, err := ws.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	txns, err := ledger.NewService(st).Query(ctx, r)
	if err != nil {
		return err
	}
	return report.Render(os.Stdout, reportTitle(ws.cfg.Business.Name, r), report.Summarize(txns))
}

func reportTitle(business string, r store.DateRange) string {
	period := "todo o período"
	switch {
	case !r.From.IsZero() && !r.To.IsZero():
		period = r.From.Format("02/01/2006") + " a " + r.To.Format("02/01/2006")
	case !r.From.IsZero():
		period = "desde " + r.From.Format("02/01/2006")
	case !r.To.IsZero():
		period = "até " + r.To.Format("02/01/2006")
	}
	return fmt.Sprintf("%s: fluxo de caixa, %s", business, period)
}
