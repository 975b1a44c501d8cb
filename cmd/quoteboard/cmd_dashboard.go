package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quoteboard/cmd/quoteboard/ui"
	"quoteboard/internal/logging"
	"quoteboard/internal/source"
	"quoteboard/internal/watch"

	"github.com/spf13/cobra"
)

// runDashboard opens the interactive dashboard.
func runDashboard(cmd *cobra.Command, args []string) error {
	b, d, err := openBoard(cfg)
	if err != nil {
		return err
	}

	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var changes <-chan watch.Event
	if cfg.Source.Watch && d.Kind != source.KindSheet {
		w, err := watch.New(d.Location, 0)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", d.Location, err)
		}
		defer w.Close()
		w.Start(ctx)
		changes = w.Events()
	}

	styles := ui.NewStyles(ui.ThemeByName(cfg.UI.Theme))
	page := ui.NewQuotePageModel(styles, cfg.Columns, cfg.Query.Policy, cfg.Query.AllLabel)
	page.SetTableHeight(cfg.UI.TableHeight)

	logging.Get(logging.CategoryUI).Info("dashboard start: source=%s cache=%s watch=%v",
		d, b.CacheTTL(), changes != nil)
	return ui.Run(ctx, ui.NewDashboard(ctx, b, page, changes, styles))
}
