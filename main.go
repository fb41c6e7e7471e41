package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pivolan/readstats_dashboard/config"
	"github.com/pivolan/readstats_dashboard/dashboard"
	"github.com/pivolan/readstats_dashboard/dataset"
	"github.com/pivolan/readstats_dashboard/domain/models"
	"github.com/pivolan/readstats_dashboard/export"
)

var (
	midThreshold  int
	longThreshold int
	listenAddr    string
	closedFile    string
	tableName     string

	rootCmd = &cobra.Command{
		Use:   "readstats-dashboard",
		Short: "Interactive dashboard over per-read sequencing statistics",
	}

	serveCmd = &cobra.Command{
		Use:   "serve [per_read_stats.tsv]",
		Short: "Load a per-read statistics table and serve the dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServe,
	}

	summaryCmd = &cobra.Command{
		Use:   "summary [per_read_stats.tsv]",
		Short: "Print per sample and bucket statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSummary,
	}
)

func init() {
	for _, cmd := range []*cobra.Command{serveCmd, summaryCmd} {
		cmd.Flags().IntVar(&midThreshold, "mid", 0, "mid read length threshold (default from MID_THRESHOLD)")
		cmd.Flags().IntVar(&longThreshold, "long", 0, "long read length threshold (default from LONG_THRESHOLD)")
		cmd.Flags().StringVar(&tableName, "table", "", "load reads from this ClickHouse table (DB_DSN) instead of a file")
	}
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default from LISTEN_ADDR)")
	serveCmd.Flags().StringVar(&closedFile, "closed-file", "", "file written when the dashboard is closed (default from DASHBOARD_CLOSED_FILE)")

	rootCmd.AddCommand(serveCmd, summaryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// thresholds resolves flags over config.
func thresholds(cfg *config.Config) (models.Thresholds, error) {
	t := models.Thresholds{Mid: cfg.MidThreshold, Long: cfg.LongThreshold}
	if midThreshold != 0 {
		t.Mid = midThreshold
	}
	if longThreshold != 0 {
		t.Long = longThreshold
	}
	return t, t.Validate()
}

func loadDataset(cfg *config.Config, args []string) (*models.Dataset, error) {
	if tableName != "" {
		if cfg.DbDsn == "" {
			return nil, fmt.Errorf("--table needs DB_DSN")
		}
		db, err := dataset.OpenClickHouse(cfg.DbDsn)
		if err != nil {
			return nil, fmt.Errorf("cannot connect to clickhouse: %w", err)
		}
		return dataset.LoadFromClickHouse(db, models.ClickhouseTableName(tableName))
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("a per-read statistics file or --table is required")
	}
	return dataset.LoadFile(args[0])
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	t, err := thresholds(cfg)
	if err != nil {
		return err
	}
	ds, err := loadDataset(cfg, args)
	if err != nil {
		return err
	}

	var mirrors []export.Sink
	if cfg.TgToken != "" && cfg.TgChatID != 0 {
		tg, err := export.NewTelegramSink(cfg.TgToken, cfg.TgChatID)
		if err != nil {
			log.Printf("telegram mirror disabled: %v", err)
		} else {
			mirrors = append(mirrors, tg)
		}
	}

	addr := cfg.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}
	closed := cfg.ClosedFile
	if closedFile != "" {
		closed = closedFile
	}

	srv := newServer(ds, t, closed, mirrors...)
	log.Printf("listen on: http://localhost%s", addr)
	return http.ListenAndServe(addr, srv.routes())
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	t, err := thresholds(cfg)
	if err != nil {
		return err
	}
	ds, err := loadDataset(cfg, args)
	if err != nil {
		return err
	}
	st, err := dashboard.NewFilterState(ds, t)
	if err != nil {
		return err
	}
	view, _, err := dashboard.Recompute(ds, st)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderSummaryText(view, ds.Samples))
	return nil
}
