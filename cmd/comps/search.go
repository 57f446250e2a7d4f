package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/internal/comps"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/internal/server"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/config"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/logger"
)

var (
	searchCategory    string
	searchCondition   string
	searchBrand       string
	searchMarketplace string
	searchLimit       int
	searchToken       string
)

var searchCmd = &cobra.Command{
	Use:   "search <keywords...>",
	Short: "Run one comparables search and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "numeric marketplace category ID")
	searchCmd.Flags().StringVar(&searchCondition, "condition", "", "new, like_new, very_good, good or acceptable")
	searchCmd.Flags().StringVar(&searchBrand, "brand", "", "brand to require in matches")
	searchCmd.Flags().StringVar(&searchMarketplace, "marketplace", "", "marketplace ID (defaults to upstream.marketplace)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", comps.DefaultLimit, "maximum comparables to return")
	searchCmd.Flags().StringVar(&searchToken, "token", "", "bearer token (defaults to upstream.token)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	token := searchToken
	if token == "" {
		token = cfg.Upstream.Token
	}
	if token == "" {
		return fmt.Errorf("search: %w: pass --token or set COMPS_UPSTREAM_TOKEN", server.ErrNotConnected)
	}

	engine, err := comps.NewEngine(server.NewBrowseClient(cfg),
		comps.WithConcurrency(cfg.Engine.Concurrency),
		comps.WithLogger(logger.Get().Named("comps")),
	)
	if err != nil {
		return err
	}

	marketplace := searchMarketplace
	if marketplace == "" {
		marketplace = cfg.Upstream.Marketplace
	}
	q := comps.Query{
		Keywords:    strings.Join(args, " "),
		CategoryID:  searchCategory,
		Condition:   comps.Condition(searchCondition),
		Brand:       searchBrand,
		Marketplace: marketplace,
		Limit:       searchLimit,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := engine.GetComparables(ctx, q, token)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("search: interrupted")
		}
		return err
	}

	out, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
