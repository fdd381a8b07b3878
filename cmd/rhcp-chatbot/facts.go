package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gilbertordx/rhcp-chatbot/pkg/config"
	"github.com/gilbertordx/rhcp-chatbot/pkg/knowledge"
	"github.com/gilbertordx/rhcp-chatbot/pkg/knowledge/facts"
	"github.com/gilbertordx/rhcp-chatbot/pkg/logging"
)

func newFactsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Manage the SQLite facts database",
	}
	cmd.AddCommand(newFactsBuildCommand())
	cmd.AddCommand(newFactsStatsCommand())
	return cmd
}

func newFactsBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "build",
		Short:   "Derive facts from the knowledge base and rebuild the database",
		Example: "  rhcp-chatbot facts build",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel, "console")
			if err != nil {
				return err
			}
			defer log.Sync()

			base := knowledge.LoadBase(cfg.KnowledgeDir, log)
			for _, gap := range base.Validate() {
				log.Warn("knowledge base gap", zap.String("gap", gap))
			}

			store, err := facts.Open(cfg.FactsDBPath)
			if err != nil {
				return fmt.Errorf("open facts store: %w", err)
			}
			defer store.Close()

			if err := store.Rebuild(cmd.Context(), base); err != nil {
				return fmt.Errorf("rebuild facts: %w", err)
			}
			return printFactsStats(cmd.Context(), store)
		},
	}
}

func newFactsStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "stats",
		Short:   "Print facts database counts",
		Example: "  rhcp-chatbot facts stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := facts.Open(cfg.FactsDBPath)
			if err != nil {
				return fmt.Errorf("open facts store: %w", err)
			}
			defer store.Close()
			return printFactsStats(cmd.Context(), store)
		},
	}
}

func printFactsStats(ctx context.Context, store *facts.Store) error {
	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}
	fmt.Printf("facts: %d total (%d member, %d album, %d song) at %s\n",
		stats.TotalFacts, stats.TypeCounts["member"], stats.TypeCounts["album"], stats.TypeCounts["song"], stats.Path)
	return nil
}
