package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func buildRootCommand() *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "rhcp-chatbot",
		Short: "Conversational Red Hot Chili Peppers catalog bot",
		Long: strings.TrimSpace(`rhcp-chatbot answers natural-language questions about the Red Hot
Chili Peppers: members, albums, songs, and band history. It combines a
statistical intent classifier with knowledge-base entity resolution and
per-session conversational memory.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Printf("rhcp-chatbot %s\n", formatVersion())
				return nil
			}
			_ = cmd.Help()
			return fmt.Errorf("a subcommand is required")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version metadata")

	root.AddCommand(newServeCommand())
	root.AddCommand(newChatCommand())
	root.AddCommand(newFactsCommand())

	return root
}
