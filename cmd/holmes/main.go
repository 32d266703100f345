// Package main provides the holmes CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mailprak/holmesgpt/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	provider    string
	maxIter     int
	toolRetries uint32
	verbose     bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "holmes",
		Short: "LLM-powered investigation of operational issues",
		Long: `An agent that investigates operational issues by querying your
observability datasources, keeping tool output within the model's context
window and spilling oversized results to scratch storage.

Commands:
- ask: one-shot question with tool access
- investigate: investigate an issue, then answer follow-up questions
- chat: interactive session with persistent history`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().IntVarP(&maxIter, "max-iter", "m", 0, "Maximum tool-calling iterations (0 = use AGENT_MAX_ITERATIONS)")
	rootCmd.PersistentFlags().Uint32Var(&toolRetries, "tool-retries", 3, "Maximum retries for tool execution")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(investigateCmd())
	rootCmd.AddCommand(chatCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	opts := cli.DefaultOptions()
	opts.Provider = provider
	opts.MaxIter = maxIter
	opts.ToolRetries = toolRetries
	opts.Verbose = verbose
	return opts
}

func askCmd() *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a one-shot question with tool access",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunAsk(context.Background(), strings.Join(args, " "), files, options())
		},
	}

	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "Attach a file to the question (repeatable)")
	return cmd
}

func investigateCmd() *cobra.Command {
	var issueType string

	cmd := &cobra.Command{
		Use:   "investigate [issue description]",
		Short: "Investigate an issue, then answer follow-up questions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunInvestigate(context.Background(), strings.Join(args, " "), issueType, options())
		},
	}

	cmd.Flags().StringVar(&issueType, "issue-type", "alert", "Issue source type (alert, ticket, event)")
	return cmd
}

func chatCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive session with persistent history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunChat(context.Background(), sessionID, options())
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session ID for history persistence")
	return cmd
}
