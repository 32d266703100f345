// Command execution for CLI commands.
//
// Information Hiding:
// - Command dispatch logic hidden
// - Provider/assembler/investigator setup hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mailprak/holmesgpt/agent"
	"github.com/mailprak/holmesgpt/config"
	"github.com/mailprak/holmesgpt/conversation"
	"github.com/mailprak/holmesgpt/llm"
	"github.com/mailprak/holmesgpt/overflow"
	"github.com/mailprak/holmesgpt/prompt"
	"github.com/mailprak/holmesgpt/storage"
	"github.com/mailprak/holmesgpt/telemetry"
	"github.com/mailprak/holmesgpt/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider    string
	MaxIter     int
	ToolRetries uint32
	Verbose     bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		MaxIter:     agent.DefaultMaxIterations,
		ToolRetries: 3,
		Verbose:     false,
	}
}

// app bundles the wired components a command runner needs.
type app struct {
	settings     config.Settings
	provider     llm.Provider
	accountant   llm.TokenAccountant
	assembler    *conversation.Assembler
	investigator *agent.Investigator
	logger       *slog.Logger
}

// newApp wires settings, provider, toolsets and the investigation loop.
func newApp(opts Options) (*app, error) {
	logger := newLogger(opts.Verbose)

	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, err
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = settings.Agent.MaxIterations
	}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(
		settings.LLM.Provider,
		apiKey,
		settings.LLM.Model,
		settings.LLM.MaxTokens,
		float32(settings.LLM.Temperature),
	)
	if err != nil {
		return nil, err
	}

	accountant := llm.NewEstimator(settings.LLM.Model,
		llm.WithCharsPerToken(settings.LLM.CharsPerToken),
		llm.WithToolResultPercent(settings.LLM.ToolResultPercent),
	)

	registry, toolsets, err := BuildRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build toolsets: %w", err)
	}

	// Refresh detection is advisory: a changed datasource config is logged
	// and the registry is rebuilt from env on every run anyway.
	if files := DatasourceConfigFiles(); len(files) > 0 {
		tracker := config.NewHashTracker(logger)
		if tracker.CheckAndUpdate(files) {
			logger.Info("datasource configuration changed since last run")
		}
	}

	renderer, err := prompt.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	assembler := conversation.NewAssembler(renderer, accountant).
		WithToolsets(toolsets).
		WithClusterName(settings.Agent.ClusterName)

	policy := overflow.NewPolicy(accountant, telemetry.NewLogReporter(logger), logger).
		WithStorageEnabled(settings.Storage.SpilloverEnabled).
		WithCharsPerToken(settings.LLM.CharsPerToken)

	investigator := agent.NewInvestigator(provider, accountant, registry, policy, logger).
		WithToolConfig(tools.ToolConfig{MaxRetries: opts.ToolRetries}).
		WithMaxIterations(opts.MaxIter)

	return &app{
		settings:     settings,
		provider:     provider,
		accountant:   accountant,
		assembler:    assembler,
		investigator: investigator,
		logger:       logger,
	}, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// instructionsFromEnv loads operator-supplied guidance for the user prompt.
func instructionsFromEnv() prompt.Instructions {
	return prompt.Instructions{
		RunbookCatalog:     os.Getenv("HOLMES_RUNBOOK_CATALOG"),
		GlobalInstructions: os.Getenv("HOLMES_GLOBAL_INSTRUCTIONS"),
		CustomInstructions: os.Getenv("HOLMES_CUSTOM_INSTRUCTIONS"),
	}
}

// RunAsk answers a one-shot question, running tools as needed.
func RunAsk(ctx context.Context, ask string, filePaths []string, opts Options) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}

	scratch, err := overflow.Acquire(a.settings.Storage.SpilloverPath, a.logger)
	if err != nil {
		return fmt.Errorf("failed to acquire scratch storage: %w", err)
	}
	defer scratch.Release()

	messages, err := a.assembler.BuildChatMessages(ask, nil, conversation.ChatOptions{
		Instructions: instructionsFromEnv(),
		FilePaths:    filePaths,
	})
	if err != nil {
		return fmt.Errorf("failed to build conversation: %w", err)
	}

	outcome, err := a.investigator.Investigate(ctx, messages, scratch)
	if err != nil {
		return err
	}

	printOutcome(outcome, opts.Verbose)
	printSpilled(os.Stdout, scratch)
	return nil
}

// RunInvestigate investigates an issue, then answers follow-up questions
// against the accumulated investigation.
func RunInvestigate(ctx context.Context, issue, issueType string, opts Options) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}

	scratch, err := overflow.Acquire(a.settings.Storage.SpilloverPath, a.logger)
	if err != nil {
		return fmt.Errorf("failed to acquire scratch storage: %w", err)
	}
	defer scratch.Release()

	instructions := instructionsFromEnv()

	messages, err := a.assembler.BuildChatMessages(
		fmt.Sprintf("Investigate the following issue and identify the root cause:\n\n%s", issue),
		nil, conversation.ChatOptions{Instructions: instructions},
	)
	if err != nil {
		return fmt.Errorf("failed to build conversation: %w", err)
	}

	outcome, err := a.investigator.Investigate(ctx, messages, scratch)
	if err != nil {
		return err
	}

	printOutcome(outcome, opts.Verbose)
	printSpilled(os.Stdout, scratch)

	investigation := conversation.InvestigationResult{
		Analysis: outcome.Analysis,
		Tools:    outcome.ToolResults,
	}

	// Follow-up loop: each question is re-assembled against the
	// investigation so tool outputs stay within the context window.
	var history []llm.ChatMessage
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("Ask follow-up questions, or 'exit' to quit.\n\n")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		messages, err := a.assembler.BuildIssueChatMessages(conversation.IssueChatRequest{
			Ask:           input,
			IssueType:     issueType,
			History:       history,
			Investigation: investigation,
		}, instructions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		followup, err := a.investigator.Investigate(ctx, messages, scratch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Printf("\n%s\n\n", followup.Analysis)
		history = followup.Messages
	}
	return scanner.Err()
}

// RunChat starts an interactive chat session with persistent history.
func RunChat(ctx context.Context, sessionID string, opts Options) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}

	scratch, err := overflow.Acquire(a.settings.Storage.SpilloverPath, a.logger)
	if err != nil {
		return fmt.Errorf("failed to acquire scratch storage: %w", err)
	}
	defer scratch.Release()

	store, err := storage.OpenSqlite(a.settings.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	session := sessionID
	if session == "" {
		session = "default"
	}

	history, err := store.Load(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(history) > 0 {
		fmt.Printf("Resuming session '%s' (%d messages)\n\n", session, len(history))
	}

	instructions := instructionsFromEnv()

	fmt.Print("Chat with holmes. Type 'exit' to quit.\n\n")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		messages, err := a.assembler.BuildChatMessages(input, history, conversation.ChatOptions{
			Instructions:        instructions,
			IncludeTodoReminder: true,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
			continue
		}

		outcome, err := a.investigator.Investigate(ctx, messages, scratch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
			continue
		}

		fmt.Printf("\n%s\n\n", outcome.Analysis)

		history = append(outcome.Messages, llm.AssistantMessage(outcome.Analysis))
		if err := store.Save(ctx, session, history); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save history: %v\n", err)
		}
	}

	printSpilled(os.Stdout, scratch)
	return scanner.Err()
}

// printSpilled lists the oversized tool results saved to scratch storage
// during a run, so the user can inspect them before the scope is released.
func printSpilled(w io.Writer, scratch *overflow.Scope) {
	records := scratch.List("")
	if len(records) == 0 {
		return
	}
	fmt.Fprintf(w, "Oversized tool results saved to %s:\n", scratch.Dir())
	for _, r := range records {
		fmt.Fprintf(w, "  %s (%d bytes)\n", r.Name, r.Bytes)
	}
}

func printOutcome(outcome agent.Outcome, verbose bool) {
	fmt.Printf("%s\n\n", outcome.Analysis)
	if len(outcome.ToolResults) > 0 {
		fmt.Printf("(%d tool calls)\n", len(outcome.ToolResults))
	}
	if verbose {
		fmt.Printf("LLM calls: %d, tokens: %d prompt / %d completion\n",
			outcome.LLMCalls, outcome.Usage.PromptTokens, outcome.Usage.CompletionTokens)
	}
	if outcome.Truncated {
		fmt.Fprintln(os.Stderr, "Warning: investigation stopped at the iteration limit")
	}
}
