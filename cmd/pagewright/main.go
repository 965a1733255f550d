package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pagewright/internal/config"
	"pagewright/internal/llm"
	"pagewright/internal/logging"
	"pagewright/internal/pipeline"
	"pagewright/internal/prompts"
	"pagewright/internal/publish"
	"pagewright/internal/store"
	"pagewright/internal/types"
	"pagewright/internal/validate"
)

var (
	// Global flags
	verbose   bool
	apiKey    string
	workspace string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pagewright",
	Short: "pagewright - plan, generate, validate and publish static web pages",
	Long: `pagewright turns a natural-language request into a published static web page.

A four-stage pipeline does the work: the Architect plans the page, the Builder
generates it, the Tester validates and scores it (with up to three feedback-driven
attempts), and the Scribe documents it before the result lands in the content
workspace and the project registry.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			workspace, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve workspace: %w", err)
			}
		}
		if err := logging.Initialize(workspace); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var buildCmd = &cobra.Command{
	Use:   "build [request]",
	Short: "Run one generation pipeline for a request",
	Long: `Runs the full Architect → Builder → Tester → Scribe pipeline for a single
request and publishes the result into the workspace.

Example:
  pagewright build "a snake game"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Run the pipeline for every request in a file (one per line)",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

var historyCmd = &cobra.Command{
	Use:   "history [n]",
	Short: "List recent build results",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and workspace health",
	RunE:  runDoctor,
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "LLM API key (overrides config and env)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "content workspace root (default: cwd)")

	rootCmd.AddCommand(buildCmd, batchCmd, historyCmd, doctorCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// signalContext cancels on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// buildManager assembles the full stack for build/batch commands.
func buildManager(ctx context.Context) (*pipeline.Manager, *store.Store, func(), error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, nil, nil, err
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}

	client, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	loader := prompts.NewLoader(cfg.Pipeline.PromptsDir)
	if err := loader.Load(); err != nil {
		return nil, nil, nil, err
	}
	if err := loader.Watch(); err != nil {
		logger.Warn("prompt hot reload unavailable", zap.Error(err))
	}

	st, err := store.Open(store.DefaultPath(workspace))
	if err != nil {
		loader.Close()
		return nil, nil, nil, err
	}

	var committer publish.Committer
	if cfg.Publish.Git.Enabled {
		committer, err = publish.NewGitCommitter(workspace, cfg.Publish.Git.Author, cfg.Publish.Git.Email)
		if err != nil {
			logger.Warn("git publishing disabled", zap.Error(err))
			committer = nil
		}
	}
	publisher := publish.NewWorkspacePublisher(cfg.PagesPath(), st, committer)

	var semantic *validate.SemanticReviewer
	if cfg.Validation.SemanticReview {
		semantic = validate.NewSemanticReviewer(client)
	}

	orch := pipeline.New(pipeline.Config{
		Client:       client,
		Prompts:      loader,
		Validator:    validate.New(validate.Options{MaxCanvasWidth: cfg.Validation.MaxCanvasWidth}),
		Semantic:     semantic,
		Persister:    publisher,
		MaxAttempts:  cfg.Pipeline.MaxAttempts,
		ArtifactsDir: cfg.PagesPath(),
		SlugInUse:    st.SlugExists,
	})

	mgr := pipeline.NewManager(orch, st, cfg.Pipeline.MaxConcurrent)
	cleanup := func() {
		loader.Close()
		st.Close()
	}
	return mgr, st, cleanup, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	mgr, _, cleanup, err := buildManager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	request := strings.Join(args, " ")
	result := mgr.RunOne(ctx, request)
	printResult(result)

	if result.FinalOutcome == types.OutcomeAbandoned {
		return fmt.Errorf("build abandoned: %s", result.Error)
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	var requests []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		requests = append(requests, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read batch file: %w", err)
	}
	if len(requests) == 0 {
		return fmt.Errorf("no requests in %s", args[0])
	}

	mgr, _, cleanup, err := buildManager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	results := mgr.RunBatch(ctx, requests)
	for _, r := range results {
		if r != nil {
			printResult(r)
		}
	}
	return nil
}

func printResult(r *types.BuildResult) {
	switch r.FinalOutcome {
	case types.OutcomeAbandoned:
		fmt.Printf("✗ %q abandoned: %s\n", r.RequestText, r.Error)
		return
	case types.OutcomeDegraded:
		fmt.Printf("△ %q degraded after %d attempts (%d critical left)",
			r.RequestText, len(r.Attempts), r.CriticalCount())
	default:
		fmt.Printf("✓ %q ok in %d attempt(s)", r.RequestText, len(r.Attempts))
	}

	if a := r.FinalAttempt(); a != nil {
		fmt.Printf(" (score %d)", a.Score)
	}
	if r.Plan != nil {
		fmt.Printf(" → %s", r.Plan.Slug)
	}
	if !r.Persisted {
		fmt.Printf(" [NOT PERSISTED: %s]", r.PersistError)
	}
	fmt.Println()

	// A degraded build ships with an explanation of what is still wrong
	if a := r.FinalAttempt(); a != nil && r.FinalOutcome == types.OutcomeDegraded {
		for _, i := range a.Issues {
			fmt.Printf("    critical %s: %s\n", i.Code, i.Message)
		}
		for _, w := range a.Warnings {
			fmt.Printf("    warning  %s: %s\n", w.Code, w.Message)
		}
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit := 20
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid count %q", args[0])
		}
		limit = n
	}

	st, err := store.Open(store.DefaultPath(workspace))
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.History(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No builds yet.")
		return nil
	}

	for _, e := range entries {
		marker := "✓"
		switch e.Outcome {
		case types.OutcomeDegraded:
			marker = "△"
		case types.OutcomeAbandoned:
			marker = "✗"
		}
		fmt.Printf("%s %s  %-24s %-12s score=%-3d attempts=%d\n",
			marker, e.CreatedAt.Format("2006-01-02 15:04"), e.Slug, e.Outcome, e.Score, e.Attempts)
		if e.Outcome == types.OutcomeDegraded {
			for _, w := range e.Warnings {
				fmt.Printf("      %s: %s\n", w.Code, w.Message)
			}
		}
	}
	return nil
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Printf("Workspace: %s\n", workspace)

	cfg, err := config.Load(workspace)
	if err != nil {
		fmt.Printf("✗ config: %v\n", err)
		return err
	}
	fmt.Printf("✓ config loaded (provider=%s model=%s)\n", cfg.LLM.Provider, cfg.LLM.Model)

	if cfg.LLM.APIKey == "" && apiKey == "" {
		fmt.Println("✗ no API key configured (set PAGEWRIGHT_API_KEY or llm.api_key)")
	} else {
		fmt.Println("✓ API key present")
	}

	if cfg.Pipeline.PromptsDir != "" {
		if _, err := os.Stat(cfg.Pipeline.PromptsDir); err != nil {
			fmt.Printf("✗ prompts dir %s: %v\n", cfg.Pipeline.PromptsDir, err)
		} else {
			fmt.Printf("✓ prompts dir %s\n", cfg.Pipeline.PromptsDir)
		}
	}

	st, err := store.Open(store.DefaultPath(workspace))
	if err != nil {
		fmt.Printf("✗ store: %v\n", err)
		return err
	}
	defer st.Close()
	projects, err := st.Projects()
	if err != nil {
		fmt.Printf("✗ registry: %v\n", err)
		return err
	}
	fmt.Printf("✓ store ok (%d published projects)\n", len(projects))

	if err := os.MkdirAll(cfg.PagesPath(), 0755); err != nil {
		fmt.Printf("✗ pages dir: %v\n", err)
		return err
	}
	fmt.Printf("✓ pages dir %s\n", cfg.PagesPath())
	return nil
}
