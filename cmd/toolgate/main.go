// Package main provides the toolgate command: a coding agent whose tool
// calls pass through a policy engine, user confirmation and output
// containment before reaching the model.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Cyclone1070/toolgate/internal/config"
	"github.com/Cyclone1070/toolgate/internal/confirmation"
	"github.com/Cyclone1070/toolgate/internal/containment"
	"github.com/Cyclone1070/toolgate/internal/policy"
	"github.com/Cyclone1070/toolgate/internal/provider/gemini"
	"github.com/Cyclone1070/toolgate/internal/session"
	"github.com/Cyclone1070/toolgate/internal/tool"
	"github.com/Cyclone1070/toolgate/internal/tool/directory"
	"github.com/Cyclone1070/toolgate/internal/tool/file"
	"github.com/Cyclone1070/toolgate/internal/tool/fsutil"
	"github.com/Cyclone1070/toolgate/internal/tool/pathutil"
	"github.com/Cyclone1070/toolgate/internal/tool/shell"
	"github.com/Cyclone1070/toolgate/internal/ui"
	"github.com/Cyclone1070/toolgate/internal/workflow"
	"github.com/Cyclone1070/toolgate/internal/workflow/loop"
	"github.com/Cyclone1070/toolgate/internal/workflow/toolmanager"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const banner = `
 _              _             _
| |_ ___   ___ | | __ _  __ _| |_ ___
| __/ _ \ / _ \| |/ _` + "`" + ` |/ _` + "`" + ` | __/ _ \
| || (_) | (_) | | (_| | (_| | ||  __/
 \__\___/ \___/|_|\__, |\__,_|\__\___|
                  |___/
`

const systemInstruction = "You are a coding agent working inside the user's workspace. " +
	"Use the tools to inspect and change files and to run commands. " +
	"Some calls need the user's approval and may be denied; when that happens, do not retry the same call. " +
	"Large tool outputs are summarized and saved; the reference tells you where."

// options holds the command-line flags.
type options struct {
	prompt         string
	yolo           bool
	sessionSummary string
	configPath     string
	logLevel       string
	workspace      string
}

// streams are the process's standard streams.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// dependencies are the collaborators that tests replace.
type dependencies struct {
	newClient func(ctx context.Context) (gemini.Client, error)
}

func defaultDependencies() dependencies {
	return dependencies{
		newClient: func(ctx context.Context) (gemini.Client, error) {
			client, err := gemini.NewClient(ctx, os.Getenv("GEMINI_API_KEY"))
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	}
}

func main() {
	if err := newRootCmd(defaultDependencies()).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(deps dependencies) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "toolgate",
		Short: "Coding agent with gated tool execution",
		Long: color.CyanString(banner) + "\nA coding agent whose tool calls are checked against policy rules,\n" +
			"confirmed by the user when required, and contained before they reach the model.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, deps, streams{in: cmd.InOrStdin(), out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.prompt, "prompt", "p", "", "run a single goal headlessly (no approver unless --yolo)")
	flags.BoolVar(&opts.yolo, "yolo", false, "approve every confirmation request automatically")
	flags.StringVar(&opts.sessionSummary, "session-summary", "", "write session tool metrics as JSON to this path on exit")
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/toolgate/config.json)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.StringVarP(&opts.workspace, "workspace", "w", ".", "workspace root the tools may access")
	return cmd
}

func run(ctx context.Context, opts *options, deps dependencies, s streams) error {
	logger, err := newLogger(opts.logLevel, s.err)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	headless := opts.prompt != ""
	if headless && !opts.yolo {
		// Nobody can answer a prompt.
		cfg.Policy.NonInteractive = true
	}

	engine, err := createPolicy(cfg, logger)
	if err != nil {
		return err
	}

	bus := confirmation.NewBus(logger)
	switch {
	case opts.yolo:
		auto := ui.NewAutoApprover(bus, logger)
		defer auto.Stop()
	case !headless:
		renderer, err := ui.NewGlamourRenderer(80)
		if err != nil {
			logger.Warn("markdown previews disabled", "error", err)
		}
		prompter := ui.NewPrompter(bus, renderer, ui.NewStyles(cfg.UI), s.in, s.out, logger).WithSessionRules(engine)
		prompter.Start(ctx)
		defer prompter.Stop()
	}

	client, err := deps.newClient(ctx)
	if err != nil {
		return err
	}

	pipeline, err := createContainment(cfg, client, logger)
	if err != nil {
		return err
	}

	registry, err := createTools(cfg, opts.workspace)
	if err != nil {
		return err
	}

	sessionID := session.NewSessionID()
	metrics := session.NewMetrics()
	logger.Info("session started", "session", sessionID, "workspace", opts.workspace, "headless", headless)

	tools := toolmanager.NewToolManager(registry, engine, bus, pipeline, toolmanager.Config{
		SessionID:   sessionID,
		MaxParallel: cfg.Tools.MaxParallelCalls,
		Recorder:    metrics,
		Logger:      logger,
	})
	llm := gemini.NewProvider(client, cfg.Model.Name, systemInstruction, logger)

	events := make(chan workflow.Event, 64)
	printed := make(chan struct{})
	printer := ui.NewPrinter(s.out)
	go func() {
		defer close(printed)
		printer.Drain(events)
	}()

	agent := loop.NewLoop(llm, tools, events, cfg.Model.MaxIterations, logger)
	if headless {
		err = agent.Run(ctx, opts.prompt)
	} else {
		err = repl(ctx, agent, s)
	}

	close(events)
	<-printed

	if opts.sessionSummary != "" {
		if werr := session.WriteSummary(opts.sessionSummary, sessionID, metrics); werr != nil {
			logger.Error("failed to write session summary", "path", opts.sessionSummary, "error", werr)
			if err == nil {
				err = werr
			}
		}
	}
	return err
}

// repl reads one goal per line until EOF, "exit" or cancellation. Errors
// of a single goal are reported by the printer and do not end the session.
func repl(ctx context.Context, agent *loop.Loop, s streams) error {
	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, color.CyanString("> "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := agent.Run(ctx, line); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		return loader.LoadFile(path)
	}
	return loader.Load()
}

// createPolicy builds the engine from inline rules followed by the rules file.
func createPolicy(cfg *config.Config, logger *slog.Logger) (*policy.Engine, error) {
	rules := append([]policy.Rule(nil), cfg.Policy.Rules...)
	if cfg.Policy.RulesFile != "" {
		fileRules, err := policy.LoadRulesFile(cfg.Policy.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = append(rules, fileRules...)
	}
	engine, err := policy.NewEngine(policy.Config{
		Rules:           rules,
		DefaultDecision: cfg.Policy.DefaultDecision,
		NonInteractive:  cfg.Policy.NonInteractive,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build policy: %w", err)
	}
	return engine, nil
}

func createContainment(cfg *config.Config, client gemini.Client, logger *slog.Logger) (*containment.Pipeline, error) {
	dir := cfg.Containment.ArtifactDir
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("no artifact directory configured: %w", err)
		}
		dir = filepath.Join(cache, "toolgate", "artifacts")
	}
	store, err := containment.NewLocalStore(dir)
	if err != nil {
		return nil, err
	}

	summaryModel := cfg.Model.SummaryModel
	if summaryModel == "" {
		summaryModel = cfg.Model.Name
	}
	return containment.NewPipeline(containment.Config{
		Threshold:        cfg.Containment.ThresholdChars,
		SummaryMaxTokens: cfg.Containment.SummaryMaxTokens,
		Logger:           logger,
	}, store, gemini.NewSummarizer(client, summaryModel)), nil
}

func createTools(cfg *config.Config, workspaceRoot string) (*tool.Registry, error) {
	canonicalRoot, err := pathutil.CanonicaliseRoot(workspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize workspace root: %w", err)
	}

	osFS := fsutil.NewOSFileSystem()
	resolver := pathutil.NewResolver(canonicalRoot)

	return tool.NewRegistry(
		file.NewReadFileTool(osFS, resolver, cfg),
		file.NewWriteFileTool(osFS, resolver, cfg),
		directory.NewListDirectoryTool(osFS, resolver, cfg),
		shell.NewShellTool(osFS, shell.OSProcessFactory{}, resolver, cfg),
	), nil
}
