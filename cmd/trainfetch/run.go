package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trainfetch/trainfetch/internal/browser"
	"github.com/trainfetch/trainfetch/internal/config"
	"github.com/trainfetch/trainfetch/internal/database"
	"github.com/trainfetch/trainfetch/internal/extractor"
	"github.com/trainfetch/trainfetch/internal/fetcher"
	"github.com/trainfetch/trainfetch/internal/log"
	"github.com/trainfetch/trainfetch/internal/model"
	"github.com/trainfetch/trainfetch/internal/pipeline"
	"github.com/trainfetch/trainfetch/internal/publisher"
	"github.com/trainfetch/trainfetch/internal/report"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [links-url]",
		Short: "Fetch pages from a links list and build the training dataset",
		Long: `Run downloads a newline-delimited list of page URLs, retrieves each
page, extracts its visible text, and writes a JSON training dataset.

Every page is first loaded in a headless Chromium browser so that
JavaScript-rendered and initially hidden content is captured. Pages the
browser cannot serve are fetched over plain HTTP through public CORS
proxies, with a direct request as the last resort. Links that fail every
attempt are kept in the dataset with an empty text entry.

The dataset is uploaded to S3-compatible object storage when a publish
destination is configured. Credentials are read from the environment:

  TRAINFETCH_ENDPOINT    publish endpoint (host:port)
  TRAINFETCH_BUCKET      destination bucket
  TRAINFETCH_ACCESS_KEY  access key
  TRAINFETCH_SECRET_KEY  secret key

Publishing is suppressed when GITHUB_ACTIONS=true, because CI runs
commit the dataset through the repository instead of uploading it.

Examples:
  # Build a dataset from a hosted links list
  trainfetch run https://example.com/links.txt

  # Write the dataset to a custom path
  trainfetch run -o data/dataset.json https://example.com/links.txt

  # Plain HTTP only, no browser
  trainfetch run --no-browser https://example.com/links.txt

  # Use a custom configuration file
  trainfetch run -c myconfig.yaml

  # Output a JSON run summary
  trainfetch run --json https://example.com/links.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRunCmd,
	}

	// Source and destination flags
	cmd.Flags().StringP("url", "u", "",
		"Links list URL (newline-delimited page URLs)")
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Output path for the dataset file")

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultHTTPTimeout,
		"Timeout for each plain HTTP request")
	cmd.Flags().IntP("retry-rounds", "r", config.DefaultRetryRounds,
		"Number of passes over the fetch strategies before a link is given up")
	cmd.Flags().Duration("retry-delay", config.DefaultRetryDelay,
		"Pause between retry rounds for the same link")
	cmd.Flags().Duration("page-timeout", config.DefaultPageLoadTimeout,
		"Timeout for a single rendered page load")
	cmd.Flags().Int("reveal-iterations", config.DefaultRevealIterations,
		"Reveal passes per rendered page (0 disables revealing)")
	cmd.Flags().Duration("settle-delay", config.DefaultSettleDelay,
		"Wait after each reveal pass before re-reading the page")
	cmd.Flags().Int("recycle-after", config.DefaultRecycleAfter,
		"Rendered pages processed before the browser is relaunched")
	cmd.Flags().Int("max-chars", config.DefaultMaxChars,
		"Maximum stored text per page in characters (0 = unbounded)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header for plain HTTP requests")
	cmd.Flags().Bool("no-browser", false,
		"Disable the rendered browser fetch; use plain HTTP only")

	// Publish and history flags
	cmd.Flags().Bool("no-publish", false,
		"Skip the publish step even when a destination is configured")
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")
	cmd.Flags().String("db-dir", "",
		"Directory for the run history database (default: XDG data directory)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .trainfetch in current or home directory)")

	// Summary flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run summary (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write the run summary to the specified file instead of stdout")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	// .env is a local development convenience; real deployments set the
	// environment directly.
	if err := config.LoadDotenv(); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runPreprocess(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildRunConfig creates a Config from the config file, the environment,
// and cobra command flags, in that precedence order. Flags are only applied
// when explicitly set, so an untouched flag never clobbers a file value
// with its default.
func buildRunConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPath

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := configPath != ""
	foundPath := config.FindConfigFile(configPath)
	if foundPath != "" {
		cf, err := config.LoadConfigFile(foundPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", foundPath, err)
		}
		cf.ApplyTo(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	config.ApplyEnv(cfg)

	if flags.Changed("url") {
		if cfg.LinksURL, err = flags.GetString("url"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output") {
		if cfg.OutputPath, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.HTTPTimeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("retry-rounds") {
		if cfg.RetryRounds, err = flags.GetInt("retry-rounds"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("retry-delay") {
		if cfg.RetryDelay, err = flags.GetDuration("retry-delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("page-timeout") {
		if cfg.PageLoadTimeout, err = flags.GetDuration("page-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("reveal-iterations") {
		if cfg.RevealIterations, err = flags.GetInt("reveal-iterations"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("settle-delay") {
		if cfg.SettleDelay, err = flags.GetDuration("settle-delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("recycle-after") {
		if cfg.RecycleAfter, err = flags.GetInt("recycle-after"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-chars") {
		if cfg.MaxChars, err = flags.GetInt("max-chars"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("no-browser") {
		if cfg.NoBrowser, err = flags.GetBool("no-browser"); err != nil {
			return nil, err
		}
	}

	if cfg.NoPublish, err = flags.GetBool("no-publish"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report-file"); err != nil {
		return nil, err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.DBDir, err = flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}
	cfg.SaveHistory = !noHistory

	cfg.Verbose = getVerboseFlag(cmd)

	// A positional links URL wins over both the flag and the config file
	if len(args) > 0 {
		cfg.LinksURL = args[0]
	}

	return cfg, nil
}

// runPreprocess wires the components together and executes the pipeline.
func runPreprocess(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting preprocessing run",
		"linksURL", cfg.LinksURL,
		"output", cfg.OutputPath,
		"noBrowser", cfg.NoBrowser,
		"publishConfigured", cfg.Publish.Configured(),
	)

	client := fetcher.NewHTTPClient(cfg.HTTPTimeout)
	lister := fetcher.NewListFetcher(client,
		fetcher.WithListUserAgent(cfg.UserAgent),
		fetcher.WithListMaxBodySize(cfg.MaxBodySize),
	)

	// The rendered strategy goes first; plain HTTP is the fallback.
	var strategies []fetcher.Strategy
	if !cfg.NoBrowser {
		session := browser.NewSession(
			browser.WithRecycleAfter(cfg.RecycleAfter),
			browser.WithSessionLogger(logger),
		)
		defer func() {
			if err := session.Close(); err != nil {
				logger.Debug("failed to close browser session", "error", err)
			}
		}()

		revealer := browser.NewRevealer(
			browser.WithIterations(cfg.RevealIterations),
			browser.WithSettleDelay(cfg.SettleDelay),
			browser.WithRevealerLogger(logger),
		)
		strategies = append(strategies, browser.NewRenderer(session,
			browser.WithPageLoadTimeout(cfg.PageLoadTimeout),
			browser.WithRevealer(revealer),
			browser.WithRendererLogger(logger),
		))
	}
	strategies = append(strategies, fetcher.NewHTTPStrategy(client,
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
	))

	chain := fetcher.NewChain(strategies,
		fetcher.WithRetryRounds(cfg.RetryRounds),
		fetcher.WithRetryDelay(cfg.RetryDelay),
		fetcher.WithLogger(logger),
	)

	// A broken history database downgrades the run, it does not abort it
	var store pipeline.HistoryStore
	if cfg.SaveHistory {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("run history disabled", "dir", cfg.DBDir, "error", err)
		} else {
			defer db.Close()
			store = db
			logger.Debug("history database opened", "dir", cfg.DBDir)
		}
	}

	pub := publisher.New(cfg.Publish, publisher.WithLogger(logger))

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewFetchLinksStep(lister, cfg.LinksURL,
			pipeline.WithFetchLinksLogger(logger)),
		pipeline.NewHarvestStep(chain, extractor.New(extractor.WithMaxChars(cfg.MaxChars)),
			pipeline.WithHarvestLogger(logger)),
		pipeline.NewSaveDatasetStep(report.NewDatasetWriter(), cfg.OutputPath,
			pipeline.WithSaveDatasetLogger(logger)),
		pipeline.NewPublishStep(pub,
			pipeline.WithPublishDisabled(cfg.NoPublish),
			pipeline.WithPublishLogger(logger)),
		pipeline.NewRecordHistoryStep(store,
			pipeline.WithRecordHistoryLogger(logger)),
	)

	run := model.NewRun(cfg.LinksURL)
	execErr := p.Execute(ctx, run)
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	// The summary is written even for failed runs so the operator sees
	// how far the run got before it stopped.
	if err := writeSummary(cfg, run); err != nil {
		logger.Error("failed to write run summary", "error", err)
	}

	return execErr
}

// writeSummary outputs the run summary in the requested format.
func writeSummary(cfg *config.Config, run *model.Run) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create summary directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create summary file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(run)
	return err
}
