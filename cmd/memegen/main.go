package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/memegen/internal/app"
	"github.com/timmy/memegen/internal/config"
	"github.com/timmy/memegen/internal/domain"
	"github.com/timmy/memegen/internal/logger"
)

const (
	exitOK      = 0
	exitFailure = 1

	listTemplatesLimit = 10
)

type options struct {
	keyword       string
	count         int
	single        bool
	retryLimit    int
	listTemplates bool
	configPath    string
	verbose       bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("memegen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.keyword, "keyword", "", "Keyword to build memes around")
	fs.IntVar(&opts.count, "count", 1, "Number of memes to generate")
	fs.BoolVar(&opts.single, "single", false, "Generate exactly one meme")
	fs.IntVar(&opts.retryLimit, "retry-limit", 0, "Attempts per meme (default from config)")
	fs.BoolVar(&opts.listTemplates, "list-templates", false, "Print available templates and exit")
	fs.StringVar(&opts.configPath, "config", os.Getenv("CONFIG_PATH"), "Path to config file")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.single {
		opts.count = 1
	}
	return opts, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitFailure
	}

	envCfg := logger.LoadFromEnv("memegen-cli")
	if opts.verbose {
		envCfg.Level = "debug"
	}
	appLogger := logger.NewFromEnv(envCfg)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	if !opts.listTemplates && opts.keyword == "" {
		fmt.Fprintln(stderr, "error: -keyword is required (or use -list-templates)")
		return exitFailure
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		appLogger.WithError(err).Error("Failed to load config")
		return exitFailure
	}

	container, err := app.New(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Error("Failed to initialize application")
		return exitFailure
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = appLogger.WithContext(ctx)

	if err := container.Init(ctx); err != nil {
		appLogger.WithError(err).Error("Failed to prepare application")
		return exitFailure
	}

	if opts.listTemplates {
		printTemplates(stdout, container.Templates.ListAll(ctx), listTemplatesLimit)
		return exitOK
	}

	appLogger.WithFields(logger.Fields{
		logger.FieldKeyword: opts.keyword,
		logger.FieldCount:   opts.count,
		"retry_limit":       opts.retryLimit,
	}).Info("Starting generation")

	memes, err := container.Memes.GenerateN(ctx, opts.keyword, opts.count, opts.retryLimit)
	printMemes(stdout, memes)

	if err != nil && !isCancellation(err) {
		appLogger.WithError(err).Error("Generation failed")
	}
	if isCancellation(err) {
		fmt.Fprintln(stderr, "Interrupted.")
	}
	return exitCodeFor(len(memes), err)
}

// exitCodeFor maps a batch outcome to a process exit code. A user interrupt
// is never a failure.
func exitCodeFor(generated int, err error) int {
	if isCancellation(err) {
		return exitOK
	}
	if generated > 0 {
		return exitOK
	}
	return exitFailure
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

func printTemplates(w io.Writer, templates []domain.Template, limit int) {
	if len(templates) == 0 {
		fmt.Fprintln(w, "No templates available.")
		return
	}
	if len(templates) > limit {
		templates = templates[:limit]
	}
	for _, t := range templates {
		fmt.Fprintf(w, "%s\t%s\n", t.ID, t.Name)
	}
}

func printMemes(w io.Writer, memes []*domain.Generation) {
	for i, m := range memes {
		fmt.Fprintf(w, "%d. %s (score %d, template %q)\n", i+1, m.URL, m.Score, m.TemplateName)
		fmt.Fprintf(w, "   %s / %s\n", m.TopText, m.BottomText)
	}
}
