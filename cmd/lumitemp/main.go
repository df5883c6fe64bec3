// Command lumitemp polls the STH history of a Lamp/Humi/Temp device triple
// and serves a live chart of everything collected since start.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"lumitemp/pkg/config"
	"lumitemp/pkg/dashboard"
	"lumitemp/pkg/logger"
	"lumitemp/pkg/render"
	"lumitemp/pkg/scrape"
	"lumitemp/pkg/sth"
	"lumitemp/pkg/storage"
)

const stopTimeout = 15 * time.Second

type options struct {
	configPath string
	profile    string
	envFile    string
	logLevel   string
	logFormat  string
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("lumitemp", flag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file")
	fs.StringVar(&opts.profile, "profile", "", fmt.Sprintf("built-in profile to run without a config file %v", config.ProfileNames()))
	fs.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with LUMITEMP_* overrides")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.configPath != "" && opts.profile != "" {
		return nil, fmt.Errorf("--config and --profile are mutually exclusive")
	}
	return opts, nil
}

func loadConfig(opts *options) (*config.Config, error) {
	loader := config.NewLoader(opts.configPath).WithEnvFile(opts.envFile)
	if opts.profile != "" {
		return loader.LoadProfile(opts.profile)
	}
	if opts.configPath == "" {
		return loader.LoadProfile(config.DefaultSuffix)
	}
	return loader.Load()
}

func run(ctx context.Context, opts *options) error {
	root, err := logger.New(opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}
	log := logger.Component(root, "main")

	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	client, err := sth.NewClient(sth.ClientConfig{
		BaseURL:     cfg.STH.BaseURL,
		Service:     cfg.STH.Service,
		ServicePath: cfg.STH.ServicePath,
		LastN:       cfg.STH.LastN,
		Timeout:     cfg.STH.Timeout,
		Location:    loc,
	}, &http.Client{}, logger.Component(root, "sth"))
	if err != nil {
		return fmt.Errorf("create sth client: %w", err)
	}

	acc := storage.NewMemoryAccumulator()

	dash, err := dashboard.NewServer(dashboard.Config{
		Addr:   cfg.ListenAddr(),
		Labels: render.LabelsFor(cfg.Locale),
	}, acc, logger.Component(root, "dashboard"))
	if err != nil {
		return fmt.Errorf("create dashboard: %w", err)
	}

	scraper := scrape.NewScraper(scrape.Config{
		Interval: cfg.Scrape.Interval,
		Entities: cfg.Entities(),
	}, client, acc, logger.Component(root, "scraper"))
	scraper.OnAppend(func(*scrape.Body) { dash.Refresh() })

	log.WithFields(logrus.Fields{
		"sth":      cfg.STH.BaseURL,
		"suffix":   cfg.Entity.Suffix,
		"timezone": cfg.Timezone,
		"locale":   cfg.Locale,
		"interval": cfg.Scrape.Interval.String(),
	}).Info("starting lumitemp")

	if err := scraper.Start(ctx); err != nil {
		return fmt.Errorf("start scraper: %w", err)
	}

	runErr := dash.Run(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := scraper.Stop(stopCtx); err != nil {
		log.WithError(err).Warn("scraper did not stop cleanly")
	}
	if runErr != nil {
		return fmt.Errorf("dashboard: %w", runErr)
	}
	log.Info("lumitemp stopped")
	return nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		logrus.WithError(err).Error("lumitemp failed")
		stop()
		os.Exit(1)
	}
}
