package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
	"github.com/urfave/cli/v2"

	"storesearch/internal/config"
	"storesearch/internal/eventbus"
	"storesearch/internal/recent"
	"storesearch/internal/render"
	"storesearch/internal/search"
	"storesearch/internal/storefront"
	"storesearch/internal/ui"
)

// Version is set at build time.
var Version = "dev"

func main() {
	app := &cli.App{
		Name:                   "storesearch",
		Usage:                  "Predictive storefront search in the terminal",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the config file",
				Value:   config.DefaultPath(),
			},
		},
		Action: searchCommand,
		Commands: []*cli.Command{
			{
				Name:    "search",
				Aliases: []string{"s"},
				Usage:   "Open the search header (default)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open chosen results in the system browser",
					},
				},
				Action: searchCommand,
			},
			{
				Name:  "serve",
				Usage: "Serve the demo storefront section renderer",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8080",
					},
					&cli.StringFlag{
						Name:  "catalog",
						Usage: "Catalog TOML file (built-in demo catalog when empty)",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Log every request",
					},
				},
				Action: serveCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context, bus eventbus.EventBus) (config.ConfigService, *config.Config, error) {
	svc := config.NewConfigServiceAt(c.String("config"), bus)
	cfg, err := svc.Load()
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

// redirectLogs sends the standard logger and stderr to the log file so
// nothing writes over the alternate screen.
func redirectLogs(path string) (restore func()) {
	if path == "" {
		return func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
		return func() {}
	}
	stderr := os.Stderr
	log.SetOutput(f)
	os.Stderr = f
	return func() {
		os.Stderr = stderr
		log.SetOutput(stderr)
		f.Close()
	}
}

func searchCommand(c *cli.Context) error {
	bus := eventbus.New()
	defer bus.Close()

	configSvc, cfg, err := loadConfig(c, bus)
	if err != nil {
		return err
	}

	restore := redirectLogs(cfg.Log.File)
	defer restore()
	logger.SetLogLevel(cfg.Log.Level)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	watcher, err := config.Watch(configSvc.Path(), bus)
	if err != nil {
		logger.LogErr(err, "Config watching disabled", "path", configSvc.Path())
	} else {
		defer watcher.Close()
	}

	client, err := render.NewClient(render.ClientOptions{
		BaseURL:     cfg.Storefront.BaseURL,
		SuggestPath: cfg.Storefront.SuggestPath,
		UserAgent:   "storesearch/" + Version,
	})
	if err != nil {
		return err
	}
	// only typed queries repeat; the empty state and recently viewed must stay fresh
	cached, err := render.NewCached(client, cfg.Search.CacheSize, cfg.Storefront.ResultsSection)
	if err != nil {
		return err
	}

	opts := search.OptionsFromConfig(cfg)
	opts.Renderer = cached
	opts.Recent = recent.NewFileStore(cfg.Recent.Path, cfg.Recent.Limit)
	opts.Navigator = ui.NewBrowserNavigator(client.BaseURL(), c.Bool("open"))
	opts.Bus = bus
	opts.Context = ctx

	model, err := ui.New(ui.Options{
		Bus:       bus,
		Config:    cfg,
		ConfigSvc: configSvc,
		Search:    opts,
		Title:     client.BaseURL(),
	})
	if err != nil {
		return err
	}
	defer model.Teardown()

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	model.SetProgram(p)

	// Bus handlers run off the UI loop; hand their events to the program.
	eventChan := make(chan eventbus.DomainEvent, 100)
	forwardEvent := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			logger.Info("Event channel full, dropping event", "type", string(e.Type()))
		}
	}
	for _, t := range []eventbus.EventType{
		eventbus.EventConfigChanged,
		eventbus.EventResultsRendered,
		eventbus.EventSearchReset,
	} {
		unsubscribe := bus.Subscribe(t, forwardEvent)
		defer unsubscribe()
	}
	go func() {
		for {
			select {
			case e := <-eventChan:
				p.Send(ui.EventMsg{Event: e})
			case <-ctx.Done():
				return
			}
		}
	}()

	logger.Info("Starting UI", "storefront", client.BaseURL())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return serr.Wrap(err, "error running program")
	}
	logger.Info("UI exited normally")
	return nil
}

func serveCommand(c *cli.Context) error {
	_, cfg, err := loadConfig(c, nil)
	if err != nil {
		return err
	}
	logger.SetLogLevel(cfg.Log.Level)

	catalog, err := storefront.LoadCatalog(c.String("catalog"))
	if err != nil {
		return err
	}

	srv := storefront.NewServer(storefront.ServerOptions{
		Address:    c.String("addr"),
		Catalog:    catalog,
		SearchPath: cfg.Storefront.SearchPath,
		Verbose:    c.Bool("verbose"),
	})
	logger.Info("Starting storefront", "addr", c.String("addr"), "products", fmt.Sprint(len(catalog.Products)))
	return srv.Run()
}
