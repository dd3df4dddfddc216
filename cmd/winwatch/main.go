// winwatch - Windows UI event subscription and dispatch
//
//	winwatch run            Run the event watcher from a config file
//	winwatch events         List known event constants and namespaces
//	winwatch config         Show or initialize the configuration
//	winwatch version        Print the version
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"winwatch/internal/config"
	"winwatch/internal/dispatch"
	"winwatch/internal/filter"
	"winwatch/internal/journal"
	"winwatch/internal/listen"
	"winwatch/internal/logging"
	"winwatch/internal/metrics"
	"winwatch/internal/native"
	"winwatch/internal/registry"
	"winwatch/internal/window"
	"winwatch/internal/winevent"
)

var version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		cmdRun()
	case "events":
		cmdEvents()
	case "config":
		cmdConfig()
	case "version":
		fmt.Printf("winwatch %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`winwatch - Windows UI event subscription and dispatch

USAGE:
    winwatch <command> [options]

COMMANDS:
    run                 Run the event watcher with the rules from the config
    events              List known event constants and namespaces
    config              Show or initialize the configuration file
    version             Print the version
    help                Show this help message

WORKFLOW:
    1. winwatch config init             # Write a default config file
    2. (edit the [[rules]] blocks)
    3. winwatch run                     # Watch events until interrupted

Events matched by a rule are logged; with [journal] enabled they are also
recorded to a local SQLite database. A metrics endpoint can be enabled with
[metrics] for Prometheus scraping.`)
}

func cmdRun() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (default: the standard locations)")
	budget := fs.Duration("budget", 0, "stop after this much wall-clock time (0 = run until signaled)")
	fs.Parse(os.Args[2:])

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}
	loader := config.NewLoader(path)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	defer loader.Close()
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing directories: %v\n", err)
		os.Exit(1)
	}

	log, err := buildLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(log)
	defer log.Close()
	defer logging.RecoverPanic()

	// Config edits take effect without a restart for the settings that can
	// change live. Rules and hooks are fixed for the life of the run.
	loader.OnChange(func(next *config.Config) {
		if level, err := logging.ParseLevel(next.Logging.Level); err == nil {
			log.SetLevel(level)
		}
		log.Info("config reloaded", "log_level", next.Logging.Level)
	})
	if err := loader.Watch(); err != nil {
		log.Warn("config watch unavailable", "error", err)
	}
	go func() {
		for err := range loader.Errors() {
			log.Warn("config reload rejected", "error", err)
		}
	}()

	if *budget == 0 {
		*budget = cfg.WaitBudget()
	}

	api, err := native.System()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sys := window.System()

	store := registry.NewStore()
	sub := listen.New(store)
	if err := wireRules(cfg, sub, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error wiring rules: %v\n", err)
		os.Exit(1)
	}

	if cfg.Idle.Enabled {
		src, err := native.SystemIdleSource()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: idle detection unavailable: %v\n", err)
			os.Exit(1)
		}
		_, err = sub.Idleness(cfg.Idle.ThresholdSec, cfg.Idle.RepeatLimit, src,
			func(p *winevent.Payload) error {
				log.Info("system idle", "duration", p.Context[winevent.ContextIdleDuration])
				return nil
			})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	opts := []dispatch.Option{
		dispatch.WithTick(time.Duration(cfg.Tick()) * time.Millisecond),
		dispatch.WithLogger(log.WithComponent("dispatch").Logger),
		dispatch.WithWindowAccess(sys),
	}

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path, cfg.Journal.BusyTimeoutMs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
			os.Exit(1)
		}
		defer j.Close()
		if cfg.Journal.RetainDays > 0 {
			if n, err := j.Prune(time.Duration(cfg.Journal.RetainDays) * 24 * time.Hour); err != nil {
				log.Warn("journal prune failed", "error", err)
			} else if n > 0 {
				log.Info("journal pruned", "removed", n)
			}
		}
		opts = append(opts, dispatch.WithRecorder(j))
	}

	if cfg.Metrics.Enabled {
		m := metrics.GetMetrics()
		opts = append(opts, dispatch.WithMetrics(m))
		go serveMetrics(cfg.Metrics.ListenAddr, log)
	}

	loop := dispatch.NewLoop(store, api, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	log.Info("winwatch starting",
		"version", version,
		"tick_ms", cfg.Tick(),
		"rules", len(cfg.Rules),
		"idle", cfg.Idle.Enabled,
		"journal", cfg.Journal.Enabled)

	if err := loop.Run(ctx, *budget); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// wireRules turns every config rule into a subscription with its filter
// stack applied.
func wireRules(cfg *config.Config, sub *listen.Subscriber, log *logging.Logger) error {
	for i := range cfg.Rules {
		rule := cfg.Rules[i]
		ids, err := rule.ResolveEvents()
		if err != nil {
			return err
		}
		spec := make(winevent.RangeSet, 0, len(ids))
		for _, id := range ids {
			spec = append(spec, winevent.Single(id))
		}

		name := rule.Name
		tok, _, err := sub.To(spec, func(p *winevent.Payload) error {
			args := []any{"rule", name, "event", p.EventName, "hwnd", fmt.Sprintf("%#x", p.WindowHandle)}
			if p.Window != nil {
				if title, err := p.Window.Title(); err == nil {
					args = append(args, "title", title)
				}
			}
			log.Info("event", args...)
			return nil
		})
		if err != nil {
			return err
		}

		var filters []*filter.Filter
		if rule.RequireTitle {
			filters = append(filters, filter.RequireTitled())
		}
		if rule.TitlePattern != "" {
			filters = append(filters, filter.Title(rule.TitlePattern, rule.CaseSensitive))
		}
		if rule.MaxArea > 0 {
			filters = append(filters, filter.AreaLessThan(rule.MaxArea))
		}
		if rule.MaximizedOnly {
			filters = append(filters, filter.Maximized())
		}
		for _, f := range applyOptions(filters, cfg.Filters) {
			if err := f.Apply(sub.Store(), tok); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyOptions aligns each filter's guards with the configured defaults.
func applyOptions(filters []*filter.Filter, fc config.FilterConfig) []*filter.Filter {
	if len(filters) == 0 && !(fc.RequireExistingWindow || fc.ExcludeSystemWindows) {
		return filters
	}
	if len(filters) == 0 {
		// No predicate filters, but the guards still apply.
		opts := filter.Options{
			RequireExistingWindow: fc.RequireExistingWindow,
			ExcludeSystemWindows:  fc.ExcludeSystemWindows,
			CaptureStaleHandle:    fc.CaptureStaleHandle,
		}
		return []*filter.Filter{filter.New(func(*winevent.Payload) (bool, error) {
			return true, nil
		}, opts)}
	}
	return filters
}

func serveMetrics(addr string, log *logging.Logger) {
	defer logging.RecoverPanicWith(map[string]any{"goroutine": "metrics"})
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Default().HTTPHandler())
	log.Info("metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics endpoint failed", "error", err)
	}
}

func cmdEvents() {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	showNamespaces := fs.Bool("namespaces", false, "list event namespaces instead of names")
	fs.Parse(os.Args[2:])

	if *showNamespaces {
		for _, ns := range winevent.Namespaces() {
			fmt.Printf("%-12s %s\n", ns.Name, ns.Range)
		}
		return
	}

	names := winevent.Names()
	sort.Strings(names)
	for _, name := range names {
		id, _ := winevent.Lookup(name)
		fmt.Printf("0x%04X  %s\n", uint32(id), name)
	}
}

func cmdConfig() {
	action := "show"
	if len(os.Args) > 2 {
		action = os.Args[2]
	}

	switch action {
	case "init":
		path := config.ConfigPath()
		cfg, created, err := config.LoadOrCreate(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if created {
			fmt.Printf("Wrote default config to %s\n", path)
		} else {
			fmt.Printf("Config already exists at %s\n", path)
		}
		_ = cfg
	case "show":
		path := config.ConfigPath()
		cfg, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file:  %s\n", path)
		fmt.Printf("Tick:         %dms\n", cfg.Tick())
		fmt.Printf("Idle:         %s\n", onOff(cfg.Idle.Enabled))
		fmt.Printf("Journal:      %s (%s)\n", onOff(cfg.Journal.Enabled), cfg.Journal.Path)
		fmt.Printf("Metrics:      %s (%s)\n", onOff(cfg.Metrics.Enabled), cfg.Metrics.ListenAddr)
		fmt.Printf("Rules:        %d\n", len(cfg.Rules))
		for _, r := range cfg.Rules {
			fmt.Printf("  %-20s %s\n", r.Name, strings.Join(r.Events, ", "))
		}
	default:
		fmt.Fprintf(os.Stderr, "Usage: winwatch config [show|init]\n")
		os.Exit(1)
	}
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func buildLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format := logging.FormatText
	if cfg.Logging.Format == "json" {
		format = logging.FormatJSON
	}
	return logging.New(&logging.Config{
		Level:      level,
		Format:     format,
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    int64(cfg.Logging.MaxSizeMB),
		MaxAge:     cfg.Logging.MaxAgeDays,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
}
