// nodescan runs diagnostic plugins against the local node: each plugin
// collects system state (kernel log, journal, modules, OS info), analyzes it
// for error signatures, and emits categorized events. Runs are recorded in
// an SQLite history and written out as JSON reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/setevik/nodescan/internal/config"
	"github.com/setevik/nodescan/internal/event"
	"github.com/setevik/nodescan/internal/format"
	"github.com/setevik/nodescan/internal/logscan"
	"github.com/setevik/nodescan/internal/plugins"
	"github.com/setevik/nodescan/internal/reporter"
	"github.com/setevik/nodescan/internal/result"
	"github.com/setevik/nodescan/internal/store"

	// Plugins register themselves on import.
	"github.com/setevik/nodescan/internal/plugins/dmesg"
	_ "github.com/setevik/nodescan/internal/plugins/journal"
	_ "github.com/setevik/nodescan/internal/plugins/kmod"
	_ "github.com/setevik/nodescan/internal/plugins/osinfo"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "run":
			runScan(os.Args[2:])
			return
		case "analyze":
			runAnalyze(os.Args[2:])
			return
		case "query":
			runQuery(os.Args[2:])
			return
		case "status":
			runStatus(os.Args[2:])
			return
		case "version":
			fmt.Println("nodescan", version)
			return
		}
	}

	// Default: run a scan.
	runScan(os.Args[1:])
}

// --- run subcommand ---

func runScan(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	pluginList := fs.String("plugins", "", "comma-separated plugins to run (default: from config)")
	reportDir := fs.String("report-dir", "", "directory for the JSON run report (overrides config)")
	noStore := fs.Bool("no-store", false, "skip recording the run in the event database")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Parse(args)

	if *showVersion {
		fmt.Println("nodescan", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Log.Level)

	selected := cfg.Run.Plugins
	if *pluginList != "" {
		selected = strings.Split(*pluginList, ",")
		for i := range selected {
			selected[i] = strings.TrimSpace(selected[i])
		}
	}
	if *reportDir != "" {
		cfg.Run.ReportDir = *reportDir
	}

	slog.Info("nodescan starting",
		"version", version,
		"instance", cfg.Instance.ID,
		"plugins", selected,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, canceling run", "signal", sig)
		cancel()
	}()

	report, err := executeRun(ctx, cfg, selected, !*noStore)
	if err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}

	fmt.Print(reporter.FormatSummary(report))

	if report.Status >= result.StatusError {
		os.Exit(2)
	}
}

// executeRun builds the selected plugins, runs them in order, records the
// run, and writes the JSON report.
func executeRun(ctx context.Context, cfg *config.Config, selected []string, persist bool) (*reporter.Report, error) {
	runID := uuid.NewString()
	start := time.Now().UTC()

	var results []*result.Result
	for _, name := range selected {
		plugin, err := plugins.New(name, cfg)
		if err != nil {
			return nil, err
		}

		slog.Info("running plugin", "plugin", name)
		res := plugin.Run(ctx)
		slog.Info("plugin finished",
			"plugin", name,
			"status", res.Status,
			"events", len(res.Events),
			"duration", res.Duration().Round(time.Millisecond),
		)
		results = append(results, res)

		if ctx.Err() != nil {
			break
		}
	}

	report := reporter.NewReport(runID, cfg.Instance.ID, start, time.Now().UTC(), results)

	if persist {
		if err := recordRun(cfg, report); err != nil {
			slog.Error("failed to record run", "error", err)
		}
	}

	if cfg.Run.ReportDir != "" {
		path, err := report.Write(cfg.Run.ReportDir)
		if err != nil {
			slog.Error("failed to write report", "error", err)
		} else {
			slog.Info("report written", "path", path)
		}
	}

	return report, nil
}

// recordRun stores the run and all its events in the history database.
func recordRun(cfg *config.Config, report *reporter.Report) error {
	db, err := store.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening event database: %w", err)
	}
	defer db.Close()

	if cfg.DB.Retention.Duration > 0 {
		purged, err := db.Purge(cfg.DB.Retention.Duration)
		if err != nil {
			slog.Warn("failed to purge old events", "error", err)
		} else if purged > 0 {
			slog.Info("purged old events", "count", purged, "retention", cfg.DB.Retention.Duration)
		}
	}

	if err := db.SaveRun(store.Run{
		ID:         report.RunID,
		InstanceID: report.InstanceID,
		StartTime:  report.StartTime,
		EndTime:    report.EndTime,
		Status:     report.Status.String(),
	}); err != nil {
		return err
	}

	for _, res := range report.Results {
		if err := db.InsertAll(report.RunID, res.Events); err != nil {
			return err
		}
	}
	return nil
}

// --- analyze subcommand ---

// runAnalyze scans a log file from disk through the rule engine without
// touching the database. Useful for triaging logs copied off another node.
func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	file := fs.String("file", "", "log file to analyze (required)")
	rulesFile := fs.String("rules", "", "YAML rule file (default: built-in dmesg rules)")
	noGroup := fs.Bool("no-group", false, "report each match separately instead of grouping")
	fs.Parse(args)

	setupLogging("error")

	if *file == "" {
		fmt.Fprintln(os.Stderr, "error: -file is required")
		os.Exit(1)
	}

	content, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", *file, err)
		os.Exit(1)
	}

	rules := dmesg.BaseRules
	if *rulesFile != "" {
		specs, err := config.LoadRuleFile(*rulesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading rules: %v\n", err)
			os.Exit(1)
		}
		rules, err = logscan.ComposeRules(specs, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error compiling rules: %v\n", err)
			os.Exit(1)
		}
	}

	opts := logscan.DefaultOptions()
	opts.Group = !*noGroup

	matches := logscan.Analyze(string(content), *file, rules, opts)
	if len(matches) == 0 {
		fmt.Println("No matches found.")
		return
	}

	for _, m := range matches {
		fmt.Printf("[%s/%s] %s  ×%d\n", m.Severity, m.Category, m.Description, m.Count)
		fmt.Printf("             match: %v\n", m.Content.Value())
		if len(m.Timestamps) > 0 {
			fmt.Printf("             seen:  %s\n", strings.Join(m.Timestamps, ", "))
		} else if m.Timestamp != "" {
			fmt.Printf("             seen:  %s\n", m.Timestamp)
		}
		fmt.Println()
	}
	fmt.Printf("Total: %d signature(s)\n", len(matches))
}

// --- query subcommand ---

func runQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	last := fs.String("last", "24h", "time window (e.g. 24h, 7d, 30d)")
	category := fs.String("category", "", "filter by category (e.g. MEMORY, IO, OS)")
	task := fs.String("task", "", "filter by task (e.g. DmesgAnalyzer)")
	minSev := fs.String("min-severity", "", "minimum severity (INFO, WARNING, ERROR, CRITICAL)")
	limit := fs.Int("limit", 50, "max events to show")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error") // quiet for CLI output

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	since, err := parseDuration(*last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --last value %q: %v\n", *last, err)
		os.Exit(1)
	}

	filter := store.QueryFilter{
		Since:    time.Now().Add(-since),
		Category: strings.ToUpper(*category),
		Task:     *task,
		Limit:    *limit,
	}
	if *minSev != "" {
		sev, err := event.ParseSeverity(*minSev)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --min-severity: %v\n", err)
			os.Exit(1)
		}
		filter.MinSeverity = sev
	}

	events, err := db.Query(filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		os.Exit(1)
	}

	if len(events) == 0 {
		fmt.Println("No events found.")
		return
	}

	printEvents(events)
}

func printEvents(events []*event.Event) {
	for _, ev := range events {
		ts := ev.Timestamp.Local().Format("2006-01-02 15:04:05")
		fmt.Printf("%s  [%s/%s] %-16s %s\n", ts, ev.Severity, ev.Category, ev.Task, ev.Description)
		if count, ok := ev.Data["count"]; ok {
			fmt.Printf("             count: %v\n", count)
		}
		if content, ok := ev.Data["match_content"]; ok {
			fmt.Printf("             match: %v\n", content)
		}
		fmt.Println()
	}
	fmt.Printf("Total: %d event(s)\n", len(events))
}

// --- status subcommand ---

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error")

	fmt.Printf("Instance:     %s\n", cfg.Instance.ID)
	fmt.Printf("Plugins:      %s\n", strings.Join(cfg.Run.Plugins, ", "))

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Last event.
	lastEvents, err := db.Query(store.QueryFilter{Limit: 1})
	if err == nil && len(lastEvents) > 0 {
		ev := lastEvents[0]
		ago := time.Since(ev.Timestamp).Truncate(time.Second)
		fmt.Printf("Last event:   [%s/%s] %s — %s ago\n", ev.Severity, ev.Category, ev.Description, format.Duration(ago))
	} else {
		fmt.Println("Last event:   none")
	}

	// Event counts for last 24h, broken down by severity.
	since24h := time.Now().Add(-24 * time.Hour)
	events24h, _ := db.Query(store.QueryFilter{Since: since24h})

	bySev := make(map[event.Severity]int)
	for _, ev := range events24h {
		bySev[ev.Severity]++
	}
	fmt.Printf("Events (24h): %d critical, %d error, %d warning, %d info\n",
		bySev[event.SevCritical], bySev[event.SevError], bySev[event.SevWarning], bySev[event.SevInfo])

	eventCount, _ := db.Count()
	fmt.Printf("DB events:    %d total\n", eventCount)
	fmt.Printf("DB path:      %s\n", cfg.DBPath())
}

// --- utilities ---

// parseDuration extends time.ParseDuration with support for "d" (days) suffix.
func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		s = strings.TrimSuffix(s, "d")
		var days int
		if _, err := fmt.Sscanf(s, "%d", &days); err != nil {
			return 0, fmt.Errorf("invalid days format: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
