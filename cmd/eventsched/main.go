package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"eventsched/internal/config"
	"eventsched/internal/events"
	appLog "eventsched/internal/log"
	"eventsched/internal/schedule"
)

// globalFlags are parsed before the subcommand name.
type globalFlags struct {
	configPath string
	logLevel   string
}

// app carries what every subcommand needs.
type app struct {
	conf   *config.Config
	engine schedule.Engine
	store  *events.Store
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"preview":     {"preview -period P [-day D] [-date-of-month N] [-nth N -weekday W] [-month M] -date YYYY-MM-DD [-time HH:MM]", runPreview},
	"normalize":   {"normalize -period P [rule flags] -date YYYY-MM-DD", runNormalize},
	"denormalize": {"denormalize -period P [-day D] [-month M]", runDenormalize},
	"add":         {"add -title T -date YYYY-MM-DD [-time HH:MM] [-recurrent -period P [rule flags]]", runAdd},
	"edit":        {"edit -id ID [event flags]", runEdit},
	"list":        {"list", runList},
	"delete":      {"delete -id ID", runDelete},
	"upcoming":    {"upcoming [-days N]", runUpcoming},
	"export":      {"export [-out FILE]", runExport},
	"import":      {"import (-file FILE | -url URL)", runImport},
	"watch":       {"watch", runWatch},
}

func main() {
	flags := parseFlags()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	if lvl, ok := appLog.ParseLevel(conf.LogLevel); ok {
		appLog.SetLevel(lvl)
	}

	appLog.Debug("effective config",
		"timezone", conf.Timezone,
		"events_file", conf.EventsFile,
		"strict_monthly", conf.StrictMonthly,
		"horizon_days", conf.HorizonDays,
		"reminder_lead_minutes", conf.ReminderLeadMinutes,
		"refresh", conf.RefreshCron,
	)

	engine := schedule.Engine{StrictMonthly: conf.StrictMonthly}
	store, err := events.Open(conf.EventsFile, engine)
	if err != nil {
		appLog.Error("failed to open events file", err, "path", conf.EventsFile)
		os.Exit(1)
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	a := &app{conf: conf, engine: engine, store: store}
	if err := cmd.run(ctx, a, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		appLog.Error("command failed", err, "command", args[0])
		os.Exit(1)
	}
}

func parseFlags() globalFlags {
	var cfg globalFlags

	flag.StringVar(&cfg.configPath, "config", "./eventsched.yaml", "Path to config file")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Log level (overrides config if set)")
	flag.Usage = printUsage

	flag.Parse()

	return cfg
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: eventsched [-config FILE] [-log-level LEVEL] <command> [flags]")
	fmt.Fprintln(os.Stderr, "\nCommands:")
	for _, name := range commandNames() {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}
