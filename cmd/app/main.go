package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/goforj/godump"

	"yesnt/internal/builtins"
	"yesnt/internal/console"
	"yesnt/internal/engine"
	"yesnt/internal/runtime"
	"yesnt/internal/trace"
	"yesnt/internal/util"
)

var (
	// Version is the current version of the yesnt binary, set at build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	dumpRules bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configFile  string
	rootPath    string
	debug       bool
	waitTasks   bool
	traceDriver string
	traceDSN    string
)

func init() {
	defaults := util.DefaultConfiguration()

	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.BoolVar(&dumpRules, "dump-rules", false, "Print the ordered statement table and exit")
	// interpreter config
	flag.StringVar(&configFile, "config", "", "Load settings from a .toml or .yaml file")
	flag.StringVar(&rootPath, "root", defaults.RootPath, "Set the root path used to resolve imports")
	flag.BoolVar(&debug, "debug", defaults.Debug, "Run in debug mode, reporting every executed line")
	flag.BoolVar(&waitTasks, "wait", defaults.WaitTasks, "Wait for spawned tasks before exiting")
	// trace config
	flag.StringVar(&traceDriver, "trace-driver", defaults.TraceDriver, "Trace database driver: sqlite3, mysql, postgres")
	flag.StringVar(&traceDSN, "trace-dsn", "", "Record executed lines of debug runs into this database")
	// log config
	flag.StringVar(&logLevel, "log-level", defaults.LogLevel, "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	flag.Parse()

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	slog.SetDefault(slog.New(slog.NewJSONHandler(logWriter, loggerOptions)))

	if dumpRules {
		godump.Dump(builtins.Registry().Descriptors())
		return
	}

	if flag.NArg() < 1 {
		printHelp()
		os.Exit(2)
	}

	in := engine.New(builtins.Registry(), engine.Options{
		Config:  config,
		Out:     os.Stdout,
		Console: console.New(os.Stdin, os.Stdout),
	})

	if config.Debug {
		in.OnDebugOutput(func(text string) {
			fmt.Fprint(os.Stdout, text)
		})
		observe, closeTrace := lineObserver(config)
		defer closeTrace()
		in.OnLineExecuted(observe)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-signals
		slog.Info("stopping", slog.String("signal", sig.String()))
		in.Stop()
	}()

	if outcome := in.RunFile(flag.Arg(0), config.Debug); outcome.StopAll {
		exitCode = 1
	}
}

// loadConfiguration layers the config file and then the flags given on the
// command line over the defaults.
func loadConfiguration() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	if configFile != "" {
		if err := util.LoadFile(configFile, &config); err != nil {
			return config, fmt.Errorf("failed to load config '%s': %w", configFile, err)
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			config.RootPath = rootPath
		case "debug":
			config.Debug = debug
		case "wait":
			config.WaitTasks = waitTasks
		case "trace-driver":
			config.TraceDriver = traceDriver
		case "trace-dsn":
			config.TraceDSN = traceDSN
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		}
	})
	return config, nil
}

// lineObserver logs executed lines and, when a trace database is configured,
// records them there as well. The returned func closes the trace database.
func lineObserver(config util.Configuration) (func(runtime.LineEvent), func()) {
	logLine := func(ev runtime.LineEvent) {
		slog.Debug("line executed",
			slog.Int("line", ev.LineNumber),
			slog.Int64("task", ev.TaskID),
			slog.String("original", ev.Original),
			slog.String("current", ev.Current))
	}
	nothing := func() {}
	if config.TraceDSN == "" {
		return logLine, nothing
	}

	rec, err := trace.Open(config.TraceDriver, config.TraceDSN)
	if err != nil {
		slog.Error("failed to open trace database", slog.String("driver", config.TraceDriver), slog.Any("error", err))
		return logLine, nothing
	}
	slog.Info("tracing", slog.String("driver", config.TraceDriver), slog.String("run", rec.RunID()))
	return func(ev runtime.LineEvent) {
		logLine(ev)
		rec.Observe(ev)
	}, func() {
		if err := rec.Close(); err != nil {
			slog.Warn("error closing trace database", slog.Any("error", err))
		}
	}
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("yesnt version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: yesnt [options] filename

Options:
  -root <path>          Set the root path used to resolve imports. Default is '.'
  -config <file>        Load settings from a .toml, .yaml or .yml file.
  -debug                Run in debug mode, reporting every executed line.
  -wait                 Wait for spawned tasks before exiting. Default is true.
  -trace-driver <name>  Trace database driver: sqlite3, mysql, postgres. Default is 'sqlite3'.
  -trace-dsn <dsn>      Record executed lines of debug runs into this database.
  -dump-rules           Print the ordered statement table and exit.
  -help                 Display this help information and exit.
  -version              Display version information and exit.
  -log-level <level>    Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>      Specify a log file to write logs. Default is stderr.

Details:
This is the YesNt scripting language. Imports that are not found under the
root path are looked up in $%s/lib.

Examples:
  yesnt script.ynt                                Execute the provided script
  yesnt -debug -trace-dsn=trace.db script.ynt     Record every executed line

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, util.HomeEnv, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
