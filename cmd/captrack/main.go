package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/captrack/internal/config"
	"github.com/hpungsan/captrack/internal/db"
	"github.com/hpungsan/captrack/internal/logger"
	"github.com/hpungsan/captrack/internal/mcp"
	"github.com/hpungsan/captrack/internal/metrics"
	"github.com/hpungsan/captrack/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"login": true, "logout": true, "whoami": true,
	"checkin": true, "log": true, "timeline": true, "summary": true,
	"export": true, "import": true, "prune": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	// Global flags such as --user come before the subcommand
	if arg == "--user" || arg == "-u" || strings.HasPrefix(arg, "--user=") {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
                 _                  _
   ___ __ _ _ __| |_ _ __ __ _  ___| | __
  / __/ _' | '_ \ __| '__/ _' |/ __| |/ /
 | (_| (_| | |_) | |_| | | (_| | (__|   <
  \___\__,_| .__/ \__|_|  \__,_|\___|_|\_\
           |_|

  Personal capacity check-ins

  Usage: captrack <command> [options]
         captrack --help

  MCP server mode requires piped input.`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fail("could not determine home directory: %v", err)
	}

	baseDir := filepath.Join(homeDir, ".captrack")

	cfg, err := config.Load(baseDir)
	if err != nil {
		fail("failed to load config: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		fail("invalid timezone %q: %v", cfg.Timezone, err)
	}

	l, err := logger.New(logger.Config{Debug: cfg.Debug, BaseDir: baseDir})
	if err != nil {
		fail("failed to initialize logger: %v", err)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fail("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		l.Warn("unknown tools in disabled_tools", "tools", unknown)
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		l.Warn("unknown types in disabled_types", "types", unknown)
	}

	kv := db.NewKV(database)
	m := metrics.New()
	env := &appEnv{
		store:    ops.NewStore(kv, ops.SystemClock(loc), ops.WithLogger(l), ops.WithMetrics(m)),
		sessions: ops.NewSessions(kv),
		cfg:      cfg,
		metrics:  m,
		logger:   l,
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(env)
		if err := app.Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'captrack --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(mcp.NewHandlers(env.store, env.sessions, cfg), Version); err != nil {
		l.Error("mcp server stopped", "err", err)
		fail("%v", err)
	}
}
