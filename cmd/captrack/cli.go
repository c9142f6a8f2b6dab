package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/config"
	"github.com/hpungsan/captrack/internal/errors"
	"github.com/hpungsan/captrack/internal/metrics"
	"github.com/hpungsan/captrack/internal/ops"
	"github.com/hpungsan/captrack/internal/web"
)

// appEnv holds the dependencies CLI commands run against.
type appEnv struct {
	store    *ops.Store
	sessions *ops.Sessions
	cfg      *config.Config
	metrics  *metrics.Metrics
	logger   *log.Logger

	// runForm collects an interactive check-in. Tests replace it.
	runForm func(*checkInValues) error
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "captrack",
		Usage:   "Personal capacity check-ins",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "User key (overrides the active session)"},
		},
		Commands: []*cli.Command{
			loginCmd(env),
			logoutCmd(env),
			whoamiCmd(env),
			checkinCmd(env),
			logCmd(env),
			timelineCmd(env),
			summaryCmd(env),
			exportCmd(env),
			importCmd(env),
			pruneCmd(env),
			serveCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// loginCmd creates the login command.
func loginCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Set the active user",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("login takes exactly one user key"))
			}
			sess, err := env.sessions.Login(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(sess)
		},
	}
}

// logoutCmd creates the logout command.
func logoutCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Clear the active user (check-ins are kept)",
		Action: func(c *cli.Context) error {
			if err := env.sessions.Logout(c.Context); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"logged_out": true})
		},
	}
}

// whoamiCmd creates the whoami command.
func whoamiCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the active user",
		Action: func(c *cli.Context) error {
			sess, err := env.sessions.Restore(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(sess)
		},
	}
}

// checkinCmd creates the checkin command.
func checkinCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "checkin",
		Usage: "Record a capacity check-in",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "energy", Aliases: []string{"e"}, Usage: "Energy, 0-12"},
			&cli.IntFlag{Name: "attention", Aliases: []string{"a"}, Usage: "Attention, 0-12"},
			&cli.IntFlag{Name: "physical", Aliases: []string{"p"}, Usage: "Physical, 0-12"},
			&cli.StringFlag{Name: "journal", Aliases: []string{"j"}, Usage: "Optional note (markdown)"},
			&cli.StringFlag{Name: "at", Usage: "Time of day as HH:MM (default: now)"},
			&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "Fill the check-in in a form"},
		},
		Action: func(c *cli.Context) error {
			userID, err := resolveUser(c, env.sessions)
			if err != nil {
				return outputError(err)
			}
			values := checkInValues{
				State: capacity.State{
					Energy:    c.Int("energy"),
					Attention: c.Int("attention"),
					Physical:  c.Int("physical"),
				},
				Journal: c.String("journal"),
				At:      c.String("at"),
			}

			if c.Bool("interactive") {
				// Suggestions only; the add reloads and classifies once the form is done.
				coll, _ := env.store.Load(c.Context, userID)
				values = prefill(values, c, ops.SuggestDefaults(coll, env.store.Clock().Current()))
				run := env.runForm
				if run == nil {
					run = runCheckInForm
				}
				if err := run(&values); err != nil {
					return outputError(err)
				}
			} else {
				for _, name := range []string{"energy", "attention", "physical"} {
					if !c.IsSet(name) {
						return outputError(errors.NewInvalidRequest(fmt.Sprintf("--%s is required (or use --interactive)", name)))
					}
				}
			}

			input := ops.AddInput{Capacity: values.State, Journal: values.Journal}
			if values.At != "" {
				ts, err := ops.ParseClockTime(env.store.Clock().Today(), values.At)
				if err != nil {
					return outputError(err)
				}
				input.Timestamp = ts
			}

			output, err := env.store.Add(c.Context, userID, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// logCmd creates the log command.
func logCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "List today's check-ins, newest first",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
		},
		Action: func(c *cli.Context) error {
			userID, err := resolveUser(c, env.sessions)
			if err != nil {
				return outputError(err)
			}
			entries, err := env.store.Log(c.Context, userID)
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(entries)
			}
			fmt.Fprint(os.Stdout, renderLog(entries, env.store.Clock().Location))
			return nil
		},
	}
}

// timelineCmd creates the timeline command.
func timelineCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "timeline",
		Usage: "Show today's reconciled timeline (baseline plus check-ins)",
		Action: func(c *cli.Context) error {
			userID, err := resolveUser(c, env.sessions)
			if err != nil {
				return outputError(err)
			}
			points, err := env.store.Timeline(c.Context, userID)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(points)
		},
	}
}

// summaryCmd creates the summary command.
func summaryCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Summarize today's check-ins",
		Action: func(c *cli.Context) error {
			userID, err := resolveUser(c, env.sessions)
			if err != nil {
				return outputError(err)
			}
			summary, err := env.store.Summary(c.Context, userID)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(summary)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all stored check-ins to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Export file path (default: ~/.captrack/exports/<user>-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			userID, err := resolveUser(c, env.sessions)
			if err != nil {
				return outputError(err)
			}
			output, err := env.store.Export(c.Context, env.cfg, ops.ExportInput{
				UserID: userID,
				Path:   c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import check-ins from a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Required: true, Usage: "Import file path"},
		},
		Action: func(c *cli.Context) error {
			userID, err := resolveUser(c, env.sessions)
			if err != nil {
				return outputError(err)
			}
			output, err := env.store.Import(c.Context, env.cfg, ops.ImportInput{
				UserID: userID,
				Path:   c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// pruneCmd creates the prune command.
func pruneCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Permanently delete check-ins from earlier days",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only prune check-ins older than N days (e.g., 7d; default from config)"},
		},
		Action: func(c *cli.Context) error {
			userID, err := resolveUser(c, env.sessions)
			if err != nil {
				return outputError(err)
			}
			input := ops.PruneInput{UserID: userID}
			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			} else if env.cfg != nil && env.cfg.PruneAfterDays > 0 {
				days := env.cfg.PruneAfterDays
				input.OlderThanDays = &days
			}

			output, err := env.store.Prune(c.Context, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Port (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind, port := env.cfg.WebBind, env.cfg.WebPort
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			if c.IsSet("port") {
				port = c.Int("port")
			}

			srv, err := web.NewServer(web.Deps{
				Store:    env.store,
				Sessions: env.sessions,
				Config:   env.cfg,
				Metrics:  env.metrics,
				Logger:   env.logger,
			}, Version, bind, port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, env.logger)
		},
	}
}

// Helper functions

// resolveUser returns --user when given, otherwise the active session's user.
func resolveUser(c *cli.Context, sessions *ops.Sessions) (string, error) {
	if user := strings.TrimSpace(c.String("user")); user != "" {
		if err := capacity.ValidateUserKey(user); err != nil {
			return "", err
		}
		return user, nil
	}
	sess, err := sessions.Restore(c.Context)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return "", errors.NewInvalidRequest("no active session: run 'captrack login <key>' or pass --user")
		}
		return "", err
	}
	return sess.UserID, nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tErr, ok := err.(*errors.TrackerError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
