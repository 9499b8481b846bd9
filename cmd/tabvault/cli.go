package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tabvault/tabvault/internal/cdpbridge"
	"github.com/tabvault/tabvault/internal/config"
	"github.com/tabvault/tabvault/internal/service"
	"github.com/tabvault/tabvault/internal/types"
	"github.com/tabvault/tabvault/internal/vault"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config, store *vault.Store) *cli.App {
	app := &cli.App{
		Name:    "tabvault",
		Usage:   "Capture, store and restore browser tab sessions",
		Version: Version,
		Commands: []*cli.Command{
			captureCmd(cfg, store),
			sessionsCmd(cfg, store),
			restoreCmd(cfg, store),
			exportCmd(cfg, store),
			importCmd(cfg, store),
			settingsCmd(cfg, store),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// captureCmd creates the capture command.
func captureCmd(cfg *config.Config, store *vault.Store) *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Capture the current browser window into a new session",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Build the plan without saving or closing anything"},
		},
		Action: func(c *cli.Context) error {
			return withBrowser(c.Context, cfg, store, func(ctx context.Context, svc *service.Service) error {
				result, err := svc.Capture(ctx, c.Bool("dry-run"))
				if err != nil {
					return outputError(err)
				}
				return outputJSON(result)
			})
		},
	}
}

// sessionsCmd groups the stored-session management subcommands.
func sessionsCmd(cfg *config.Config, store *vault.Store) *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "Manage stored sessions",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored sessions, newest first",
				Action: func(c *cli.Context) error {
					svc := storeService(cfg, store)
					summaries, err := svc.ListSessions(c.Context)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(summaries)
				},
			},
			{
				Name:      "show",
				Usage:     "Show one session including its items",
				ArgsUsage: "<session-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "session-id")
					if err != nil {
						return err
					}
					svc := storeService(cfg, store)
					session, err := svc.GetSession(c.Context, id)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(session)
				},
			},
			{
				Name:      "rename",
				Usage:     "Rename a session",
				ArgsUsage: "<session-id> <new-title>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "session-id")
					if err != nil {
						return err
					}
					title, err := requireArg(c, 1, "new-title")
					if err != nil {
						return err
					}
					svc := storeService(cfg, store)
					session, err := svc.RenameSession(c.Context, id, title)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(session)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a session and its items",
				ArgsUsage: "<session-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "session-id")
					if err != nil {
						return err
					}
					svc := storeService(cfg, store)
					if err := svc.DeleteSession(c.Context, id); err != nil {
						return outputError(err)
					}
					fmt.Printf("deleted %s\n", id)
					return nil
				},
			},
		},
	}
}

// restoreCmd creates the restore command.
func restoreCmd(cfg *config.Config, store *vault.Store) *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Reopen a stored session's tabs",
		ArgsUsage: "<session-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "target", Value: string(types.TargetCurrentWindow),
				Usage: "Where to open tabs: current-window|new-window|new-window-with-group"},
			&cli.StringFlag{Name: "indices", Usage: "Comma-separated item indices to restore (default: all)"},
			&cli.BoolFlag{Name: "keep-duplicates", Usage: "Open tabs even when the URL is already open"},
			&cli.BoolFlag{Name: "background", Usage: "Open tabs without focusing them"},
			&cli.StringFlag{Name: "group-title", Usage: "Tab group title (defaults to the session title)"},
			&cli.StringFlag{Name: "group-color", Usage: "Tab group color"},
		},
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, 0, "session-id")
			if err != nil {
				return err
			}
			indices, err := parseIndices(c.String("indices"))
			if err != nil {
				return outputError(types.NewError(types.CodeValidation, err.Error(), nil))
			}

			opts := service.RestoreOptions{
				Target:     types.RestoreTarget(c.String("target")),
				Indices:    indices,
				GroupTitle: c.String("group-title"),
				GroupColor: c.String("group-color"),
				OnProgress: func(p types.RestoreProgress) {
					fmt.Fprintf(os.Stderr, "%s: opened %d/%d (skipped %d, failed %d)\n",
						p.Phase, p.Opened, p.Total, p.SkippedDuplicates, p.Failed)
				},
			}
			if c.IsSet("keep-duplicates") {
				skip := !c.Bool("keep-duplicates")
				opts.SkipDuplicates = &skip
			}
			if c.IsSet("background") {
				bg := c.Bool("background")
				opts.InBackground = &bg
			}

			return withBrowser(c.Context, cfg, store, func(ctx context.Context, svc *service.Service) error {
				result, err := svc.Restore(ctx, id, opts)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(result)
			})
		},
	}
}

// exportCmd creates the export command.
func exportCmd(cfg *config.Config, store *vault.Store) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a session as a portable JSON envelope",
		ArgsUsage: "<session-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write to file instead of stdout"},
		},
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, 0, "session-id")
			if err != nil {
				return err
			}
			svc := storeService(cfg, store)
			envelope, err := svc.ExportSession(c.Context, id)
			if err != nil {
				return outputError(err)
			}
			if out := c.String("out"); out != "" {
				data, err := json.MarshalIndent(envelope, "", "  ")
				if err != nil {
					return outputError(err)
				}
				if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
					return outputError(err)
				}
				fmt.Printf("wrote %s\n", out)
				return nil
			}
			return outputJSON(envelope)
		},
	}
}

// importCmd creates the import command.
func importCmd(cfg *config.Config, store *vault.Store) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import a previously exported session (from file or stdin)",
		ArgsUsage: "[file]",
		Action: func(c *cli.Context) error {
			var (
				data []byte
				err  error
			)
			if c.NArg() > 0 {
				data, err = os.ReadFile(c.Args().First())
			} else {
				data, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return outputError(err)
			}
			svc := storeService(cfg, store)
			session, err := svc.ImportSession(c.Context, data)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(session)
		},
	}
}

// settingsCmd groups the settings subcommands.
func settingsCmd(cfg *config.Config, store *vault.Store) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change capture/restore preferences",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the current settings",
				Action: func(c *cli.Context) error {
					svc := storeService(cfg, store)
					settings, err := svc.GetSettings(c.Context)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(settings)
				},
			},
			{
				Name:  "set",
				Usage: "Update one or more settings fields",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "keep-active-tab", Usage: "Leave the active tab open after capture"},
					&cli.BoolFlag{Name: "exclude-pinned", Usage: "Skip pinned tabs during capture"},
					&cli.StringFlag{Name: "prefix", Usage: "Session name prefix"},
					&cli.BoolFlag{Name: "skip-duplicates", Usage: "Skip already-open URLs on restore"},
					&cli.BoolFlag{Name: "restore-in-background", Usage: "Open restored tabs unfocused by default"},
				},
				Action: func(c *cli.Context) error {
					svc := storeService(cfg, store)
					settings, err := svc.GetSettings(c.Context)
					if err != nil {
						return outputError(err)
					}
					if c.IsSet("keep-active-tab") {
						settings.KeepActiveTab = c.Bool("keep-active-tab")
					}
					if c.IsSet("exclude-pinned") {
						settings.ExcludePinnedTabs = c.Bool("exclude-pinned")
					}
					if c.IsSet("prefix") {
						settings.SessionNamePrefix = c.String("prefix")
					}
					if c.IsSet("skip-duplicates") {
						settings.SkipDuplicatesOnRestore = c.Bool("skip-duplicates")
					}
					if c.IsSet("restore-in-background") {
						settings.RestoreInBackgroundDefault = c.Bool("restore-in-background")
					}
					updated, err := svc.UpdateSettings(c.Context, settings)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(updated)
				},
			},
		},
	}
}

// Helper functions

// storeService builds a service for commands that never touch the browser.
func storeService(cfg *config.Config, store *vault.Store) *service.Service {
	return service.New(nil, store, cfg.CDPURL(), nil)
}

// withBrowser connects to the browser's debugging endpoint for the duration
// of fn.
func withBrowser(ctx context.Context, cfg *config.Config, store *vault.Store, fn func(context.Context, *service.Service) error) error {
	rt := cdpbridge.NewRuntime(cfg.CDPURL())
	if err := rt.Connect(ctx); err != nil {
		return outputError(types.NewError(types.CodeCDPUnavailable,
			fmt.Sprintf("browser not reachable at %s", cfg.CDPURL()), err))
	}
	defer rt.Close()

	return fn(ctx, service.New(rt, store, cfg.CDPURL(), nil))
}

// requireArg fetches a positional argument or fails with a usage error.
func requireArg(c *cli.Context, n int, name string) (string, error) {
	arg := strings.TrimSpace(c.Args().Get(n))
	if arg == "" {
		return "", cli.Exit(fmt.Sprintf("missing required argument <%s>", name), 1)
	}
	return arg, nil
}

// parseIndices splits a comma-separated index list.
func parseIndices(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	indices := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", p)
		}
		indices = append(indices, n)
	}
	return indices, nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var coded *types.CodedError
	if errors.As(err, &coded) {
		return cli.Exit(fmt.Sprintf("[%s] %s", coded.Code, coded.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
