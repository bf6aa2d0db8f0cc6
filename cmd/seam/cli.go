package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"seam/internal/config"
	"seam/internal/errors"
	"seam/internal/ops"
	"seam/internal/retention"
	"seam/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "seam",
		Usage:   "Segment and document provenance engine",
		Version: Version,
		Commands: []*cli.Command{
			ingestCmd(db),
			listCmd(db),
			fetchCmd(db, cfg),
			updateCmd(db, cfg),
			versionsCmd(db, cfg),
			reconcileCmd(db, cfg),
			segmentsCmd(db),
			deleteCmd(db),
			restoreCmd(db),
			recycleCmd(db),
			purgeCmd(db, cfg),
			exportCmd(db, baseDir),
			uiCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// ingestCmd creates the ingest command.
func ingestCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Store a new document (reads text from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "owner", Aliases: []string{"u"}, Value: "default", Usage: "Owner of the document"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Document title"},
			&cli.StringFlag{Name: "source-type", Aliases: []string{"s"}, Usage: "Origin of the text: text|chat|transcript"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("document text must be piped via stdin"))
			}

			text, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if text == "" {
				return outputError(errors.NewInvalidRequest("text is required"))
			}

			output, err := ops.Ingest(c.Context, db, ops.IngestInput{
				OwnerID:    c.String("owner"),
				Title:      c.String("title"),
				Text:       text,
				SourceType: c.String("source-type"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List an owner's documents",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "owner", Aliases: []string{"u"}, Value: "default", Usage: "Owner to list documents for"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListDocuments(c.Context, db, ops.ListDocumentsInput{
				OwnerID: c.String("owner"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a document at a version",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "at", Usage: "Version to resolve (0 for the originals)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchDocumentInput{DocumentID: c.Args().First()}
			if c.IsSet("at") {
				v := c.Int("at")
				input.Version = &v
			}

			output, err := ops.FetchDocument(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Record a new document version (optionally reads text from stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Value: "default", Usage: "User recording the version"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PatchDocumentInput{
				DocumentID: c.Args().First(),
				UserID:     c.String("user"),
			}

			// Read new text from stdin if piped
			if stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if text != "" {
					input.Text = &text
				}
			}

			if title := c.String("title"); title != "" {
				input.Title = &title
			}

			output, err := ops.PatchDocument(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// versionsCmd creates the versions command.
func versionsCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "versions",
		Usage:     "List a document's version history",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.ListVersions(c.Context, db, cfg, ops.ListVersionsInput{
				DocumentID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// reconcileCmd creates the reconcile command.
func reconcileCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "reconcile",
		Usage:     "Re-derive a document's auto segments for a mode",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Required: true, Usage: "Segmentation mode: qa|paragraphs"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Reconcile(c.Context, db, cfg, ops.ReconcileInput{
				DocumentID: c.Args().First(),
				Mode:       c.String("mode"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// segmentsCmd creates the segments command.
func segmentsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "segments",
		Usage:     "List a document's segments",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "Restrict to one segmentation mode"},
			&cli.IntFlag{Name: "page", Value: 1, Usage: "Page number"},
			&cli.IntFlag{Name: "page-size", Usage: "Rows per page"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListSegments(c.Context, db, ops.ListSegmentsInput{
				DocumentID: c.Args().First(),
				Mode:       c.String("mode"),
				Page:       c.Int("page"),
				PageSize:   c.Int("page-size"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete a document, segment, or folder",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Value: "document", Usage: "Entity kind: document|segment|folder"},
		},
		Action: func(c *cli.Context) error {
			id := c.Args().First()

			var output *ops.DeleteOutput
			var err error
			switch c.String("kind") {
			case "document":
				output, err = ops.DeleteDocument(c.Context, db, id)
			case "segment":
				output, err = ops.DeleteSegment(c.Context, db, id)
			case "folder":
				output, err = ops.DeleteFolder(c.Context, db, id)
			default:
				err = errors.NewInvalidRequest("kind must be one of: document, segment, folder")
			}
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// restoreCmd creates the restore command.
func restoreCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Restore a soft-deleted document, segment, or folder",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Value: "document", Usage: "Entity kind: document|segment|folder"},
		},
		Action: func(c *cli.Context) error {
			id := c.Args().First()

			var output *ops.DeleteOutput
			var err error
			switch c.String("kind") {
			case "document":
				output, err = ops.RestoreDocument(c.Context, db, id)
			case "segment":
				output, err = ops.RestoreSegment(c.Context, db, id)
			case "folder":
				output, err = ops.RestoreFolder(c.Context, db, id)
			default:
				err = errors.NewInvalidRequest("kind must be one of: document, segment, folder")
			}
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// recycleCmd creates the recycle command.
func recycleCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "recycle",
		Usage: "List soft-deleted entities",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "owner", Aliases: []string{"u"}, Value: "default", Usage: "Owner to list deletions for"},
			&cli.StringFlag{Name: "document", Aliases: []string{"d"}, Usage: "Restrict segments to one document"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListDeleted(c.Context, db, ops.ListDeletedInput{
				OwnerID:    c.String("owner"),
				DocumentID: c.String("document"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "purge",
		Usage:     "Permanently delete tombstoned entities",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Value: "document", Usage: "Entity kind: document|segment|folder"},
			&cli.BoolFlag{Name: "expired", Usage: "Purge everything past the retention window instead of one entity"},
			&cli.StringFlag{Name: "older-than", Usage: "Retention window override (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("expired") || c.IsSet("older-than") {
				days := cfg.RetentionDays
				if olderThan := c.String("older-than"); olderThan != "" {
					d, err := parseDuration(olderThan)
					if err != nil {
						return outputError(errors.NewInvalidRequest(err.Error()))
					}
					days = d
				}

				output, err := ops.PurgeCustom(c.Context, db, ops.PurgeCustomInput{Days: days})
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			}

			output, err := ops.Purge(c.Context, db, ops.PurgeInput{
				Entity: c.String("kind"),
				ID:     c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, baseDir string) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a document to a JSONL file",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: exports dir under the data directory)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, ops.ExportInput{
				DocumentID: c.Args().First(),
				Path:       c.String("path"),
				BaseDir:    baseDir,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// uiCmd creates the ui command.
func uiCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Serve the read-only web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 7171, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			sweeper := retention.NewSweeper(db, retention.Policy{
				Days:     cfg.RetentionDays,
				Enabled:  cfg.PurgeEnabled(),
				Interval: cfg.SweepInterval(),
			})
			sweeper.Start()
			defer sweeper.Stop()

			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if sErr, ok := err.(*errors.SeamError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
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
