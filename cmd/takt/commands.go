package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/deadjay/takt-sub000/internal/event"
	"github.com/deadjay/takt-sub000/internal/extract"
	"github.com/deadjay/takt-sub000/internal/ics"
	"github.com/deadjay/takt-sub000/internal/store"
)

const dateFormat = "2006-01-02 15:04"

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract events from a text file, or stdin with '-'.",
		ArgsUsage: "<file|->",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "at", Usage: "Reference date (YYYY-MM-DD) for yearless dates; defaults to today."},
			&cli.BoolFlag{Name: "save", Usage: "Persist the extracted events."},
			&cli.BoolFlag{Name: "json", Usage: "Print events as JSON."},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := resolveConfig(c)
			if err != nil {
				return err
			}
			if c.NArg() != 1 {
				return fmt.Errorf("usage: takt extract <file|->")
			}

			text, err := readInput(c.Args().First())
			if err != nil {
				return err
			}

			now := time.Now()
			if at := c.String("at"); at != "" {
				now, err = time.ParseInLocation("2006-01-02", at, time.Local)
				if err != nil {
					return fmt.Errorf("parsing --at date: %w", err)
				}
			}

			pipeline := extract.NewPipeline(extract.WithFallbackHour(cfg.FallbackHourInt()))
			events := pipeline.Extract(text, now)
			logger.Info("extraction finished", "events", len(events))

			if c.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(events); err != nil {
					return err
				}
			} else {
				for _, ev := range events {
					deadline := ""
					if ev.Deadline != nil {
						deadline = ev.Deadline.Format(dateFormat)
					}
					printEventLine(os.Stdout, ev.ID, ev.Name, ev.Date.Format(dateFormat), deadline, ev.Done)
				}
			}

			if !c.Bool("save") {
				return nil
			}
			s, err := store.NewStore(cfg.DBPath.Value)
			if err != nil {
				return err
			}
			defer s.Close()
			for i := range events {
				if err := s.Add(context.Background(), &events[i]); err != nil {
					return err
				}
			}
			logger.Info("events saved", "count", len(events), "db", cfg.DBPath.Value)
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored events, soonest first.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "Include completed events."},
			&cli.BoolFlag{Name: "upcoming", Usage: "Only events from today onward."},
			&cli.IntFlag{Name: "limit", Value: 50},
		},
		Action: func(c *cli.Context) error {
			return withStore(c, func(s *store.SQLiteStore) error {
				opts := store.ListOpts{
					IncludeDone: c.Bool("all"),
					Limit:       c.Int("limit"),
				}
				if c.Bool("upcoming") {
					opts.UpcomingFrom = time.Now()
				}
				events, err := s.List(context.Background(), opts)
				if err != nil {
					return err
				}
				printEvents(events)
				return nil
			})
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search events by name and notes.",
		ArgsUsage: "<query>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("usage: takt search <query>")
			}
			query := strings.Join(c.Args().Slice(), " ")
			return withStore(c, func(s *store.SQLiteStore) error {
				events, err := s.Search(context.Background(), query, 50)
				if err != nil {
					return err
				}
				printEvents(events)
				return nil
			})
		},
	}
}

func doneCommand() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Mark an event as completed.",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: takt done <id>")
			}
			return withStore(c, func(s *store.SQLiteStore) error {
				return s.SetDone(context.Background(), c.Args().First(), true)
			})
		},
	}
}

func rmCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete an event.",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: takt rm <id>")
			}
			return withStore(c, func(s *store.SQLiteStore) error {
				return s.Delete(context.Background(), c.Args().First())
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all events to stdout.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "json", Usage: "json or ics"},
		},
		Action: func(c *cli.Context) error {
			return withStore(c, func(s *store.SQLiteStore) error {
				switch c.String("format") {
				case "json":
					return s.ExportJSON(context.Background(), os.Stdout)
				case "ics":
					events, err := s.List(context.Background(), store.ListOpts{IncludeDone: true})
					if err != nil {
						return err
					}
					payload, err := ics.Export(events)
					if err != nil {
						return err
					}
					_, err = io.WriteString(os.Stdout, payload)
					return err
				default:
					return fmt.Errorf("unknown format %q (want json or ics)", c.String("format"))
				}
			})
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import events from a .json or .ics file; existing IDs are updated.",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: takt import <file>")
			}
			path := c.Args().First()
			return withStore(c, func(s *store.SQLiteStore) error {
				switch strings.ToLower(filepath.Ext(path)) {
				case ".ics":
					raw, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					events, err := ics.Import(string(raw))
					if err != nil {
						return err
					}
					for _, ev := range events {
						if err := s.Upsert(context.Background(), ev); err != nil {
							return err
						}
					}
					fmt.Printf("imported %d events\n", len(events))
					return nil
				default:
					f, err := os.Open(path)
					if err != nil {
						return err
					}
					defer f.Close()
					n, err := s.ImportJSON(context.Background(), f)
					if err != nil {
						return err
					}
					fmt.Printf("imported %d events\n", n)
					return nil
				}
			})
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show event counts.",
		Action: func(c *cli.Context) error {
			return withStore(c, func(s *store.SQLiteStore) error {
				st, err := s.Stats(context.Background())
				if err != nil {
					return err
				}
				fmt.Printf("events: %d (%d open, %d done)\n", st.Total, st.Open, st.Done)
				fmt.Printf("with deadline: %d\n", st.Deadlines)
				if st.NextDate != nil {
					fmt.Printf("next: %s\n", st.NextDate.Format(dateFormat))
				}
				fmt.Printf("db size: %d bytes\n", st.DBSizeBytes)
				return nil
			})
		},
	}
}

// withStore resolves config, opens the store and guarantees it is closed.
func withStore(c *cli.Context, fn func(*store.SQLiteStore) error) error {
	cfg, _, err := resolveConfig(c)
	if err != nil {
		return err
	}
	s, err := store.NewStore(cfg.DBPath.Value)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func readInput(arg string) (string, error) {
	if arg == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", arg, err)
	}
	return string(raw), nil
}

func printEvents(events []*event.Event) {
	for _, ev := range events {
		deadline := ""
		if ev.Deadline != nil {
			deadline = ev.Deadline.Format(dateFormat)
		}
		printEventLine(os.Stdout, ev.ID, ev.Name, ev.Date.Format(dateFormat), deadline, ev.Done)
	}
}
