package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	videoanalytics "video-analytics/agents/video-analytics"
	"video-analytics/internal/apperrors"
	"video-analytics/shared/monitoring"
	"video-analytics/shared/scheduler"
)

var (
	askFile         string
	askShowSQL      bool
	evalConcurrency int
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question",
	Long:  "Answer one question from the loaded JSON document, or from the database when no document is loaded.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var loadCmd = &cobra.Command{
	Use:   "load <file.json>",
	Short: "Load a JSON document; later questions are answered from it",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the loaded document; questions go to the database again",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer questions and commands read line by line from stdin",
	Long: "Read questions and commands (/start, /total_videos, /load <path>, /clear_file, ...) from stdin, " +
		"one per line, while serving /health and /status and running maintenance checks.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

var evalCmd = &cobra.Command{
	Use:   "eval <cases.yaml>",
	Short: "Run a question set and report accuracy",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the videos and video_snapshots tables",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Upsert videos and snapshots from a JSON export into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "Load this JSON document before asking")
	askCmd.Flags().BoolVar(&askShowSQL, "show-sql", false, "Print the generated SQL in database mode")
	evalCmd.Flags().IntVarP(&evalConcurrency, "concurrency", "c", 4, "Questions answered in parallel")

	rootCmd.AddCommand(askCmd, loadCmd, clearCmd, serveCmd, evalCmd, migrateCmd, importCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, needs{model: true, optionalStore: true})
	if err != nil {
		return err
	}
	defer a.close()

	if askFile != "" {
		if _, err := a.agent.LoadFile(ctx, askFile); err != nil {
			return err
		}
	} else {
		a.agent.Restore()
	}

	qctx, qcancel := a.questionContext(ctx)
	defer qcancel()

	res, err := a.agent.Answer(qctx, strings.Join(args, " "))
	if err != nil {
		fmt.Println(apperrors.UserMessage(err))
		return err
	}
	if askShowSQL && res.SQL != "" {
		fmt.Fprintln(os.Stderr, res.SQL)
	}
	fmt.Println(res.Value)
	return nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, needs{})
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println(a.agent.Handle(ctx, "/load "+args[0]))
	if !a.agent.HasDocument() {
		return errors.New("document was not loaded")
	}
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, needs{})
	if err != nil {
		return err
	}
	defer a.close()

	a.agent.Restore()
	fmt.Println(a.agent.Handle(ctx, "/clear_file"))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, needs{model: true, optionalStore: true})
	if err != nil {
		return err
	}
	defer a.close()

	if a.agent.Restore() {
		a.logger.Info("restored the last uploaded document")
	}

	g, gctx := errgroup.WithContext(ctx)

	var pinger monitoring.Pinger
	if a.store != nil {
		pinger = a.store
	}
	health := monitoring.NewHealthServer(a.monitor, pinger, a.cfg.Monitoring.HealthPort, a.logger.Named("health"))
	g.Go(func() error { return health.Run(gctx) })

	if jobs := a.agent.MaintenanceJobs(); len(jobs) > 0 {
		s := scheduler.New(a.cfg.Maintenance.Schedule, a.monitor, a.logger.Named("scheduler"), jobs...)
		g.Go(func() error {
			if err := s.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		defer cancel()
		return serveLines(gctx, a, os.Stdin)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// serveLines answers each input line on its own goroutine and prints
// replies as they complete. It returns after stdin closes and every pending
// line is answered, or when ctx is cancelled.
func serveLines(ctx context.Context, a *app, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	var (
		wg  sync.WaitGroup
		out sync.Mutex
	)
	defer wg.Wait()

	fmt.Println(a.agent.Handle(ctx, "/start"))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				wg.Wait()
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				qctx, cancel := a.questionContext(ctx)
				defer cancel()

				reply := a.agent.Handle(qctx, line)
				out.Lock()
				fmt.Printf("> %s\n%s\n", line, reply)
				out.Unlock()
			}()
		}
	}
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cases, err := videoanalytics.LoadEvalCases(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(ctx, needs{model: true, optionalStore: true})
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.agent.Evaluate(ctx, cases, evalConcurrency)
	if err != nil {
		return err
	}

	for i, r := range report.Results {
		status := "FAIL"
		if r.Correct {
			status = "PASS"
		}
		fmt.Printf("%d. [%s] %s\n", i+1, status, r.Case.Question)
		if r.Case.Description != "" {
			fmt.Printf("   %s\n", r.Case.Description)
		}
		switch {
		case r.Err != nil:
			fmt.Printf("   error: %v\n", r.Err)
		case r.Case.Expected != "":
			fmt.Printf("   got %s, expected %s\n", r.Got, r.Case.Expected)
		default:
			fmt.Printf("   got %s\n", r.Got)
		}
	}
	fmt.Printf("\nAccuracy: %d/%d (%.1f%%)\n", report.Correct, len(report.Results), report.Accuracy()*100)
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, needs{store: true})
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.Migrate(ctx); err != nil {
		return err
	}
	fmt.Printf("Schema is up to date (%s)\n", a.store.Dialect())
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	a, err := newApp(ctx, needs{store: true})
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.Migrate(ctx); err != nil {
		return err
	}
	stats, err := a.store.ImportJSON(ctx, data)
	if err != nil {
		return err
	}
	total, err := a.store.CountVideos(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("import finished",
		zap.Int("videos", stats.Videos),
		zap.Int("snapshots", stats.Snapshots),
		zap.Int("delta_mismatches", stats.DeltaMismatches))
	fmt.Printf("Imported %s videos and %s snapshots (%d videos and %d snapshots skipped); %s videos in the database\n",
		humanize.Comma(int64(stats.Videos)), humanize.Comma(int64(stats.Snapshots)),
		stats.SkippedVideos, stats.SkippedSnapshots, humanize.Comma(total))
	return nil
}
