package videoanalytics

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"video-analytics/internal/apperrors"
	"video-analytics/internal/filemode"
	"video-analytics/internal/models"
	"video-analytics/internal/nlq"
	"video-analytics/internal/store"
	"video-analytics/shared/ai"
	"video-analytics/shared/config"
	"video-analytics/shared/monitoring"
	"video-analytics/shared/scheduler"
	"video-analytics/shared/storage"
)

const (
	ModeStore    = "sql"
	ModeDocument = "file"
)

// Result is the answer to one question.
type Result struct {
	Value      string
	Determined bool
	Mode       string
	// SQL is the executed statement in store mode.
	SQL string
}

// Agent answers questions from the store, or from an uploaded document
// while one is loaded.
type Agent struct {
	generator *nlq.Generator
	store     *store.Store
	session   *filemode.Session
	cache     *storage.DocumentCache
	monitor   *monitoring.Monitor
	logger    *zap.Logger
}

// New wires an agent. st and cache may be nil: without a store only
// document questions can be answered, without a cache uploads are not kept
// across restarts.
func New(cfg *config.Config, model ai.Model, st *store.Store, cache *storage.DocumentCache, monitor *monitoring.Monitor, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	if monitor == nil {
		monitor = monitoring.NewMonitor(logger)
	}
	dialect := string(store.Postgres)
	if st != nil {
		dialect = string(st.Dialect())
	}
	resolver := filemode.NewResolver(model, cfg.FileMode.MaxContext, cfg.FileMode.SampleSize, logger.Named("filemode"))
	return &Agent{
		generator: nlq.NewGenerator(model, cfg.Prompt.DefaultYear, dialect, logger.Named("nlq")),
		store:     st,
		session:   filemode.NewSession(resolver, cache, logger.Named("session")),
		cache:     cache,
		monitor:   monitor,
		logger:    logger,
	}
}

func (a *Agent) Name() string {
	return "Video Analytics"
}

func (a *Agent) Monitor() *monitoring.Monitor {
	return a.monitor
}

// AnswerViaStore generates SQL for question, runs it and formats the first
// cell as an integer.
func (a *Agent) AnswerViaStore(ctx context.Context, question string) (Result, error) {
	if a.store == nil {
		return Result{}, apperrors.New(apperrors.ErrExecution, "store is not configured")
	}

	query, err := a.generator.Generate(ctx, question)
	if err != nil {
		return Result{}, err
	}

	scalar, err := a.store.Execute(ctx, query)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Value:      nlq.FormatNumber(scalar.Value),
		Determined: scalar.Determined,
		Mode:       ModeStore,
		SQL:        query,
	}, nil
}

// AnswerViaDocument answers question from the loaded document.
func (a *Agent) AnswerViaDocument(ctx context.Context, question string) (Result, error) {
	ans, err := a.session.Answer(ctx, question)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: ans.Value, Determined: ans.Determined, Mode: ModeDocument}, nil
}

// Answer uses the loaded document when there is one and the store
// otherwise.
func (a *Agent) Answer(ctx context.Context, question string) (Result, error) {
	start := time.Now()
	mode := ModeStore
	answer := a.AnswerViaStore
	if a.session.Active() {
		mode = ModeDocument
		answer = a.AnswerViaDocument
	}

	res, err := answer(ctx, question)
	if err != nil {
		a.monitor.RecordFailure(mode, err, time.Since(start))
		return Result{}, fmt.Errorf("%s mode: %w", mode, err)
	}
	a.monitor.RecordSuccess(mode, time.Since(start))
	if !res.Determined {
		a.logger.Warn("answer could not be determined, replying 0",
			zap.String("mode", mode),
			zap.String("question", apperrors.Truncate(question, 100)))
	}
	return res, nil
}

// Reply answers question and renders any failure as the message shown to
// the user.
func (a *Agent) Reply(ctx context.Context, question string) string {
	res, err := a.Answer(ctx, question)
	if err != nil {
		return apperrors.UserMessage(err)
	}
	return res.Value
}

// LoadDocument validates and activates an uploaded JSON document.
func (a *Agent) LoadDocument(ctx context.Context, name string, data []byte) (*models.Document, error) {
	if err := checkExtension(name); err != nil {
		return nil, err
	}
	return a.session.LoadBytes(name, data)
}

// LoadFile validates and activates the JSON document at path.
func (a *Agent) LoadFile(ctx context.Context, path string) (*models.Document, error) {
	if err := checkExtension(path); err != nil {
		return nil, err
	}
	return a.session.LoadFile(path)
}

func checkExtension(name string) error {
	if !strings.EqualFold(filepath.Ext(name), ".json") {
		return apperrors.New(apperrors.ErrValidation, "file %q must have a .json extension", filepath.Base(name))
	}
	return nil
}

// Clear drops the loaded document so questions go to the store again.
func (a *Agent) Clear() bool {
	return a.session.Clear()
}

// Restore reloads the last uploaded document from the cache.
func (a *Agent) Restore() bool {
	return a.session.Restore()
}

// HasDocument reports whether questions are answered from a document.
func (a *Agent) HasDocument() bool {
	return a.session.Active()
}

// MaintenanceJobs returns the periodic checks for the configured
// dependencies.
func (a *Agent) MaintenanceJobs() []scheduler.Job {
	var jobs []scheduler.Job
	if a.cache != nil {
		jobs = append(jobs, scheduler.JobFunc{JobName: "document_cache", Fn: a.verifyCache})
	}
	if a.store != nil {
		jobs = append(jobs, scheduler.JobFunc{JobName: "store", Fn: a.store.Ping})
	}
	return jobs
}

// verifyCache drops a cached document whose file was altered or removed.
// The loaded document is kept; only its on-disk copy is gone.
func (a *Agent) verifyCache(ctx context.Context) error {
	ok, err := a.cache.Verify()
	if err != nil {
		return fmt.Errorf("failed to verify document cache: %w", err)
	}
	if !ok && a.session.Active() {
		a.logger.Warn("cached document copy is gone, the loaded document will not survive a restart")
	}
	return nil
}
