package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ppiankov/wellwatch/internal/alert"
	"github.com/ppiankov/wellwatch/internal/audit"
	"github.com/ppiankov/wellwatch/internal/config"
	"github.com/ppiankov/wellwatch/internal/guard"
	"github.com/ppiankov/wellwatch/internal/lexicon"
	"github.com/ppiankov/wellwatch/internal/metrics"
	"github.com/ppiankov/wellwatch/internal/scorer"
	"github.com/ppiankov/wellwatch/internal/session"
)

// service is the guard plus the sinks it writes to.
type service struct {
	guard    *guard.Guard
	metrics  *metrics.Collector
	recorder *audit.Recorder
	alerts   *alert.Dispatcher
	closers  []func() error
}

// newService wires the guard from cfg. Audit sinks that fail to open are
// fatal so a misconfigured path never silently disables the audit trail.
func newService(cfg *config.Config, logger *slog.Logger) (*service, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	lex, lexHash, err := lexicon.LoadWithHash(cfg.LexiconPath)
	if err != nil {
		return nil, err
	}

	rt := &service{}
	if cfg.Metrics.Enabled {
		rt.metrics = metrics.New(cfg.Metrics.Namespace)
	}

	var sinks []audit.Sink
	if cfg.Audit.JSONLPath != "" {
		l, err := audit.Open(cfg.Audit.JSONLPath)
		if err != nil {
			rt.Close()
			return nil, err
		}
		sinks = append(sinks, l)
		rt.closers = append(rt.closers, l.Close)
	}
	if cfg.Audit.SQLitePath != "" {
		s, err := audit.OpenSQLite(cfg.Audit.SQLitePath)
		if err != nil {
			rt.Close()
			return nil, err
		}
		sinks = append(sinks, s)
		rt.closers = append(rt.closers, s.Close)
	}

	opts := []audit.RecorderOption{
		audit.WithFailureHook(func(sink string, err error) {
			rt.metrics.RecordAuditFailure(sink)
		}),
	}
	if cfg.Audit.QueueSize > 0 {
		opts = append(opts, audit.WithQueueSize(cfg.Audit.QueueSize))
	}
	rt.recorder = audit.NewRecorder(logger, sinks, opts...)

	gopts := guard.Options{
		Tracker:       session.NewTracker(cfg.Session.Window, cfg.Session.IdleTTL),
		Audit:         rt.recorder,
		Metrics:       rt.metrics,
		Logger:        logger,
		DefaultLocale: cfg.DefaultLocale,
		LexiconHash:   lexHash,
	}
	if d := alert.NewDispatcher(cfg.Alerts, logger); d != nil {
		rt.alerts = d
		gopts.Alerts = d
	}
	rt.guard = guard.New(scorer.New(lex), gopts)

	logger.Info("wellwatch ready",
		"lexicon_hash", lexHash,
		"audit_sinks", len(sinks),
		"alerts", len(cfg.Alerts),
	)
	return rt, nil
}

// Close drains pending audit entries and alerts, then closes the sinks.
func (rt *service) Close() error {
	var errs []error
	if rt.recorder != nil {
		errs = append(errs, rt.recorder.Close())
	}
	rt.alerts.Wait()
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, fmt.Errorf("close audit sink: %w", err))
		}
	}
	return errors.Join(errs...)
}
