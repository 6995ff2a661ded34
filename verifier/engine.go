package verifier

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Motimate/extant-email/models"
)

// EngineConfig describes how to assemble an Engine. Resolver and Prober
// replace the default network implementations when set.
type EngineConfig struct {
	DNSServers      []string
	SMTPPort        int
	ResultCacheSize int

	// TestMode swaps the SMTP prober for one that fabricates outcomes.
	TestMode      bool
	SyntheticSeed uint64

	SendGridAPIHost string
	SendGridAPIKey  string
	VendorDomains   []string

	ExtraDisposableDomains []string

	Resolver MxResolver
	Prober   Prober
	Log      *logrus.Entry
}

// BatchChecker checks a batch of addresses with shared request options.
type BatchChecker interface {
	CheckBatch(ctx context.Context, emails []string, opts models.RequestOptions, maxAttempts int) models.BatchResult
}

// Engine owns the caches and the checking chain built on top of them:
// Dispatcher -> Retrier -> ResultCache -> Pipeline.
type Engine struct {
	// Resolver is the uncached resolver behind MxCache, for lookups that
	// should not be remembered.
	Resolver    MxResolver
	MxCache     *MxCache
	ResultCache *ResultCache
	Pipeline    *Pipeline
	Retrier     *Retrier
	Dispatcher  *Dispatcher
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	log := cfg.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	resolver := cfg.Resolver
	if resolver == nil {
		r, err := NewDNSResolver(cfg.DNSServers...)
		if err != nil {
			return nil, fmt.Errorf("failed to create dns resolver: %w", err)
		}
		resolver = r
	}

	prober := cfg.Prober
	if prober == nil {
		prober = newDefaultProber(cfg, log)
	}

	mxCache := NewMxCache(resolver, log)
	pipeline := &Pipeline{
		Syntax:   NewCheckmailValidator(),
		Misc:     NewListClassifier(cfg.ExtraDisposableDomains...),
		Mx:       mxCache,
		Prober:   prober,
		SMTPPort: cfg.SMTPPort,
		Log:      log.WithField("component", "pipeline"),
	}

	resultCache, err := NewResultCache(pipeline, cfg.ResultCacheSize, log)
	if err != nil {
		return nil, err
	}

	retrier := NewRetrier(resultCache, log.WithField("component", "retrier"))

	return &Engine{
		Resolver:    resolver,
		MxCache:     mxCache,
		ResultCache: resultCache,
		Pipeline:    pipeline,
		Retrier:     retrier,
		Dispatcher:  NewDispatcher(retrier, log.WithField("component", "dispatcher")),
	}, nil
}

func newDefaultProber(cfg EngineConfig, log *logrus.Entry) Prober {
	if cfg.TestMode {
		seed := cfg.SyntheticSeed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		log.Warn("test mode enabled, probe outcomes are synthetic")
		return NewSyntheticProber(seed)
	}

	smtpProber := NewSMTPProber(log)
	if cfg.SendGridAPIKey == "" {
		return smtpProber
	}
	return NewVendorRouter(smtpProber, NewSendGridProber(cfg.SendGridAPIHost, cfg.SendGridAPIKey), cfg.VendorDomains)
}

// CheckBatch is a shortcut for Dispatcher.Dispatch.
func (e *Engine) CheckBatch(ctx context.Context, emails []string, opts models.RequestOptions, maxAttempts int) models.BatchResult {
	return e.Dispatcher.Dispatch(ctx, emails, opts, maxAttempts)
}

// Close drops everything held by the caches.
func (e *Engine) Close() {
	e.ResultCache.Purge()
	e.MxCache.Purge()
}
