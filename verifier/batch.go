package verifier

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Motimate/extant-email/models"
)

// Dispatcher checks every address of a batch concurrently and returns the
// results in input order once all of them are done.
//
// There is no cap on in-flight checks: a batch of N addresses may open N
// SMTP sessions at once.
type Dispatcher struct {
	Retrier *Retrier
	Log     *logrus.Entry
}

func NewDispatcher(retrier *Retrier, log *logrus.Entry) *Dispatcher {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Dispatcher{Retrier: retrier, Log: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, emails []string, opts models.RequestOptions, maxAttempts int) models.BatchResult {
	// A started batch always runs to completion.
	ctx = context.WithoutCancel(ctx)

	log := d.Log.WithFields(logrus.Fields{
		"batch_id": uuid.NewString(),
		"size":     len(emails),
	})
	log.Info("batch started")
	start := time.Now()

	items := make([]models.VerificationResult, len(emails))
	var wg sync.WaitGroup
	for i, email := range emails {
		wg.Add(1)
		go func(i int, req models.VerificationRequest) {
			defer wg.Done()
			items[i] = d.Retrier.Retry(ctx, req, maxAttempts)
		}(i, opts.NewRequest(email))
	}
	wg.Wait()

	stats := models.ComputeStats(items)
	log.WithFields(logrus.Fields{
		"safe":     stats.Safe,
		"risky":    stats.Risky,
		"invalid":  stats.Invalid,
		"unknown":  stats.Unknown,
		"banned":   stats.Banned,
		"duration": time.Since(start).String(),
	}).Info("batch completed")

	return models.BatchResult{Items: items, Stats: stats}
}
