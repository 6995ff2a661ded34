package verifier

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Motimate/extant-email/models"
)

// DefaultMaxAttempts is used by the batch endpoints when nothing else is set.
const DefaultMaxAttempts = 2

// Retrier re-runs a check while the verdict stays Unknown, up to a bounded
// number of attempts, with no delay in between.
type Retrier struct {
	Checker Checker
	Log     *logrus.Entry
}

func NewRetrier(checker Checker, log *logrus.Entry) *Retrier {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Retrier{Checker: checker, Log: log}
}

func (r *Retrier) Retry(ctx context.Context, req models.VerificationRequest, maxAttempts int) models.VerificationResult {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var result models.VerificationResult
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryAttempts.Inc()
		r.Log.WithFields(logrus.Fields{
			"email":   req.ToEmail,
			"attempt": attempt,
		}).Info("checking address")

		result = r.Checker.Check(ctx, req)
		if result.IsReachable != models.ReachableUnknown {
			break
		}
	}

	r.Log.WithFields(logrus.Fields{
		"email":        req.ToEmail,
		"is_reachable": result.IsReachable,
	}).Debug("got result")

	return result
}
