package verifier

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Motimate/extant-email/models"
)

// Checker produces exactly one result for a request. It never fails: every
// problem is folded into the verdict.
type Checker interface {
	Check(ctx context.Context, req models.VerificationRequest) models.VerificationResult
}

// Pipeline runs syntax, MX, heuristic and probe checks for a single address.
type Pipeline struct {
	Syntax SyntaxValidator
	Misc   MiscClassifier
	Mx     MxResolver
	Prober Prober
	// SMTPPort overrides the probed port; zero means 25.
	SMTPPort int
	Log      *logrus.Entry
}

func (p *Pipeline) Check(ctx context.Context, req models.VerificationRequest) models.VerificationResult {
	log := p.logger().WithField("email", req.ToEmail)

	result, reason := p.check(ctx, req, log)
	verdictsTotal.WithLabelValues(result.IsReachable.String()).Inc()

	entry := log.WithField("verdict", result.IsReachable)
	if reason != nil {
		entry = entry.WithError(reason)
	}
	entry.Debug("pipeline finished")

	return result
}

func (p *Pipeline) check(ctx context.Context, req models.VerificationRequest, log *logrus.Entry) (models.VerificationResult, error) {
	syntax := p.Syntax.Validate(req.ToEmail)
	if !syntax.IsValid {
		return models.NewResult(req.ToEmail, models.ReachableInvalid), ErrSyntaxInvalid
	}

	hosts, err := p.Mx.LookupMX(ctx, syntax.Domain)
	if err != nil {
		return models.NewResult(req.ToEmail, models.ReachableUnknown), err
	}
	if len(hosts) == 0 {
		return models.NewResult(req.ToEmail, models.ReachableInvalid), ErrMxEmpty
	}
	log.WithField("mx", hosts[0]).Debug("resolved exchanger")

	misc := p.Misc.Classify(syntax)

	port := p.SMTPPort
	if port == 0 {
		port = defaultSMTPPort
	}

	start := time.Now()
	smtp, probeErr := p.Prober.Probe(ctx, ProbeInput{
		Address: syntax.Address,
		Host:    hosts[0],
		Port:    port,
		Domain:  syntax.Domain,
		Request: req,
	})
	probeDuration.WithLabelValues(probeLabel(probeErr)).Observe(time.Since(start).Seconds())

	result := models.NewResult(req.ToEmail, Classify(misc, smtp, probeErr))
	result.ApplyMisc(misc)
	if probeErr == nil && smtp != nil {
		result.ApplySMTP(*smtp)
	}
	return result, probeErr
}

func (p *Pipeline) logger() *logrus.Entry {
	if p.Log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return p.Log
}

func probeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrProbeTimeout):
		return "timeout"
	default:
		return "failed"
	}
}
