package verifier

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Motimate/extant-email/models"
)

type stubResolver struct {
	mu    sync.Mutex
	hosts map[string][]string
	errs  map[string]error
	calls atomic.Int32
}

func newStubResolver() *stubResolver {
	return &stubResolver{
		hosts: make(map[string][]string),
		errs:  make(map[string]error),
	}
}

func (r *stubResolver) with(domain string, hosts ...string) *stubResolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts[domain] = hosts
	return r
}

func (r *stubResolver) failing(domain string, err error) *stubResolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[domain] = err
	return r
}

func (r *stubResolver) LookupMX(ctx context.Context, domain string) ([]string, error) {
	r.calls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.errs[domain]; ok {
		return nil, err
	}
	return r.hosts[domain], nil
}

type stubProber struct {
	mu      sync.Mutex
	signals models.SmtpSignals
	err     error
	inputs  []ProbeInput
	calls   atomic.Int32
}

func (p *stubProber) Probe(ctx context.Context, in ProbeInput) (*models.SmtpSignals, error) {
	p.calls.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inputs = append(p.inputs, in)
	if p.err != nil {
		return nil, p.err
	}
	s := p.signals
	return &s, nil
}

// scriptedChecker returns verdicts from a script, repeating the last one.
type scriptedChecker struct {
	mu     sync.Mutex
	script []models.Reachable
	calls  atomic.Int32
}

func (c *scriptedChecker) Check(ctx context.Context, req models.VerificationRequest) models.VerificationResult {
	n := int(c.calls.Add(1))
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := n - 1
	if idx >= len(c.script) {
		idx = len(c.script) - 1
	}
	return models.NewResult(req.ToEmail, c.script[idx])
}

// countingChecker returns a fixed verdict and counts calls per address.
type countingChecker struct {
	verdict models.Reachable
	mu      sync.Mutex
	perAddr map[string]int
	calls   atomic.Int32
}

func newCountingChecker(verdict models.Reachable) *countingChecker {
	return &countingChecker{verdict: verdict, perAddr: make(map[string]int)}
}

func (c *countingChecker) Check(ctx context.Context, req models.VerificationRequest) models.VerificationResult {
	c.calls.Add(1)
	c.mu.Lock()
	c.perAddr[req.ToEmail]++
	c.mu.Unlock()
	return models.NewResult(req.ToEmail, c.verdict)
}

var errStubDNS = errors.New("stub dns failure")
