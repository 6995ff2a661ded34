package verifier

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Motimate/extant-email/models"
)

const defaultSMTPPort = 25

// ProbeInput is everything a prober needs to check one mailbox.
type ProbeInput struct {
	Address string
	Host    string
	Port    int
	Domain  string
	Request models.VerificationRequest
}

// Prober asks a mail exchanger whether a mailbox would accept mail. A nil
// error always comes with non-nil signals.
type Prober interface {
	Probe(ctx context.Context, in ProbeInput) (*models.SmtpSignals, error)
}

var (
	fullInboxHints = []string{
		"insufficient", "over quota", "quota exceeded", "mailbox full",
		"mailbox is full", "too many messages", "out of storage",
		"storage allocation",
	}
	disabledHints = []string{
		"disabled", "discontinued", "inactive", "suspended", "deactivated",
	}
	bannedHints = []string{
		"blocked", "blacklist", "blocklist", "banned", "spamhaus",
		"poor reputation", "listed at", "rbl",
	}
)

// SMTPProber runs a RCPT TO dialogue against the exchanger and follows up with
// a random recipient to detect catch-all domains.
type SMTPProber struct {
	dialer *net.Dialer
	log    *logrus.Entry
}

func NewSMTPProber(log *logrus.Entry) *SMTPProber {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SMTPProber{
		dialer: &net.Dialer{},
		log:    log.WithField("component", "smtp_prober"),
	}
}

func (p *SMTPProber) Probe(ctx context.Context, in ProbeInput) (*models.SmtpSignals, error) {
	if in.Request.SMTPTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.Request.SMTPTimeout)
		defer cancel()
	}

	port := in.Port
	if port == 0 {
		port = defaultSMTPPort
	}
	addr := net.JoinHostPort(in.Host, strconv.Itoa(port))

	conn, err := p.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, probeError(ctx, "dial "+addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	client, err := smtp.NewClient(conn, in.Host)
	if err != nil {
		return nil, probeError(ctx, "greeting", err)
	}
	defer client.Close()

	hello := in.Request.HelloName
	if hello == "" {
		hello = "localhost"
	}
	if err := client.Hello(hello); err != nil {
		return nil, probeError(ctx, "EHLO", err)
	}

	if err := client.Mail(in.Request.FromEmail); err != nil {
		if reply, ok := replyError(err); ok && reply.Code >= 500 && containsAny(reply.Msg, bannedHints) {
			return &models.SmtpSignals{CanConnectSMTP: true, IsBanned: true}, nil
		}
		return nil, probeError(ctx, "MAIL FROM", err)
	}

	signals := &models.SmtpSignals{CanConnectSMTP: true}
	if err := client.Rcpt(in.Address); err != nil {
		reply, ok := replyError(err)
		if !ok {
			return nil, probeError(ctx, "RCPT TO", err)
		}
		switch {
		case isMailboxFull(reply):
			signals.HasFullInbox = true
		case containsAny(reply.Msg, disabledHints):
			signals.IsDisabled = true
		case containsAny(reply.Msg, bannedHints):
			signals.IsBanned = true
		case reply.Code >= 500:
			// mailbox rejected
		default:
			return nil, fmt.Errorf("%w: RCPT TO: %d %s", ErrProbeFailed, reply.Code, reply.Msg)
		}
	} else {
		signals.IsDeliverable = true
		if err := client.Rcpt(randomMailbox(in.Domain)); err == nil {
			signals.IsCatchAll = true
		}
	}

	_ = client.Quit()

	p.log.WithFields(logrus.Fields{
		"email":   in.Address,
		"host":    in.Host,
		"signals": *signals,
	}).Debug("smtp probe completed")

	return signals, nil
}

// isMailboxFull trusts the enhanced status code (x.2.2) or the reply text,
// never the bare code: 452 also means "too many recipients".
func isMailboxFull(reply *textproto.Error) bool {
	return strings.HasSuffix(enhancedStatus(reply.Msg), ".2.2") || containsAny(reply.Msg, fullInboxHints)
}

// enhancedStatus returns the RFC 3463 code leading msg, or "".
func enhancedStatus(msg string) string {
	fields := strings.Fields(msg)
	if len(fields) == 0 {
		return ""
	}
	parts := strings.Split(fields[0], ".")
	if len(parts) != 3 || len(parts[0]) != 1 || !strings.ContainsAny(parts[0], "245") {
		return ""
	}
	for _, p := range parts[1:] {
		if p == "" || len(p) > 3 || strings.Trim(p, "0123456789") != "" {
			return ""
		}
	}
	return fields[0]
}

func replyError(err error) (*textproto.Error, bool) {
	var reply *textproto.Error
	if errors.As(err, &reply) {
		return reply, true
	}
	return nil, false
}

func probeError(ctx context.Context, stage string, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s: %v", ErrProbeTimeout, stage, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrProbeFailed, stage, err)
}

func containsAny(msg string, hints []string) bool {
	msg = strings.ToLower(msg)
	for _, h := range hints {
		if strings.Contains(msg, h) {
			return true
		}
	}
	return false
}

func randomMailbox(domain string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + "@" + domain
}

// VendorRouter sends selected domains to a vendor API prober when the request
// prefers it, and everything else to the SMTP prober.
type VendorRouter struct {
	SMTP    Prober
	Vendor  Prober
	domains map[string]struct{}
}

// NewVendorRouter routes the given domains to vendor. An empty domain list
// routes every domain.
func NewVendorRouter(smtpProber, vendor Prober, domains []string) *VendorRouter {
	r := &VendorRouter{
		SMTP:    smtpProber,
		Vendor:  vendor,
		domains: make(map[string]struct{}, len(domains)),
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			r.domains[d] = struct{}{}
		}
	}
	return r
}

func (r *VendorRouter) Probe(ctx context.Context, in ProbeInput) (*models.SmtpSignals, error) {
	if in.Request.VendorAPIPreferred && r.Vendor != nil && r.routes(in.Domain) {
		return r.Vendor.Probe(ctx, in)
	}
	return r.SMTP.Probe(ctx, in)
}

func (r *VendorRouter) routes(domain string) bool {
	if len(r.domains) == 0 {
		return true
	}
	_, ok := r.domains[strings.ToLower(domain)]
	return ok
}

type syntheticOutcome int

const (
	syntheticInvalid syntheticOutcome = iota
	syntheticRisky
	syntheticSafe
	syntheticUnknown
	syntheticBanned
	syntheticSafeAgain
	syntheticOutcomes
)

// SyntheticProber fabricates random probe outcomes without touching the
// network. It is only wired in when test mode is switched on.
type SyntheticProber struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSyntheticProber(seed uint64) *SyntheticProber {
	return &SyntheticProber{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *SyntheticProber) Probe(ctx context.Context, in ProbeInput) (*models.SmtpSignals, error) {
	p.mu.Lock()
	outcome := syntheticOutcome(p.rng.IntN(int(syntheticOutcomes)))
	p.mu.Unlock()

	switch outcome {
	case syntheticInvalid:
		return &models.SmtpSignals{CanConnectSMTP: true}, nil
	case syntheticRisky:
		return &models.SmtpSignals{CanConnectSMTP: true, IsDeliverable: true, IsCatchAll: true}, nil
	case syntheticUnknown:
		return nil, fmt.Errorf("%w: synthetic failure for %s", ErrProbeFailed, in.Address)
	case syntheticBanned:
		return &models.SmtpSignals{CanConnectSMTP: true, IsDeliverable: true, IsBanned: true}, nil
	default:
		return &models.SmtpSignals{CanConnectSMTP: true, IsDeliverable: true}, nil
	}
}
