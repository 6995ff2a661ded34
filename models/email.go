package models

import (
	"strings"
	"time"
)

// Reachable is the verdict summarizing how confident we are that mail to an
// address would be delivered.
type Reachable string

const (
	ReachableSafe    Reachable = "safe"
	ReachableRisky   Reachable = "risky"
	ReachableInvalid Reachable = "invalid"
	ReachableUnknown Reachable = "unknown"
	ReachableBanned  Reachable = "banned"
)

// AllReachable lists every verdict in the order stats are reported.
var AllReachable = []Reachable{
	ReachableSafe,
	ReachableRisky,
	ReachableInvalid,
	ReachableUnknown,
	ReachableBanned,
}

func (r Reachable) String() string {
	return string(r)
}

// VerificationRequest drives one pipeline run for one address.
type VerificationRequest struct {
	ToEmail            string        `json:"to_email"`
	FromEmail          string        `json:"from_email"`
	HelloName          string        `json:"hello_name"`
	SMTPTimeout        time.Duration `json:"smtp_timeout"` // zero means no timeout
	VendorAPIPreferred bool          `json:"vendor_api_preferred"`
}

// RequestOptions are the settings shared by every address in a batch.
type RequestOptions struct {
	FromEmail          string
	HelloName          string
	SMTPTimeout        time.Duration
	VendorAPIPreferred bool
}

// NewRequest builds the request for a single address of a batch.
func (o RequestOptions) NewRequest(email string) VerificationRequest {
	return VerificationRequest{
		ToEmail:            email,
		FromEmail:          o.FromEmail,
		HelloName:          o.HelloName,
		SMTPTimeout:        o.SMTPTimeout,
		VendorAPIPreferred: o.VendorAPIPreferred,
	}
}

// SyntaxResult is the outcome of address syntax validation.
type SyntaxResult struct {
	IsValid  bool
	Address  string
	Username string
	Domain   string
}

// MiscSignals are heuristic signals computed from the address alone.
type MiscSignals struct {
	IsDisposable  bool `json:"is_disposable"`
	IsRoleAccount bool `json:"is_role_account"`
}

// SmtpSignals are the deliverability signals produced by a completed probe.
type SmtpSignals struct {
	CanConnectSMTP bool `json:"can_connect_smtp"`
	HasFullInbox   bool `json:"has_full_inbox"`
	IsCatchAll     bool `json:"is_catch_all"`
	IsDeliverable  bool `json:"is_deliverable"`
	IsDisabled     bool `json:"is_disabled"`
	IsBanned       bool `json:"is_banned"`
}

// VerificationResult is the unit cached and returned to callers. Signal
// fields are nil when the corresponding check never completed.
type VerificationResult struct {
	IsReachable    Reachable `json:"is_reachable"`
	Email          string    `json:"email"`
	IsDisposable   *bool     `json:"is_disposable"`
	IsRoleAccount  *bool     `json:"is_role_account"`
	CanConnectSMTP *bool     `json:"can_connect_smtp"`
	HasFullInbox   *bool     `json:"has_full_inbox"`
	IsCatchAll     *bool     `json:"is_catch_all"`
	IsDeliverable  *bool     `json:"is_deliverable"`
	IsDisabled     *bool     `json:"is_disabled"`
	IsBanned       *bool     `json:"is_banned"`
}

// NewResult returns a result carrying only a verdict.
func NewResult(email string, reachable Reachable) VerificationResult {
	return VerificationResult{Email: email, IsReachable: reachable}
}

// ApplyMisc copies the heuristic signals onto the result.
func (r *VerificationResult) ApplyMisc(misc MiscSignals) {
	r.IsDisposable = boolPtr(misc.IsDisposable)
	r.IsRoleAccount = boolPtr(misc.IsRoleAccount)
}

// ApplySMTP copies the probe signals onto the result.
func (r *VerificationResult) ApplySMTP(smtp SmtpSignals) {
	r.CanConnectSMTP = boolPtr(smtp.CanConnectSMTP)
	r.HasFullInbox = boolPtr(smtp.HasFullInbox)
	r.IsCatchAll = boolPtr(smtp.IsCatchAll)
	r.IsDeliverable = boolPtr(smtp.IsDeliverable)
	r.IsDisabled = boolPtr(smtp.IsDisabled)
	r.IsBanned = boolPtr(smtp.IsBanned)
}

// HasSignals reports whether any optional signal is set.
func (r VerificationResult) HasSignals() bool {
	for _, p := range []*bool{
		r.IsDisposable, r.IsRoleAccount, r.CanConnectSMTP, r.HasFullInbox,
		r.IsCatchAll, r.IsDeliverable, r.IsDisabled, r.IsBanned,
	} {
		if p != nil {
			return true
		}
	}
	return false
}

func boolPtr(v bool) *bool {
	return &v
}

// NormalizeEmail returns the cache key form of an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Stats counts verdicts across a batch. Total always equals the sum of the
// per-verdict counts.
type Stats struct {
	Safe    int `json:"safe"`
	Risky   int `json:"risky"`
	Invalid int `json:"invalid"`
	Unknown int `json:"unknown"`
	Banned  int `json:"banned"`
	Total   int `json:"total"`
}

// Add counts one verdict.
func (s *Stats) Add(r Reachable) {
	switch r {
	case ReachableSafe:
		s.Safe++
	case ReachableRisky:
		s.Risky++
	case ReachableInvalid:
		s.Invalid++
	case ReachableBanned:
		s.Banned++
	default:
		s.Unknown++
	}
	s.Total++
}

// ComputeStats tallies verdicts in a single pass.
func ComputeStats(results []VerificationResult) Stats {
	var s Stats
	for _, r := range results {
		s.Add(r.IsReachable)
	}
	return s
}

// BatchResult is the response of a batch check: one item per input address,
// in input order.
type BatchResult struct {
	Items []VerificationResult `json:"items"`
	Stats Stats                `json:"stats"`
}
