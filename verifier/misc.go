package verifier

import (
	_ "embed"
	"strings"

	"github.com/Motimate/extant-email/models"
)

// MiscClassifier derives heuristic signals from a validated address.
type MiscClassifier interface {
	Classify(syntax models.SyntaxResult) models.MiscSignals
}

//go:embed disposable_domains.txt
var disposableDomainList string

var defaultRoleAccounts = []string{
	"abuse", "admin", "administrator", "billing", "contact", "help",
	"hostmaster", "info", "jobs", "mail", "marketing", "no-reply",
	"noreply", "office", "postmaster", "press", "root", "sales",
	"security", "support", "team", "webmaster",
}

// ListClassifier flags disposable domains and role accounts from fixed lists.
type ListClassifier struct {
	disposable map[string]struct{}
	roles      map[string]struct{}
}

// NewListClassifier builds a classifier from the embedded disposable domain
// list and the default role accounts. Extra domains are added to the list.
func NewListClassifier(extraDisposable ...string) *ListClassifier {
	c := &ListClassifier{
		disposable: make(map[string]struct{}),
		roles:      make(map[string]struct{}, len(defaultRoleAccounts)),
	}
	for _, d := range strings.Split(disposableDomainList, "\n") {
		c.addDisposable(d)
	}
	for _, d := range extraDisposable {
		c.addDisposable(d)
	}
	for _, r := range defaultRoleAccounts {
		c.roles[r] = struct{}{}
	}
	return c
}

func (c *ListClassifier) addDisposable(domain string) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain != "" {
		c.disposable[domain] = struct{}{}
	}
}

func (c *ListClassifier) Classify(syntax models.SyntaxResult) models.MiscSignals {
	_, disposable := c.disposable[strings.ToLower(syntax.Domain)]

	local := strings.ToLower(syntax.Username)
	if i := strings.IndexByte(local, '+'); i >= 0 {
		local = local[:i]
	}
	_, role := c.roles[local]

	return models.MiscSignals{
		IsDisposable:  disposable,
		IsRoleAccount: role,
	}
}
