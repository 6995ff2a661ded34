package verifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Motimate/extant-email/models"
)

func TestCheckmailValidator(t *testing.T) {
	v := NewCheckmailValidator()

	valid := map[string]models.SyntaxResult{
		"user@example.com":      {IsValid: true, Address: "user@example.com", Username: "user", Domain: "example.com"},
		" Some.One@Example.ORG": {IsValid: true, Address: "Some.One@example.org", Username: "Some.One", Domain: "example.org"},
		"user+tag@sub.example.com": {
			IsValid: true, Address: "user+tag@sub.example.com", Username: "user+tag", Domain: "sub.example.com",
		},
		"first-last@mail-relay.example.co.uk": {
			IsValid: true, Address: "first-last@mail-relay.example.co.uk", Username: "first-last", Domain: "mail-relay.example.co.uk",
		},
	}
	for email, want := range valid {
		t.Run(email, func(t *testing.T) {
			assert.Equal(t, want, v.Validate(email))
		})
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@@example.com",
		"us er@example.com",
		"user @example.com",
		"user\t@example.com",
		"user@exa mple.com",
		"user\x00@example.com",
		// single-label domain
		"a@b",
		// labels may not start or end with a hyphen
		"user@-bad-.com",
		"user@bad-.example.com",
		"user@example..com",
		"user@" + strings.Repeat("x", 64) + ".com",
	}
	for _, email := range invalid {
		t.Run("invalid "+email, func(t *testing.T) {
			assert.Equal(t, models.SyntaxResult{}, v.Validate(email))
		})
	}
}

func TestListClassifier(t *testing.T) {
	c := NewListClassifier("burner.test")

	testCases := []struct {
		username, domain string
		want             models.MiscSignals
	}{
		{"john", "example.com", models.MiscSignals{}},
		{"john", "mailinator.com", models.MiscSignals{IsDisposable: true}},
		{"john", "Burner.Test", models.MiscSignals{IsDisposable: true}},
		{"Support", "example.com", models.MiscSignals{IsRoleAccount: true}},
		{"info+news", "yopmail.com", models.MiscSignals{IsDisposable: true, IsRoleAccount: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.username+"@"+tc.domain, func(t *testing.T) {
			got := c.Classify(models.SyntaxResult{IsValid: true, Username: tc.username, Domain: tc.domain})
			assert.Equal(t, tc.want, got)
		})
	}
}
