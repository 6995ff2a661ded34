package verifier

import (
	"strings"
	"unicode"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"

	"github.com/Motimate/extant-email/models"
)

const maxDomainLabel = 63

var addressValidate = validator.New()

// SyntaxValidator checks the shape of an address and splits it into parts.
type SyntaxValidator interface {
	Validate(email string) models.SyntaxResult
}

// CheckmailValidator accepts an address only when checkmail's format rules,
// validator's email rule and a hostname check on the domain all pass.
type CheckmailValidator struct{}

func NewCheckmailValidator() *CheckmailValidator {
	return &CheckmailValidator{}
}

func (v *CheckmailValidator) Validate(email string) models.SyntaxResult {
	email = strings.TrimSpace(email)
	if email == "" || strings.IndexFunc(email, invalidAddressRune) >= 0 {
		return models.SyntaxResult{}
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return models.SyntaxResult{}
	}
	if err := addressValidate.Var(email, "email"); err != nil {
		return models.SyntaxResult{}
	}

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return models.SyntaxResult{}
	}

	username := email[:at]
	domain := strings.ToLower(strings.TrimSuffix(email[at+1:], "."))
	if !validDomain(domain) {
		return models.SyntaxResult{}
	}

	return models.SyntaxResult{
		IsValid:  true,
		Address:  username + "@" + domain,
		Username: username,
		Domain:   domain,
	}
}

func invalidAddressRune(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r)
}

// validDomain wants at least two labels, each 1-63 letters, digits or
// hyphens, with no hyphen at either end.
func validDomain(domain string) bool {
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" || len([]rune(label)) > maxDomainLabel {
			return false
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		for _, r := range label {
			if r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}
