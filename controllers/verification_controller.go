// controller/verification_controller.go
package controller

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/likexian/whois"
	"github.com/sirupsen/logrus"

	"github.com/Motimate/extant-email/models"
	"github.com/Motimate/extant-email/utils"
	"github.com/Motimate/extant-email/verifier"
)

// WhoisFunc queries WHOIS for a domain.
type WhoisFunc func(domain string, servers ...string) (string, error)

type VerificationController struct {
	Checker     verifier.BatchChecker
	Mx          verifier.MxResolver
	Whois       WhoisFunc
	Options     models.RequestOptions
	MaxAttempts int
	Logger      *logrus.Entry
}

func NewVerificationController(checker verifier.BatchChecker, mx verifier.MxResolver, opts models.RequestOptions, maxAttempts int, logger *logrus.Entry) *VerificationController {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &VerificationController{
		Checker:     checker,
		Mx:          mx,
		Whois:       whois.Whois,
		Options:     opts,
		MaxAttempts: maxAttempts,
		Logger:      logger.WithField("component", "verification_controller"),
	}
}

// Health answers liveness probes.
func (vc *VerificationController) Health(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// EmailCheck verifies a JSON array of addresses and returns one result per
// address, in request order.
func (vc *VerificationController) EmailCheck(c *fiber.Ctx) error {
	emails, status, err := parseEmailList(c.Body())
	if err != nil {
		vc.Logger.WithError(err).Debug("rejected email_check body")
		return utils.ErrorResponse(c, status, err)
	}

	result := vc.Checker.CheckBatch(c.UserContext(), emails, vc.Options, vc.MaxAttempts)
	return c.JSON(result.Items)
}

// EmailCheckWithStats is EmailCheck with per-verdict counts attached.
func (vc *VerificationController) EmailCheckWithStats(c *fiber.Ctx) error {
	emails, status, err := parseEmailList(c.Body())
	if err != nil {
		vc.Logger.WithError(err).Debug("rejected email_check body")
		return utils.ErrorResponse(c, status, err)
	}

	result := vc.Checker.CheckBatch(c.UserContext(), emails, vc.Options, vc.MaxAttempts)
	return c.JSON(result)
}

type DomainReport struct {
	Domain     string   `json:"domain"`
	MxHosts    []string `json:"mx_hosts"`
	MxError    string   `json:"mx_error,omitempty"`
	Whois      string   `json:"whois,omitempty"`
	WhoisError string   `json:"whois_error,omitempty"`
}

// DomainInfo reports the MX hosts of a domain along with its WHOIS record.
// Mx should be uncached: these domains come straight from callers.
func (vc *VerificationController) DomainInfo(c *fiber.Ctx) error {
	domain := strings.ToLower(strings.TrimSpace(c.Params("domain")))
	if domain == "" || strings.Contains(domain, "@") {
		return utils.JSONError(c, fiber.StatusBadRequest, "A bare domain name is required", nil)
	}

	info := DomainReport{Domain: domain, MxHosts: []string{}}

	hosts, err := vc.Mx.LookupMX(c.UserContext(), domain)
	if err != nil {
		info.MxError = err.Error()
	} else if hosts != nil {
		info.MxHosts = hosts
	}

	if vc.Whois != nil {
		record, err := vc.Whois(domain)
		if err != nil {
			utils.LogError("whois_lookup", err, map[string]interface{}{"domain": domain})
			info.WhoisError = err.Error()
		} else {
			info.Whois = record
		}
	}

	return c.JSON(info)
}

// parseEmailList returns 400 for bodies that are not JSON and 422 for JSON
// that is not an array of strings.
func parseEmailList(body []byte) ([]string, int, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fiber.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err)
	}

	var emails []string
	if err := json.Unmarshal(raw, &emails); err != nil {
		return nil, fiber.StatusUnprocessableEntity, fmt.Errorf("expected an array of email strings: %w", err)
	}
	return emails, fiber.StatusOK, nil
}
