package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"

	"github.com/Motimate/extant-email/models"
)

const sendGridValidationPath = "/v3/validations/email"

type SendGridValidationResult struct {
	Email   string  `json:"email"`
	Verdict string  `json:"verdict"`
	Score   float32 `json:"score"`
}

type SendGridValidationResponse struct {
	Result SendGridValidationResult `json:"result"`
}

// SendGridProber asks SendGrid's validation API instead of talking SMTP to
// the exchanger.
type SendGridProber struct {
	APIHost string
	APIKey  string
	Source  string
}

func NewSendGridProber(apiHost, apiKey string) *SendGridProber {
	if apiHost == "" {
		apiHost = "https://api.sendgrid.com"
	}
	return &SendGridProber{
		APIHost: apiHost,
		APIKey:  apiKey,
		Source:  "extant",
	}
}

// Probe gives up after the request's SMTP timeout, like an SMTP session would.
func (p *SendGridProber) Probe(ctx context.Context, in ProbeInput) (*models.SmtpSignals, error) {
	if in.Request.SMTPTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.Request.SMTPTimeout)
		defer cancel()
	}

	body, err := json.Marshal(map[string]string{
		"email":  in.Address,
		"source": p.Source,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sendgrid request: %v", ErrProbeFailed, err)
	}

	request := sendgrid.GetRequest(p.APIKey, sendGridValidationPath, p.APIHost)
	request.Method = "POST"
	request.Body = body

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: sendgrid api: %v", ErrProbeTimeout, err)
		}
		return nil, fmt.Errorf("%w: sendgrid api error: %v", ErrProbeFailed, err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("%w: sendgrid api status %d", ErrProbeFailed, response.StatusCode)
	}

	var payload SendGridValidationResponse
	if err := json.Unmarshal([]byte(response.Body), &payload); err != nil {
		return nil, fmt.Errorf("%w: sendgrid unmarshal error: %v", ErrProbeFailed, err)
	}

	switch payload.Result.Verdict {
	case "Valid":
		return &models.SmtpSignals{CanConnectSMTP: true, IsDeliverable: true}, nil
	case "Risky":
		return &models.SmtpSignals{CanConnectSMTP: true, IsDeliverable: true, IsCatchAll: true}, nil
	case "Invalid":
		return &models.SmtpSignals{CanConnectSMTP: true}, nil
	default:
		return nil, fmt.Errorf("%w: sendgrid verdict %q", ErrProbeFailed, payload.Result.Verdict)
	}
}
