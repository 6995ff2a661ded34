package serverless

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"github.com/Motimate/extant-email/models"
	"github.com/Motimate/extant-email/utils"
	"github.com/Motimate/extant-email/verifier"
)

// Handler serves the email check over a Lambda function URL.
type Handler struct {
	Checker     verifier.BatchChecker
	Options     models.RequestOptions
	MaxAttempts int
	Log         *logrus.Entry

	marshal func(v any) ([]byte, error)
}

func NewHandler(checker verifier.BatchChecker, opts models.RequestOptions, maxAttempts int, log *logrus.Entry) *Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{
		Checker:     checker,
		Options:     opts,
		MaxAttempts: maxAttempts,
		Log:         log.WithField("component", "lambda_handler"),
		marshal:     json.Marshal,
	}
}

// Handle accepts a POSTed JSON array and answers with one result per string
// entry. Entries that are not strings are skipped, and a body that is not an
// array checks nothing.
func (h *Handler) Handle(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	if req.RequestContext.HTTP.Method != http.MethodPost {
		return events.LambdaFunctionURLResponse{
			StatusCode: http.StatusMethodNotAllowed,
			Body:       "Not allowed",
		}, nil
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return jsonResponse(http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"), nil
		}
		body = decoded
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		h.Log.WithError(err).Debug("malformed request body")
		return jsonResponse(http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"), nil
	}

	emails := stringEntries(payload)
	if len(emails) == 0 {
		return jsonResponse(http.StatusOK, ""), nil
	}

	result := h.Checker.CheckBatch(ctx, emails, h.Options, h.MaxAttempts)

	out, err := h.marshal(result.Items)
	if err != nil {
		utils.LogError("lambda_marshal", err, map[string]interface{}{"count": len(emails)})
		return jsonResponse(http.StatusInternalServerError, err.Error()), nil
	}
	return jsonResponse(http.StatusOK, string(out)), nil
}

func stringEntries(payload any) []string {
	items, ok := payload.([]any)
	if !ok {
		return nil
	}
	emails := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			emails = append(emails, s)
		}
	}
	return emails
}

func jsonResponse(status int, body string) events.LambdaFunctionURLResponse {
	return events.LambdaFunctionURLResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}
