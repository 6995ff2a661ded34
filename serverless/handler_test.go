package serverless

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Motimate/extant-email/models"
)

type recordingChecker struct {
	emails [][]string
}

func (r *recordingChecker) CheckBatch(ctx context.Context, emails []string, opts models.RequestOptions, maxAttempts int) models.BatchResult {
	r.emails = append(r.emails, emails)
	items := make([]models.VerificationResult, len(emails))
	for i, e := range emails {
		items[i] = models.NewResult(e, models.ReachableSafe)
	}
	return models.BatchResult{Items: items, Stats: models.ComputeStats(items)}
}

func request(method, body string) events.LambdaFunctionURLRequest {
	req := events.LambdaFunctionURLRequest{Body: body}
	req.RequestContext.HTTP.Method = method
	return req
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		req        events.LambdaFunctionURLRequest
		wantStatus int
		wantBody   string
		wantEmails []string
	}{
		{
			name:       "non-POST",
			req:        request("GET", `["a@example.com"]`),
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   "Not allowed",
		},
		{
			name:       "malformed JSON",
			req:        request("POST", `["a@example.com"`),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "UNPROCESSABLE_ENTITY",
		},
		{
			name:       "object body",
			req:        request("POST", `{"email":"a@example.com"}`),
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty array",
			req:        request("POST", `[]`),
			wantStatus: http.StatusOK,
		},
		{
			name:       "no strings",
			req:        request("POST", `[1, true, null]`),
			wantStatus: http.StatusOK,
		},
		{
			name:       "mixed entries",
			req:        request("POST", `["a@example.com", 7, "b@example.com"]`),
			wantStatus: http.StatusOK,
			wantEmails: []string{"a@example.com", "b@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &recordingChecker{}
			h := NewHandler(checker, models.RequestOptions{}, 1, nil)

			resp, err := h.Handle(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantEmails == nil {
				assert.Equal(t, tt.wantBody, resp.Body)
				assert.Empty(t, checker.emails)
				return
			}

			require.Len(t, checker.emails, 1)
			assert.Equal(t, tt.wantEmails, checker.emails[0])
			assert.Equal(t, "application/json", resp.Headers["Content-Type"])

			var results []models.VerificationResult
			require.NoError(t, json.Unmarshal([]byte(resp.Body), &results))
			require.Len(t, results, len(tt.wantEmails))
			for i, r := range results {
				assert.Equal(t, tt.wantEmails[i], r.Email)
			}
		})
	}
}

func TestHandleBase64Body(t *testing.T) {
	checker := &recordingChecker{}
	h := NewHandler(checker, models.RequestOptions{}, 1, nil)

	req := request("POST", base64.StdEncoding.EncodeToString([]byte(`["a@example.com"]`)))
	req.IsBase64Encoded = true

	resp, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, checker.emails, 1)
	assert.Equal(t, []string{"a@example.com"}, checker.emails[0])
}

func TestHandleMarshalFailure(t *testing.T) {
	h := NewHandler(&recordingChecker{}, models.RequestOptions{}, 1, nil)
	h.marshal = func(v any) ([]byte, error) {
		return nil, errors.New("cannot encode")
	}

	resp, err := h.Handle(context.Background(), request("POST", `["a@example.com"]`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "cannot encode", resp.Body)
}
