package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"spendtrack/internal/log"
)

type emailPayload struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []attachment `json:"attachments,omitempty"`
}

type attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// HTTPMailer posts emails to a transactional email HTTP API (Resend
// and compatible services).
type HTTPMailer struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
	logger *log.Logger
}

func NewHTTPMailer(apiURL, apiKey, from string, logger *log.Logger) *HTTPMailer {
	return &HTTPMailer{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

func (m *HTTPMailer) SendSummary(ctx context.Context, req SummaryRequest) (bool, string) {
	if m.apiURL == "" {
		return false, "email delivery is not configured"
	}
	if len(req.Recipients) == 0 {
		return false, "no recipients configured"
	}

	body, err := renderSummaryBody(req)
	if err != nil {
		return false, err.Error()
	}

	payload := emailPayload{
		From:    m.from,
		To:      req.Recipients,
		Subject: req.Subject,
		HTML:    body,
	}
	if req.IncludeAttachment {
		csvContent := renderCSVAttachment(req.Transactions)
		payload.Attachments = []attachment{{
			Filename: fmt.Sprintf("transactions_%s_%s.csv", req.Start, req.End),
			Content:  base64.StdEncoding.EncodeToString([]byte(csvContent)),
		}}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Sprintf("marshal email payload: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(data))
	if err != nil {
		return false, fmt.Sprintf("build email request: %v", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		m.logger.Error("email delivery failed", log.FieldError, err.Error())
		return false, fmt.Sprintf("send email: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		m.logger.Error("email API rejected request",
			log.FieldStatusCode, resp.StatusCode,
			log.FieldError, string(respBody))
		return false, fmt.Sprintf("email API returned status %d", resp.StatusCode)
	}

	m.logger.Info("summary email sent",
		log.FieldRecipients, len(req.Recipients),
		log.FieldCount, len(req.Transactions))
	return true, fmt.Sprintf("report sent to %d recipient(s)", len(req.Recipients))
}
