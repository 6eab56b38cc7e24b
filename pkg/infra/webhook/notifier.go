package webhook

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

// Notifier posts a best-effort alert to the configured webhook when a prompt
// is blocked. Failures are logged and dropped: never retried, never surfaced
// to the caller.
type Notifier interface {
	SendAlert(reason string, score float64, details string)
}

// alertPayload carries the message under both keys so one endpoint works for
// Discord (content) and Slack (text).
type alertPayload struct {
	Content string `json:"content"`
	Text    string `json:"text"`
}

type notifier struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
	logger  *logrus.Logger
}

func NewNotifier(client *fasthttp.Client, url string, timeout time.Duration, logger *logrus.Logger) Notifier {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &notifier{
		client:  client,
		url:     url,
		timeout: timeout,
		logger:  logger,
	}
}

func (n *notifier) SendAlert(reason string, score float64, details string) {
	if n.url == "" {
		return
	}

	message := fmt.Sprintf("🚨 **GUARDRAILS ALERT** 🚨\n**Reason:** %s\n**Score:** %.2f", reason, score)
	if details != "" {
		message += fmt.Sprintf("\n**Details:** %s", details)
	}

	body, err := json.Marshal(alertPayload{Content: message, Text: message})
	if err != nil {
		n.logger.WithError(err).Error("failed to marshal webhook payload")
		return
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := n.client.DoTimeout(req, resp, n.timeout); err != nil {
		n.logger.WithError(err).Error("failed to send webhook alert")
		return
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		n.logger.WithField("status", resp.StatusCode()).Error("webhook alert rejected")
		return
	}

	n.logger.WithField("reason", reason).Info("alert sent to webhook")
}
