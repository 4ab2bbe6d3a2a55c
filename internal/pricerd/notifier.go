package pricerd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/GoSim-25-26J-441/pricing-core/pkg/logger"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/models"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/utils"
)

const callbackSecretHeader = "X-Pricer-Callback-Secret"

// NotificationPayload is POSTed to a run's callback URL once the run ends.
type NotificationPayload struct {
	Run       models.Run            `json:"run"`
	Options   []models.OptionResult `json:"options,omitempty"`
	Timestamp int64                 `json:"timestamp"`
}

// Notifier delivers run completion callbacks with exponential backoff.
type Notifier struct {
	httpClient *http.Client
	maxRetries int
	backoff    utils.Backoff
	wg         conc.WaitGroup
}

func NewNotifier() *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		backoff:    utils.ExponentialBackoff{Base: time.Second, Max: 30 * time.Second},
	}
}

// Notify sends rec to its callback URL in the background. Records without
// a callback URL are ignored. "{run_id}" in the URL is replaced.
func (n *Notifier) Notify(rec *RunRecord) {
	if n == nil || rec == nil || rec.CallbackURL == "" {
		return
	}

	url := strings.ReplaceAll(rec.CallbackURL, "{run_id}", rec.Run.ID)
	payload := NotificationPayload{
		Run:       rec.Run,
		Timestamp: time.Now().UTC().UnixMilli(),
	}
	if rec.Results != nil {
		payload.Options = rec.Results.Options
	}
	secret := rec.CallbackSecret

	n.wg.Go(func() {
		if err := n.deliver(url, secret, payload); err != nil {
			logger.Error("failed to send notification after retries",
				"callback_url", url,
				"run_id", payload.Run.ID,
				"status", payload.Run.Status,
				"max_retries", n.maxRetries,
				"last_error", err)
		}
	})
}

// Wait blocks until every pending notification has been delivered or
// given up on.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func (n *Notifier) deliver(url, secret string, payload NotificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			delay := n.backoff.Delay(attempt)
			logger.Debug("retrying notification", "run_id", payload.Run.ID, "attempt", attempt, "delay", delay)
			time.Sleep(delay)
		}
		if lastErr = n.post(url, secret, body); lastErr == nil {
			logger.Info("notification sent", "run_id", payload.Run.ID, "status", payload.Run.Status)
			return nil
		}
		logger.Warn("notification attempt failed",
			"callback_url", url,
			"run_id", payload.Run.ID,
			"attempt", attempt+1,
			"error", lastErr)
	}
	return lastErr
}

func (n *Notifier) post(url, secret string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "pricing-core/1.0")
	if secret != "" {
		req.Header.Set(callbackSecretHeader, secret)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, excerpt)
}
