package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"claimreview/internal/config"
	"claimreview/internal/review"
)

const userAgent = "claimreview/0.1.0"

// Service defines the reviewer-facing notification surface.
type Service interface {
	NotifyReviewFlagged(ctx context.Context, record *review.Record) error
	NotifyDecision(ctx context.Context, record *review.Record) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled:  cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  config.Notifications
}

func (n *ntfyService) NotifyReviewFlagged(ctx context.Context, record *review.Record) error {
	if !n.enabled.Flagged || record == nil {
		return nil
	}
	snapshot := record.ClaimSnapshot
	data := payload{
		title: "Claimreview - Review Required",
		message: fmt.Sprintf("Claim %s flagged for review: fraud probability %.0f%% (%s risk)",
			snapshot.PolicyNumber, snapshot.FraudProbability*100, snapshot.RiskLevel),
		tags:     []string{"claimreview", "flagged", strings.ToLower(snapshot.RiskLevel)},
		priority: flaggedPriority(snapshot.RiskLevel),
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDecision(ctx context.Context, record *review.Record) error {
	if !n.enabled.Decisions || record == nil {
		return nil
	}
	data := payload{
		title: "Claimreview - Decision Recorded",
		message: fmt.Sprintf("Claim %s %s by %s",
			record.ClaimSnapshot.PolicyNumber, strings.ToLower(string(record.Status)), record.ReviewerName),
		tags: []string{"claimreview", "decision", strings.ToLower(string(record.Decision))},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.enabled.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Claimreview - Error",
		message:  builder.String(),
		tags:     []string{"claimreview", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Claimreview - Test",
		message:  "Notification system test",
		tags:     []string{"claimreview", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func flaggedPriority(riskLevel string) string {
	if strings.EqualFold(riskLevel, "HIGH") {
		return "high"
	}
	return ""
}

type noopService struct{}

func (noopService) NotifyReviewFlagged(context.Context, *review.Record) error { return nil }
func (noopService) NotifyDecision(context.Context, *review.Record) error      { return nil }
func (noopService) NotifyError(context.Context, error, string) error          { return nil }
func (noopService) TestNotification(context.Context) error                    { return nil }
