package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateReview(); err != nil {
		return err
	}
	if err := c.validateFraud(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateReview() error {
	if c.Review.MinNotesLength <= 0 {
		return errors.New("review.min_notes_length must be positive")
	}
	return nil
}

func (c *Config) validateFraud() error {
	if c.Fraud.ReviewThreshold < 0 || c.Fraud.ReviewThreshold > 1 {
		return errors.New("fraud.review_threshold must be between 0 and 1")
	}
	if c.Fraud.HighValueAmount <= 0 {
		return errors.New("fraud.high_value_amount must be positive")
	}
	if c.Fraud.FrequentClaimCount <= 0 {
		return errors.New("fraud.frequent_claim_count must be positive")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if c.Audit.WebhookURL != "" {
		parsed, err := url.Parse(c.Audit.WebhookURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("audit.webhook_url %q is not a valid URL", c.Audit.WebhookURL)
		}
	}
	if c.Audit.RequestTimeout <= 0 {
		return errors.New("audit.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
