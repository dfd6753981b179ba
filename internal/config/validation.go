package config

import (
	"github.com/go-co-op/gocron/v2"

	"github.com/inspektor-gadget/website/internal/foundation/errors"
	"github.com/inspektor-gadget/website/internal/foundation/normalization"
	"github.com/inspektor-gadget/website/internal/retry"
)

var retryModeNormalizer = normalization.NewNormalizer("retry backoff", map[string]retry.Mode{
	"fixed":       retry.ModeFixed,
	"linear":      retry.ModeLinear,
	"exponential": retry.ModeExponential,
}, retry.ModeLinear)

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	if c.MaxVersions < 2 {
		return validationError("max_versions must be at least 2 (one release plus latest)", "max_versions", c.MaxVersions)
	}
	if c.Concurrency < 1 {
		return validationError("concurrency must be positive", "concurrency", c.Concurrency)
	}
	if c.Git.ShallowDepth < 0 {
		return validationError("git.shallow_depth cannot be negative", "git.shallow_depth", c.Git.ShallowDepth)
	}
	if c.Git.MaxRetries < 0 {
		return validationError("git.max_retries cannot be negative", "git.max_retries", c.Git.MaxRetries)
	}
	if _, err := retryModeNormalizer.NormalizeWithError(c.Git.RetryBackoff); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid git.retry_backoff").Fatal().Build()
	}
	if c.Git.RetryInitialDelay < 0 || c.Git.RetryMaxDelay < 0 {
		return validationError("git retry delays cannot be negative", "git.retry_initial_delay", c.Git.RetryInitialDelay)
	}
	if err := c.Git.Auth.validate(); err != nil {
		return err
	}
	if c.Events.Enabled && c.Events.Subject == "" {
		return validationError("events.subject is required when events are enabled", "events.subject", "")
	}
	if err := ValidateSchedule(c.Daemon.Schedule); err != nil {
		return err
	}
	return nil
}

// RetryPolicy converts the git retry settings to a retry.Policy.
func (g GitConfig) RetryPolicy() retry.Policy {
	return retry.NewPolicy(retryModeNormalizer.Normalize(g.RetryBackoff), g.RetryInitialDelay, g.RetryMaxDelay, g.MaxRetries)
}

// ValidateSchedule checks that expr is a five-field cron expression.
func ValidateSchedule(expr string) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "create scheduler").Build()
	}
	defer func() { _ = s.Shutdown() }()
	if _, err := s.NewJob(gocron.CronJob(expr, false), gocron.NewTask(func() {})); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid daemon.schedule").
			WithContext("schedule", expr).Fatal().Build()
	}
	return nil
}

func (a *AuthConfig) validate() error {
	if a == nil {
		return nil
	}
	t, err := authTypeNormalizer.NormalizeWithError(string(a.Type))
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid git.auth.type").Fatal().Build()
	}
	a.Type = t
	switch t {
	case AuthTypeToken:
		if a.Token == "" {
			return validationError("git.auth.token is required for token auth", "git.auth.type", t)
		}
	case AuthTypeBasic:
		if a.Username == "" || a.Password == "" {
			return validationError("git.auth.username and password are required for basic auth", "git.auth.type", t)
		}
	}
	return nil
}

func validationError(msg, field string, value any) error {
	return errors.ValidationError(msg).WithContext("field", field).WithContext("value", value).Build()
}
