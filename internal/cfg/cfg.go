// Package cfg holds the application-level configuration for the
// gridwatch server.
package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config adds gridwatch-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	APIToken              string
	DatabaseURL           string
	EvidenceTTLSeconds    int
	GridPrecision         int
	NotifyWebhookURL      string
	NotifySeverity        float64
	ActionTemplatesFile   string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token required on the evidence ingest route (empty = no auth)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL for the durable mirror (empty = in-memory mirror)")
	fs.IntVar(&c.EvidenceTTLSeconds, "evidence-ttl-seconds", 3600, "evidence retention window in seconds (must be positive)")
	fs.IntVar(&c.GridPrecision, "grid-precision", 3, "clustering grid resolution in coordinate decimal places (0..6)")
	fs.StringVar(&c.NotifyWebhookURL, "notify-webhook-url", "", "webhook URL for high-severity incident notifications (empty = disabled)")
	fs.Float64Var(&c.NotifySeverity, "notify-severity", 0.7, "minimum severity for incident notifications (0..1)")
	fs.StringVar(&c.ActionTemplatesFile, "action-templates-file", "", "YAML file overriding per-type action templates (empty = built-in)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Evidence retention must be a positive window
	if c.EvidenceTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("invalid EVIDENCE_TTL_SECONDS %d (must be positive)", c.EvidenceTTLSeconds))
	}

	// Anything past 6 decimal places clusters nothing in practice
	if c.GridPrecision < 0 || c.GridPrecision > 6 {
		errs = append(errs, fmt.Errorf("invalid GRID_PRECISION %d (must be 0..6)", c.GridPrecision))
	}

	// Notification threshold shares the severity range
	if c.NotifySeverity < 0 || c.NotifySeverity > 1 {
		errs = append(errs, fmt.Errorf("invalid NOTIFY_SEVERITY %v (must be 0..1)", c.NotifySeverity))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
