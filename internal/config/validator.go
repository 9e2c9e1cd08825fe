package config

import "fmt"

// ValidationError represents a single invalid configuration field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every failure found by Validate.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e))
	for i, err := range e {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Validate checks Config for out-of-range values that Load's defaults
// wouldn't otherwise catch, returning every problem found rather than
// failing fast on the first.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.Supervisor.PollIntervalSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "supervisor.poll_interval_seconds",
			Value:   c.Supervisor.PollIntervalSeconds,
			Message: "must be positive",
		})
	}

	const minDim, maxDim = 10, 2000
	if c.Terminal.Rows < minDim || c.Terminal.Rows > maxDim {
		errs = append(errs, ValidationError{
			Field:   "terminal.rows",
			Value:   c.Terminal.Rows,
			Message: fmt.Sprintf("must be between %d and %d", minDim, maxDim),
		})
	}
	if c.Terminal.Cols < minDim || c.Terminal.Cols > maxDim {
		errs = append(errs, ValidationError{
			Field:   "terminal.cols",
			Value:   c.Terminal.Cols,
			Message: fmt.Sprintf("must be between %d and %d", minDim, maxDim),
		})
	}

	if c.Cleanup.MaxAgeDays < 0 {
		errs = append(errs, ValidationError{
			Field:   "cleanup.max_age_days",
			Value:   c.Cleanup.MaxAgeDays,
			Message: "must be non-negative (0 disables eviction)",
		})
	}

	return errs
}
