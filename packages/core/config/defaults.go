package config

const (
	// DefaultStyle is the output coloring style.
	DefaultStyle = "solarized"
	// DefaultTimeout is the connection timeout in seconds.
	DefaultTimeout = 30.0
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		DefaultOptions: nil,
		Pretty:         "",
		Style:          DefaultStyle,
		Timeout:        DefaultTimeout,
		CheckStatus:    BoolPtr(false),
		IgnoreStdin:    BoolPtr(false),
		Headers:        nil,
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return len(c.DefaultOptions) == 0 &&
		c.Pretty == defaults.Pretty &&
		c.Style == defaults.Style &&
		c.Timeout == defaults.Timeout &&
		c.GetCheckStatus() == defaults.GetCheckStatus() &&
		c.GetIgnoreStdin() == defaults.GetIgnoreStdin() &&
		len(c.Headers) == 0
}
