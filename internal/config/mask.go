package config

import "strings"

// MaskValue hides a secret for display. Values longer than 8 characters keep
// their first and last 2 characters.
func MaskValue(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:2] + strings.Repeat("*", len(value)-4) + value[len(value)-2:]
}

// Redacted returns a copy of c that is safe to print
func (c *Config) Redacted() *Config {
	out := *c
	out.Token = MaskValue(c.Token)
	out.DevServer.Token = MaskValue(c.DevServer.Token)
	return &out
}
