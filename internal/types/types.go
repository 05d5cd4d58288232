package types

import (
	"fmt"
	"strings"

	"github.com/gnolang/macrokit/internal/syntax"
)

// Severity is the level of an issue, and also the switch that turns a
// macro off in the configuration file.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	case "off":
		return SeverityOff, nil
	default:
		return SeverityError, fmt.Errorf("unknown severity %q", s)
	}
}

func (s Severity) MarshalYAML() (any, error) {
	return strings.ToLower(s.String()), nil
}

func (s *Severity) UnmarshalYAML(unmarshal func(any) error) error {
	var text string
	if err := unmarshal(&text); err != nil {
		return err
	}
	parsed, err := ParseSeverity(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	parsed, err := ParseSeverity(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Issue is a diagnostic produced while expanding a file: either a
// syntax error or a malformed macro invocation.
type Issue struct {
	Rule     string
	Filename string
	Message  string
	Note     string
	Start    syntax.Pos
	End      syntax.Pos
	Severity Severity
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Start, i.Rule, i.Message)
}

// ConfigMacro is the per-macro section of the configuration file.
type ConfigMacro struct {
	Severity Severity `yaml:"severity"`
}
