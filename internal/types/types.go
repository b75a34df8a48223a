package types

import "fmt"

// Severity of an issue. The zero value is SeverityError.
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
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// MarshalText keeps severities readable in JSON and YAML output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ERROR", "error":
		*s = SeverityError
	case "WARNING", "warning":
		*s = SeverityWarning
	case "INFO", "info":
		*s = SeverityInfo
	case "OFF", "off":
		*s = SeverityOff
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Position is a 1-based line and column in a generated file. Offset is
// the byte offset from the start of the file.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Issue is a problem found in generated output.
type Issue struct {
	Rule       string   `json:"rule"`
	Category   string   `json:"category,omitempty"`
	Filename   string   `json:"filename"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	Note       string   `json:"note,omitempty"`
	Severity   Severity `json:"severity"`
	Start      Position `json:"start"`
	End        Position `json:"end"`
}

// ConfigRule sets the severity of a check rule.
type ConfigRule struct {
	Severity Severity `yaml:"severity"`
}
