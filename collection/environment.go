package collection

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Environment is an exported Postman environment.
type Environment struct {
	ID     string     `json:"id,omitempty"`
	Name   string     `json:"name"`
	Values []EnvValue `json:"values"`
}

type EnvValue struct {
	Key     string `json:"key"`
	Value   Scalar `json:"value"`
	Enabled bool   `json:"enabled"`
	Type    string `json:"type,omitempty"`
}

// KeyValue is a resolved variable.
type KeyValue struct {
	Key   string
	Value string
}

func ParseEnvironment(data []byte) (*Environment, error) {
	var env Environment
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}
	return &env, nil
}

func LoadEnvironment(path string) (*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	env, err := ParseEnvironment(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return env, nil
}

// Enabled returns the enabled values in file order.
func (e *Environment) Enabled() []KeyValue {
	var out []KeyValue
	for _, v := range e.Values {
		if v.Enabled {
			out = append(out, KeyValue{Key: v.Key, Value: string(v.Value)})
		}
	}
	return out
}

// WriteDotenv writes one KEY="value" line per enabled value.
func (e *Environment) WriteDotenv(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, kv := range e.Enabled() {
		value := strings.ReplaceAll(kv.Value, "\n", `\n`)
		if _, err := fmt.Fprintf(bw, "%s=\"%s\"\n", kv.Key, value); err != nil {
			return err
		}
	}
	return bw.Flush()
}
