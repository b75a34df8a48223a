// Package collection loads Postman v2.x collections and environments into
// the plain item tree the suite generator works on.
package collection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrUnsupportedSchema = errors.New("unsupported collection schema")

// Script types the generator understands. An empty type means JavaScript.
const ScriptTypeJS = "text/javascript"

// Event kinds.
const (
	ListenPrerequest = "prerequest"
	ListenTest       = "test"
)

type Collection struct {
	Info      Info       `json:"info"`
	Items     []Item     `json:"item"`
	Events    []Event    `json:"event,omitempty"`
	Variables []Variable `json:"variable,omitempty"`
}

type Info struct {
	Name        string      `json:"name"`
	Description Description `json:"description,omitempty"`
	Schema      string      `json:"schema,omitempty"`
}

// Item is either a folder (no request) or a request, and may hold both
// scripts and children.
type Item struct {
	Name        string      `json:"name"`
	Description Description `json:"description,omitempty"`
	Request     *Request    `json:"request,omitempty"`
	Events      []Event     `json:"event,omitempty"`
	Items       []Item      `json:"item,omitempty"`
}

// IsFolder reports whether the item carries no request.
func (it *Item) IsFolder() bool { return it.Request == nil }

// Scripts returns the source of every enabled JavaScript event of the
// given kind, in declaration order.
func (it *Item) Scripts(listen string) []string {
	var out []string
	for _, ev := range it.Events {
		if ev.Listen != listen || ev.Disabled || !ev.Script.IsJS() {
			continue
		}
		out = append(out, ev.Script.Source())
	}
	return out
}

type Request struct {
	Method      string      `json:"method,omitempty"`
	URL         URL         `json:"url"`
	Header      []Header    `json:"header,omitempty"`
	Body        *Body       `json:"body,omitempty"`
	Description Description `json:"description,omitempty"`
}

type requestAlias Request

// UnmarshalJSON accepts both the request object and the shorthand form
// where the request is just its URL.
func (r *Request) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*r = Request{Method: "GET", URL: ParseURL(raw)}
		return nil
	}
	var alias requestAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*r = Request(alias)
	return nil
}

type Header struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// EnabledHeaders returns the headers that are not disabled.
func (r *Request) EnabledHeaders() []Header {
	var out []Header
	for _, h := range r.Header {
		if !h.Disabled {
			out = append(out, h)
		}
	}
	return out
}

type Body struct {
	Mode string `json:"mode"`
	Raw  string `json:"raw,omitempty"`
}

// RawText returns the body text when the body is sent verbatim.
func (b *Body) RawText() (string, bool) {
	if b == nil || b.Mode != "raw" || b.Raw == "" {
		return "", false
	}
	return b.Raw, true
}

type Event struct {
	Listen   string `json:"listen"`
	Script   Script `json:"script"`
	Disabled bool   `json:"disabled,omitempty"`
}

type Script struct {
	Type string `json:"type,omitempty"`
	Exec Lines  `json:"exec"`
}

func (s Script) IsJS() bool {
	return s.Type == "" || s.Type == ScriptTypeJS
}

// Source joins the script lines.
func (s Script) Source() string {
	return strings.Join(s.Exec, "\n")
}

// Variable is a collection level variable.
type Variable struct {
	Key      string `json:"key"`
	Value    Scalar `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Description is either a plain string or a {content, type} object.
type Description string

func (d *Description) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		*d = ""
		return nil
	}
	if isJSONString(data) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Description(s)
		return nil
	}
	var obj struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*d = Description(obj.Content)
	return nil
}

// Lines is a list of strings that may also be written as a single string.
type Lines []string

func (l *Lines) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		*l = nil
		return nil
	}
	if isJSONString(data) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Lines{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// Scalar is a variable value. Numbers and booleans keep their JSON text.
type Scalar string

func (s *Scalar) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		*s = ""
		return nil
	}
	if isJSONString(data) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}
	*s = Scalar(bytes.TrimSpace(data))
	return nil
}

// Parse decodes a collection. Exports wrapped in a top level "collection"
// key are unwrapped.
func Parse(data []byte) (*Collection, error) {
	var wrapped struct {
		Collection json.RawMessage `json:"collection"`
		Info       json.RawMessage `json:"info"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding collection: %w", err)
	}
	if wrapped.Info == nil && wrapped.Collection != nil {
		data = wrapped.Collection
	}

	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding collection: %w", err)
	}
	if strings.Contains(c.Info.Schema, "/v1.") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSchema, c.Info.Schema)
	}
	return &c, nil
}

// Load reads and parses a collection file.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Defaults returns the enabled collection variables.
func (c *Collection) Defaults() []KeyValue {
	var out []KeyValue
	for _, v := range c.Variables {
		if !v.Disabled && v.Key != "" {
			out = append(out, KeyValue{Key: v.Key, Value: string(v.Value)})
		}
	}
	return out
}

// Walk visits every item in pre-order with the names leading to it.
func (c *Collection) Walk(fn func(path []string, it *Item) error) error {
	var walk func(path []string, items []Item) error
	walk = func(path []string, items []Item) error {
		for i := range items {
			it := &items[i]
			p := append(append([]string(nil), path...), it.Name)
			if err := fn(p, it); err != nil {
				return err
			}
			if err := walk(p, it.Items); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(nil, c.Items)
}

func isJSONString(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '"'
}

func isJSONNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
