package collection

import (
	"encoding/json"
	"strings"
)

// URL is a request URL. Host and path segments may contain {{name}}
// placeholders.
type URL struct {
	Raw      string       `json:"raw,omitempty"`
	Protocol string       `json:"protocol,omitempty"`
	Host     Lines        `json:"host,omitempty"`
	Path     Lines        `json:"path,omitempty"`
	Query    []QueryParam `json:"query,omitempty"`
}

type QueryParam struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

type urlAlias URL

// UnmarshalJSON accepts the URL object or a raw URL string.
func (u *URL) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		*u = URL{}
		return nil
	}
	if isJSONString(data) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*u = ParseURL(raw)
		return nil
	}
	var alias urlAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*u = URL(alias)
	if len(u.Host) == 0 && len(u.Path) == 0 && u.Raw != "" {
		parsed := ParseURL(u.Raw)
		u.Protocol, u.Host, u.Path = parsed.Protocol, parsed.Host, parsed.Path
		if u.Query == nil {
			u.Query = parsed.Query
		}
	}
	return nil
}

// ParseURL splits a raw URL into its parts without decoding anything, so
// placeholders survive untouched.
func ParseURL(raw string) URL {
	u := URL{Raw: raw}
	rest := raw
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = rest[:i]
	}
	if proto, after, ok := strings.Cut(rest, "://"); ok {
		u.Protocol, rest = proto, after
	}
	if before, query, ok := strings.Cut(rest, "?"); ok {
		rest = before
		for _, pair := range strings.Split(query, "&") {
			if pair == "" {
				continue
			}
			k, v, _ := strings.Cut(pair, "=")
			u.Query = append(u.Query, QueryParam{Key: k, Value: v})
		}
	}
	host, path, _ := strings.Cut(rest, "/")
	if host != "" {
		u.Host = Lines{host}
	}
	if path != "" {
		u.Path = strings.Split(path, "/")
	}
	return u
}

// Template renders the URL back to a string, keeping placeholders. Host
// segments are joined with dots and path segments with slashes; disabled
// query parameters are dropped.
func (u URL) Template() string {
	var sb strings.Builder
	if u.Protocol != "" {
		sb.WriteString(u.Protocol)
		sb.WriteString("://")
	}
	sb.WriteString(strings.Join(u.Host, "."))
	sb.WriteString("/")
	sb.WriteString(strings.Join(u.Path, "/"))

	sep := "?"
	for _, q := range u.Query {
		if q.Disabled {
			continue
		}
		sb.WriteString(sep)
		sb.WriteString(q.Key)
		if q.Value != "" {
			sb.WriteString("=")
			sb.WriteString(q.Value)
		}
		sep = "&"
	}
	return sb.String()
}

// IsZero reports whether the URL names nothing at all.
func (u URL) IsZero() bool {
	return len(u.Host) == 0 && len(u.Path) == 0 && u.Raw == ""
}
