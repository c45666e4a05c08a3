// Package reference holds the region metadata table shown in tooltips and
// info panels.
package reference

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// List is a string list that also decodes from a single JSON string.
type List []string

// UnmarshalJSON accepts "a", ["a", "b"] or null.
func (l *List) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*l = nil
		} else {
			*l = List{s}
		}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected string or string array: %w", err)
	}
	*l = items
	return nil
}

// Citation is a source reference. It decodes from a plain string or from
// {"text": ..., "url": ...}.
type Citation struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// UnmarshalJSON accepts both citation forms.
func (c *Citation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &c.Text)
	}
	type plain Citation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("expected citation string or object: %w", err)
	}
	*c = Citation(p)
	return nil
}

// String renders the citation as text followed by its URL.
func (c Citation) String() string {
	switch {
	case c.URL == "":
		return c.Text
	case c.Text == "":
		return c.URL
	default:
		return c.Text + " " + c.URL
	}
}

// Entry is the metadata of one base region id. Every field is optional.
type Entry struct {
	Name            string     `json:"name,omitempty"`
	Description     string     `json:"description,omitempty"`
	Aliases         List       `json:"aliases,omitempty"`
	Keywords        List       `json:"keywords,omitempty"`
	Groups          List       `json:"groups,omitempty"`
	EmbryonicOrigin List       `json:"embryonic_origin,omitempty"`
	Functions       List       `json:"functions,omitempty"`
	Connections     List       `json:"connections,omitempty"`
	Citations       []Citation `json:"citations,omitempty"`
}

// Table maps base region ids to entries.
type Table map[string]*Entry

// Parse decodes a reference document.
func Parse(data []byte) (Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing reference: %w", err)
	}
	if t == nil {
		t = Table{}
	}
	for id, e := range t {
		if e == nil {
			delete(t, id)
		}
	}
	return t, nil
}
