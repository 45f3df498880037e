package service

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexNumber accepts a JSON number or a numeric string. Anything else leaves
// it unset rather than failing the whole document.
type flexNumber struct {
	Value float64
	Set   bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	*n = flexNumber{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSuffix(strings.TrimSpace(s), "%")
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		n.Value, n.Set = f, true
	}
	return nil
}

func (n flexNumber) ptr() *float64 {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

// flexString accepts a string or a scalar and trims it.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	*s = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		return nil
	}
	*s = flexString(string(data))
	return nil
}

// flexStrings accepts an array of scalars or a single comma separated string.
// Blank entries are dropped and repeats removed case-insensitively, keeping
// the first spelling.
type flexStrings []string

func (l *flexStrings) UnmarshalJSON(data []byte) error {
	*l = flexStrings{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var items []string
	switch data[0] {
	case '[':
		var raw []flexString
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		for _, r := range raw {
			items = append(items, string(r))
		}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		items = strings.Split(s, ",")
	default:
		return nil
	}
	*l = dedupeStrings(items)
	return nil
}

func dedupeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
