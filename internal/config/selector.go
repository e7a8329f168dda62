package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SelectorKind names the locator strategy for one UI element probe.
type SelectorKind string

const (
	ByID    SelectorKind = "ID"
	ByXPath SelectorKind = "XPATH"
	ByCSS   SelectorKind = "CSS"
)

// Selector locates one UI element. Chains of selectors are probed strictly
// in order so a stale entry degrades to a slower lookup instead of a failure
// when the web client's DOM drifts.
type Selector struct {
	Kind  SelectorKind `json:"type"`
	Value string       `json:"value"`
}

func (s Selector) String() string {
	return string(s.Kind) + ":" + s.Value
}

func (s Selector) IsZero() bool { return s.Value == "" }

// UnmarshalJSON accepts either the object form {"type":"ID","value":"x"} or
// a bare string, which is treated as an XPath. Config documents carried over
// from earlier releases list the chat/send chains as bare strings.
func (s *Selector) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.Kind = ByXPath
		s.Value = v
		return nil
	}
	var raw struct {
		Kind  string `json:"type"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	kind := SelectorKind(strings.ToUpper(strings.TrimSpace(raw.Kind)))
	switch kind {
	case ByID, ByXPath, ByCSS:
	case "":
		kind = ByXPath
	default:
		return fmt.Errorf("unknown selector type %q", raw.Kind)
	}
	s.Kind = kind
	s.Value = raw.Value
	return nil
}

func (s Selector) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  SelectorKind `json:"type"`
		Value string       `json:"value"`
	}{s.Kind, s.Value})
}
