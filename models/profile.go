// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ProfileKind tags which variant a Profile holds
type ProfileKind string

const (
	ProfileEmpty      ProfileKind = ""
	ProfileRawText    ProfileKind = "raw_text"
	ProfileStructured ProfileKind = "structured"
)

var ErrInvalidProfile = errors.New("profile must be a string or an object")

// Profile holds a candidate's experience or education. Registration forms
// send either free text or a JSON object of labelled fields; the variant is
// decided once when decoding and never re-inspected downstream.
type Profile struct {
	Kind   ProfileKind
	Text   string
	Fields map[string]string
}

func RawText(s string) Profile {
	s = strings.TrimSpace(s)
	if s == "" {
		return Profile{}
	}
	return Profile{Kind: ProfileRawText, Text: s}
}

func Structured(fields map[string]string) Profile {
	if len(fields) == 0 {
		return Profile{}
	}
	return Profile{Kind: ProfileStructured, Fields: fields}
}

func (p Profile) IsEmpty() bool { return p.Kind == ProfileEmpty }

// Summary renders the profile as a single line for listings
func (p Profile) Summary() string {
	switch p.Kind {
	case ProfileRawText:
		return p.Text
	case ProfileStructured:
		keys := make([]string, 0, len(p.Fields))
		for k := range p.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+p.Fields[k])
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func (p Profile) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case ProfileRawText:
		return json.Marshal(p.Text)
	case ProfileStructured:
		return json.Marshal(p.Fields)
	}
	return []byte("null"), nil
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Profile{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = RawText(s)
		return nil
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		fields := make(map[string]string, len(raw))
		for k, v := range raw {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				fields[k] = s
				continue
			}
			// Numbers, booleans and nested values keep their JSON text
			fields[k] = string(bytes.TrimSpace(v))
		}
		*p = Structured(fields)
		return nil
	}
	return ErrInvalidProfile
}

// Value stores the profile as JSON text; empty profiles are NULL
func (p Profile) Value() (driver.Value, error) {
	if p.IsEmpty() {
		return nil, nil
	}
	b, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a JSON-encoded profile. Plain text that is not JSON is taken
// as raw text so rows imported from older spreadsheets still load.
func (p *Profile) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*p = Profile{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Profile", src)
	}

	if err := p.UnmarshalJSON(data); err != nil {
		*p = RawText(string(data))
	}
	return nil
}
