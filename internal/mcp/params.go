package mcp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxIDsPerCall bounds a single tool call.
const maxIDsPerCall = 10000

// IDParams names one or more identifiers. "ids" may be an array or a
// comma/whitespace separated string.
type IDParams struct {
	ID  string   `json:"id,omitempty"`
	IDs []string `json:"ids,omitempty"`
}

func (p *IDParams) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID  string          `json:"id"`
		IDs json.RawMessage `json:"ids"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.ID = raw.ID
	p.IDs = nil

	if len(raw.IDs) == 0 || string(raw.IDs) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw.IDs, &p.IDs); err == nil {
		return nil
	}
	var joined string
	if err := json.Unmarshal(raw.IDs, &joined); err != nil {
		return fmt.Errorf("ids must be an array of strings or a string")
	}
	p.IDs = strings.FieldsFunc(joined, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	return nil
}

// values returns every identifier in call order.
func (p IDParams) values() ([]string, error) {
	out := make([]string, 0, len(p.IDs)+1)
	if v := strings.TrimSpace(p.ID); v != "" {
		out = append(out, v)
	}
	for _, v := range p.IDs {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("id or ids is required")
	}
	if len(out) > maxIDsPerCall {
		return nil, fmt.Errorf("too many ids: %d (max %d)", len(out), maxIDsPerCall)
	}
	return out, nil
}

type GenerateParams struct {
	Kind  string `json:"kind,omitempty"` // short | standard
	Count int    `json:"count,omitempty"`
}

type ScanParams struct {
	Root       string   `json:"root,omitempty"`
	Include    []string `json:"include,omitempty"`
	Exclude    []string `json:"exclude,omitempty"`
	MaxEntries int      `json:"max_entries,omitempty"`
}

type InfoParams struct {
	Tool string `json:"tool,omitempty"`
}

type TransformResult struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

type TransformResponse struct {
	Operation string            `json:"operation"`
	Results   []TransformResult `json:"results"`
	Changed   int               `json:"changed"`
	Unchanged int               `json:"unchanged"`
}

type GenerateResponse struct {
	Kind string   `json:"kind"`
	IDs  []string `json:"ids"`
}

type ValidateResult struct {
	Input string `json:"input"`
	Valid bool   `json:"valid"`
}

type ValidateResponse struct {
	Results  []ValidateResult `json:"results"`
	AllValid bool             `json:"all_valid"`
}

type ClassifyResult struct {
	Input    string `json:"input"`
	Kind     string `json:"kind"`
	Standard string `json:"standard,omitempty"`
}

type ClassifyResponse struct {
	Results []ClassifyResult `json:"results"`
}
