package extraction

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Candidate is one untrusted item as decoded from upstream JSON. Values are
// read only through the typed accessors below, never by type assertion at the
// call site.
type Candidate map[string]any

// Field aliases. The text and speech prompts ask for German keys, the image
// prompt for English ones.
var (
	keysName     = []string{"name"}
	keysQuantity = []string{"quantity", "menge"}
	keysUnit     = []string{"unit", "einheit"}
	keysCategory = []string{"category", "kategorie"}
	keysExpiry   = []string{"expiry_guess", "ablaufdatum", "expiry_date"}
	keysBest     = []string{"quantity_best"}
	keysMin      = []string{"quantity_min"}
	keysMax      = []string{"quantity_max"}
	keysConf     = []string{"confidence"}
	keysInst     = []string{"instances"}
)

// text returns the first alias holding a string. Numbers are not stringified.
func (c Candidate) text(keys []string) (string, bool) {
	for _, k := range keys {
		if s, ok := c[k].(string); ok {
			return s, true
		}
	}
	return "", false
}

// number returns the first alias holding a finite number or a numeric string.
func (c Candidate) number(keys []string) (float64, bool) {
	for _, k := range keys {
		if f, ok := toNumber(c[k]); ok {
			return f, true
		}
	}
	return 0, false
}

func (c Candidate) list(keys []string) []any {
	for _, k := range keys {
		if l, ok := c[k].([]any); ok {
			return l
		}
	}
	return nil
}

func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", "."), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Instance is one detected bounding box of the image path.
type Instance struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
	C float64 `json:"c"`
}

// instances returns one Instance per list element. Every element counts as a
// detection; coordinates are read only from object entries and default to zero.
func (c Candidate) instances() []Instance {
	raw := c.list(keysInst)
	out := make([]Instance, 0, len(raw))
	for _, r := range raw {
		obj, ok := r.(map[string]any)
		if !ok {
			out = append(out, Instance{})
			continue
		}
		box := Candidate(obj)
		x, _ := box.number([]string{"x"})
		y, _ := box.number([]string{"y"})
		w, _ := box.number([]string{"w"})
		h, _ := box.number([]string{"h"})
		conf, _ := box.number([]string{"c"})
		out = append(out, Instance{X: x, Y: y, W: w, H: h, C: conf})
	}
	return out
}

// cleanPayload strips what chat models wrap around JSON: whitespace, a
// Markdown code fence, or prose before the first brace.
func cleanPayload(raw []byte) []byte {
	b := bytes.TrimSpace(raw)
	if bytes.HasPrefix(b, []byte("```")) {
		if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
			b = b[nl+1:]
		} else {
			b = b[3:]
		}
		b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
		b = bytes.TrimSpace(b)
	}
	if len(b) > 0 && b[0] != '{' && b[0] != '[' {
		start := bytes.IndexAny(b, "{[")
		if start < 0 {
			return b
		}
		b = b[start:]
	}
	return b
}

// decodeObject decodes an object payload; ok is false for anything else.
func decodeObject(raw []byte) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal(cleanPayload(raw), &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}
