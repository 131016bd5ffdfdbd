package repositories

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"kitchen_control/internal/apperr"

	"github.com/shopspring/decimal"
)

// wireObject is one JSON object as the backend sends it. The backend mixes
// camelCase and snake_case across resources and versions, so every accessor
// takes the candidate keys in preference order. Nothing outside this package
// sees wire field names.
type wireObject map[string]json.RawMessage

// listWrapperKeys are the envelope keys some endpoints wrap arrays in.
var listWrapperKeys = []string{"data", "content", "items", "result", "results"}

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// decodeObject decodes a single object, unwrapping a {"data": {...}} envelope.
func decodeObject(raw json.RawMessage) (wireObject, error) {
	var obj wireObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "The server returned an unexpected response.", err)
	}
	if inner := obj.Object("data"); inner != nil && isEnvelope(obj) {
		return inner, nil
	}
	return obj, nil
}

// isEnvelope reports whether every key of obj is a response-envelope key.
func isEnvelope(obj wireObject) bool {
	for key := range obj {
		switch key {
		case "data", "message", "status", "success", "code", "timestamp":
		default:
			return false
		}
	}
	return true
}

// decodeList accepts a bare array, an envelope holding an array, or a single
// object (treated as a one-element list). null and empty bodies yield nil.
func decodeList(raw json.RawMessage) ([]wireObject, error) {
	if isNull(raw) {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '[':
		var list []wireObject
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "The server returned an unexpected response.", err)
		}
		return list, nil
	case '{':
		var obj wireObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "The server returned an unexpected response.", err)
		}
		for _, key := range listWrapperKeys {
			if inner, ok := obj[key]; ok && bytes.HasPrefix(bytes.TrimSpace(inner), []byte("[")) {
				return decodeList(inner)
			}
		}
		return []wireObject{obj}, nil
	}
	return nil, apperr.New(apperr.KindInternal, "The server returned an unexpected response.")
}

func (w wireObject) raw(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := w[k]; ok && !isNull(v) {
			return v, true
		}
	}
	return nil, false
}

func (w wireObject) has(keys ...string) bool {
	_, ok := w.raw(keys...)
	return ok
}

// Int64 reads a number or numeric string.
func (w wireObject) Int64(keys ...string) int64 {
	v, _ := w.optInt64(keys...)
	return v
}

func (w wireObject) optInt64(keys ...string) (int64, bool) {
	raw, ok := w.raw(keys...)
	if !ok {
		return 0, false
	}
	return rawInt64(raw)
}

// OptInt64 returns nil when the key is absent or not numeric.
func (w wireObject) OptInt64(keys ...string) *int64 {
	v, ok := w.optInt64(keys...)
	if !ok {
		return nil
	}
	return &v
}

func rawInt64(raw json.RawMessage) (int64, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

func (w wireObject) Int(keys ...string) int {
	return int(w.Int64(keys...))
}

func (w wireObject) Float(keys ...string) float64 {
	raw, ok := w.raw(keys...)
	if !ok {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		f, _ := n.Float64()
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f
	}
	return 0
}

// String reads a string; numbers are rendered in decimal.
func (w wireObject) String(keys ...string) string {
	raw, ok := w.raw(keys...)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func (w wireObject) Bool(fallback bool, keys ...string) bool {
	raw, ok := w.raw(keys...)
	if !ok {
		return fallback
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	return fallback
}

func (w wireObject) Decimal(keys ...string) decimal.Decimal {
	raw, ok := w.raw(keys...)
	if !ok {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero
	}
	return d
}

// Time reads an ISO string or a [y, m, d, h, min, s] array.
func (w wireObject) Time(keys ...string) time.Time {
	t, _ := w.optTime(keys...)
	return t
}

func (w wireObject) OptTime(keys ...string) *time.Time {
	t, ok := w.optTime(keys...)
	if !ok {
		return nil
	}
	return &t
}

func (w wireObject) optTime(keys ...string) (time.Time, bool) {
	raw, ok := w.raw(keys...)
	if !ok {
		return time.Time{}, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseWireTime(s)
	}
	var parts []int
	if err := json.Unmarshal(raw, &parts); err == nil && len(parts) >= 3 {
		for len(parts) < 6 {
			parts = append(parts, 0)
		}
		return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, time.UTC), true
	}
	return time.Time{}, false
}

func parseWireTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Object returns the nested object under the first present key.
func (w wireObject) Object(keys ...string) wireObject {
	raw, ok := w.raw(keys...)
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return nil
	}
	var obj wireObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

// List returns the nested array under the first present key.
func (w wireObject) List(keys ...string) []wireObject {
	raw, ok := w.raw(keys...)
	if !ok {
		return nil
	}
	var list []wireObject
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

// RefID reads an id that may be sent flat (storeId) or as a nested object
// (store: {storeId}) or as a bare scalar under the nested key (store: 3).
func (w wireObject) RefID(flatKeys []string, nestedKey string, nestedIDKeys ...string) *int64 {
	if v := w.OptInt64(flatKeys...); v != nil {
		return v
	}
	if nested := w.Object(nestedKey); nested != nil {
		return nested.OptInt64(nestedIDKeys...)
	}
	return w.OptInt64(nestedKey)
}

// RefString is RefID for string identifiers such as batch codes.
func (w wireObject) RefString(flatKeys []string, nestedKey string, nestedIDKeys ...string) string {
	if s := w.String(flatKeys...); s != "" {
		return s
	}
	if nested := w.Object(nestedKey); nested != nil {
		return nested.String(nestedIDKeys...)
	}
	return w.String(nestedKey)
}

func wireDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
