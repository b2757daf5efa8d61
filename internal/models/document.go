package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Document is one upstream record as stored by the desktop sync job.
type Document struct {
	Collection Collection      `db:"collection" json:"collection"`
	ID         string          `db:"doc_id" json:"id"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

// CollectionFingerprint summarises a collection so unchanged collections can
// skip a reload.
type CollectionFingerprint struct {
	Count     int       `db:"count" json:"count"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Matches compares fingerprints by count and instant.
func (f CollectionFingerprint) Matches(other CollectionFingerprint) bool {
	return f.Count == other.Count && f.UpdatedAt.Equal(other.UpdatedAt)
}

// FingerprintOf computes the fingerprint of a loaded document set. An empty set
// reports the Unix epoch, matching the database default.
func FingerprintOf(docs []Document) CollectionFingerprint {
	fp := CollectionFingerprint{Count: len(docs), UpdatedAt: time.Unix(0, 0).UTC()}
	for _, doc := range docs {
		if doc.UpdatedAt.After(fp.UpdatedAt) {
			fp.UpdatedAt = doc.UpdatedAt
		}
	}
	return fp
}

// rawDoc gives lenient, typed access to the fields of a mirrored JSON document.
// Upstream data is not validated by the desktop app, so every accessor falls
// back to the zero value instead of failing the whole document.
type rawDoc map[string]json.RawMessage

func decodeDoc(data []byte) (rawDoc, error) {
	var doc rawDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decode document: null payload")
	}
	return doc, nil
}

func (d rawDoc) lookup(keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		if raw, ok := d[key]; ok && !isNull(raw) {
			return raw, true
		}
	}
	return nil, false
}

func (d rawDoc) str(keys ...string) string {
	raw, ok := d.lookup(keys...)
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

// date accepts ISO strings as well as Firestore style {seconds, nanoseconds} objects.
func (d rawDoc) date(keys ...string) string {
	raw, ok := d.lookup(keys...)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var ts struct {
		Seconds     *int64 `json:"seconds"`
		Nanoseconds int64  `json:"nanoseconds"`
		UnderSecs   *int64 `json:"_seconds"`
		UnderNanos  int64  `json:"_nanoseconds"`
	}
	if err := json.Unmarshal(raw, &ts); err == nil {
		switch {
		case ts.Seconds != nil:
			return time.Unix(*ts.Seconds, ts.Nanoseconds).UTC().Format(time.RFC3339Nano)
		case ts.UnderSecs != nil:
			return time.Unix(*ts.UnderSecs, ts.UnderNanos).UTC().Format(time.RFC3339Nano)
		}
	}
	return ""
}

func (d rawDoc) amount(keys ...string) decimal.Decimal {
	raw, ok := d.lookup(keys...)
	if !ok {
		return decimal.Zero
	}
	return parseAmount(raw)
}

// boolean reports true when any of the keys holds JSON true.
func (d rawDoc) boolean(keys ...string) bool {
	for _, key := range keys {
		raw, ok := d[key]
		if !ok {
			continue
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil && b {
			return true
		}
	}
	return false
}

func (d rawDoc) integer(keys ...string) int {
	n, _ := d.optionalInt(keys...)
	return n
}

// optionalInt distinguishes a numeric field from an absent or non-numeric one.
func (d rawDoc) optionalInt(keys ...string) (int, bool) {
	raw, ok := d.lookup(keys...)
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// array returns the elements of a JSON array, or nil when the field is missing
// or holds anything other than an array.
func (d rawDoc) array(keys ...string) []json.RawMessage {
	raw, ok := d.lookup(keys...)
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func (d rawDoc) raw(keys ...string) json.RawMessage {
	raw, _ := d.lookup(keys...)
	return raw
}

func parseAmount(raw json.RawMessage) decimal.Decimal {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, err := decimal.NewFromString(n.String()); err == nil {
			return v
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return decimal.Zero
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// dateLayouts covers the formats produced by the desktop app and by JSON
// serialisation of JavaScript dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// ParseDate parses a mirrored date string. Values without an explicit offset
// are interpreted in loc. The boolean is false for empty or malformed input.
func ParseDate(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}
