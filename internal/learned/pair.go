package learned

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"pairdex/internal/textutil"
)

const (
	keyContentBasename = "archive_basename"
	keyPreviewBasename = "image_basename"
	keyConfirmedAt     = "confirmed_at"
)

// Pair is one confirmed association between a content basename and a preview
// basename. Extra holds every other key of the persisted object.
type Pair struct {
	ContentBasename string
	PreviewBasename string
	ConfirmedAt     time.Time
	Extra           map[string]json.RawMessage
}

// Valid reports whether both basenames are present.
func (p Pair) Valid() bool {
	return strings.TrimSpace(p.ContentBasename) != "" && strings.TrimSpace(p.PreviewBasename) != ""
}

// contentKey is the case-insensitive identity used for supersession.
func (p Pair) contentKey() string {
	return textutil.Fold(p.ContentBasename)
}

// MarshalJSON writes the pair as a flat object with Extra keys alongside the
// known ones. Basenames are not HTML-escaped.
func (p Pair) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(p.Extra)+3)
	for k, v := range p.Extra {
		out[k] = v
	}
	var err error
	if out[keyContentBasename], err = marshalPlain(p.ContentBasename); err != nil {
		return nil, err
	}
	if out[keyPreviewBasename], err = marshalPlain(p.PreviewBasename); err != nil {
		return nil, err
	}
	if !p.ConfirmedAt.IsZero() {
		if out[keyConfirmedAt], err = marshalPlain(p.ConfirmedAt.UTC().Format(time.RFC3339)); err != nil {
			return nil, err
		}
	}
	return marshalPlain(out)
}

func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON accepts any JSON object. Non-string basenames are treated as
// missing and an unparseable confirmed_at is kept as an extra key.
func (p *Pair) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Pair{}
	p.ContentBasename = takeString(raw, keyContentBasename)
	p.PreviewBasename = takeString(raw, keyPreviewBasename)
	if value, ok := raw[keyConfirmedAt]; ok {
		var stamp string
		if json.Unmarshal(value, &stamp) == nil {
			if ts, err := time.Parse(time.RFC3339, stamp); err == nil {
				p.ConfirmedAt = ts
				delete(raw, keyConfirmedAt)
			}
		}
	}
	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}

func takeString(raw map[string]json.RawMessage, key string) string {
	value, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return ""
	}
	delete(raw, key)
	return s
}

// Dedupe drops invalid pairs and keeps only the last pair for each content
// basename (compared case-insensitively), at the position of that last
// occurrence.
func Dedupe(pairs []Pair) []Pair {
	last := make(map[string]int, len(pairs))
	for i, p := range pairs {
		if !p.Valid() {
			continue
		}
		last[p.contentKey()] = i
	}
	out := make([]Pair, 0, len(last))
	for i, p := range pairs {
		if !p.Valid() {
			continue
		}
		if last[p.contentKey()] == i {
			out = append(out, p)
		}
	}
	return out
}

// Lookup returns the preview basename most recently confirmed for content.
// It scans from the end so it is correct on undeduplicated input too.
func Lookup(content string, pairs []Pair) (string, bool) {
	key := textutil.Fold(content)
	if key == "" {
		return "", false
	}
	for i := len(pairs) - 1; i >= 0; i-- {
		p := pairs[i]
		if p.Valid() && p.contentKey() == key {
			return p.PreviewBasename, true
		}
	}
	return "", false
}
