package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pwojcik-dev/orderscan/internal/common"
	"github.com/pwojcik-dev/orderscan/internal/entity"
)

var (
	reLeadNumbering = regexp.MustCompile(`^\d+[.)]\s*`)
	reLeadBullet    = regexp.MustCompile(`^[-•*]\s*`)
	reArtifact      = regexp.MustCompile(`(?i)^zam[óo]wienie\s*-\s*`)
)

// ParseResponse turns the raw remote reply into display-ready sections.
// Strategy: find the first brace-delimited block and flatten it into
// "key: value" lines; when no parseable block exists, fall back to
// splitting the reply into cleaned non-empty lines. The result is bucketed
// and ordered for display. A malformed reply never fails, only an empty one.
func ParseResponse(raw string) (*entity.Analysis, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, common.NewAppError("EMPTY_RESPONSE", "remote reply carried no content", common.ErrRemoteProtocol)
	}

	var contents []string
	if block, ok := jsonBlock(raw); ok {
		if members, err := decodeOrdered(block); err == nil {
			contents = flatten(members)
		}
	}
	if contents == nil {
		contents = splitPlainLines(raw)
	}

	for i, c := range contents {
		contents[i] = cleanContent(c)
	}
	return &entity.Analysis{Raw: raw, Sections: Bucketize(contents)}, nil
}

// jsonBlock returns the first top-level brace-delimited block in the text.
func jsonBlock(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// cleanContent strips the known "Zamówienie - " artifact prefix the
// assistant tends to prepend.
func cleanContent(s string) string {
	return reArtifact.ReplaceAllString(s, "")
}

func splitPlainLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = reLeadNumbering.ReplaceAllString(line, "")
		line = reLeadBullet.ReplaceAllString(line, "")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// member is one key/value pair of a decoded JSON object with its document
// order preserved; encoding/json maps would scramble the assistant's
// ordering and make flattened output nondeterministic.
type member struct {
	key   string
	value any // string | json.Number | bool | nil | []any | []member
}

func decodeOrdered(block string) ([]member, error) {
	dec := json.NewDecoder(strings.NewReader(block))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	members, ok := v.([]member)
	if !ok {
		return nil, fmt.Errorf("top-level value is not an object")
	}
	return members, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var obj []member
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, member{key: key, value: val})
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return nil, err
			}
			return obj, nil
		case '[':
			var arr []any
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return tok, nil
	}
}

// flatten converts the decoded object into one human-readable line per leaf
// scalar: array elements become "key N: value" (or "key N - subkey: value"
// for object elements), nested objects become "key - subkey: value",
// scalars become "key: value".
func flatten(members []member) []string {
	var out []string
	for _, m := range members {
		switch v := m.value.(type) {
		case []any:
			for i, elem := range v {
				if obj, ok := elem.([]member); ok {
					for _, sub := range obj {
						out = append(out, fmt.Sprintf("%s %d - %s: %s", m.key, i+1, sub.key, scalarString(sub.value)))
					}
				} else {
					out = append(out, fmt.Sprintf("%s %d: %s", m.key, i+1, scalarString(elem)))
				}
			}
		case []member:
			for _, sub := range v {
				out = append(out, fmt.Sprintf("%s - %s: %s", m.key, sub.key, scalarString(sub.value)))
			}
		default:
			out = append(out, fmt.Sprintf("%s: %s", m.key, scalarString(v)))
		}
	}
	return out
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
