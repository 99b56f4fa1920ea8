package suggest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// extractArray finds the first JSON array in text, either bare or under one
// of wrapperKeys, that decodes into []T and passes accept.
func extractArray[T any](
	text string,
	wrapperKeys []string,
	accept func([]T) bool,
) ([]T, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if items, ok := tryExtractArray(raw, wrapperKeys, accept); ok {
			return items, nil
		}
	}
	return nil, fmt.Errorf("no valid JSON array found in response")
}

func tryExtractArray[T any](
	raw json.RawMessage,
	wrapperKeys []string,
	accept func([]T) bool,
) ([]T, bool) {
	var items []T
	if err := json.Unmarshal(raw, &items); err == nil && items != nil && accept(items) {
		return items, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range wrapperKeys {
		fieldRaw, exists := wrapper[key]
		if !exists {
			continue
		}
		var fieldItems []T
		if err := json.Unmarshal(fieldRaw, &fieldItems); err == nil &&
			fieldItems != nil && accept(fieldItems) {
			return fieldItems, true
		}
	}

	return nil, false
}

// flexInt decodes a JSON number or a numeric string.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid index %q", string(data))
	}
	*n = flexInt(int(f))
	return nil
}
