package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

// ExtractJSONObject returns the substring between the first '{' and the last '}'.
func ExtractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// DecodeJSONObject unmarshals the object embedded in a completion into target.
// Model chatter and markdown fences around the object are ignored.
func DecodeJSONObject(raw string, target interface{}) error {
	candidate, ok := ExtractJSONObject(raw)
	if !ok {
		return appErrors.Clone(appErrors.ErrAIResponseUnparseable, "AI response did not contain a JSON object")
	}
	if err := json.Unmarshal([]byte(candidate), target); err != nil {
		return appErrors.Wrap(fmt.Errorf("unmarshal AI response: %w", err), appErrors.ErrAIResponseUnparseable.Code,
			appErrors.ErrAIResponseUnparseable.Status, appErrors.ErrAIResponseUnparseable.Message)
	}
	return nil
}
