package agents

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"delphi/pkg/errors"
)

// validator is implemented by every step output.
type validator interface {
	Validate() error
}

// decodeOutput parses a model response into out. Strict parsing is tried
// first; when that fails the text goes through jsonrepair once and is parsed
// again. Whatever parses must still pass the output's own Validate.
func decodeOutput(text string, out validator) error {
	cleaned := stripCodeFence(text)
	if cleaned == "" {
		return errors.ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return errors.Wrapf(errors.ErrSchemaValidation, "parse response: %v", err)
		}
		if err := json.Unmarshal([]byte(repaired), out); err != nil {
			return errors.Wrapf(errors.ErrSchemaValidation, "parse repaired response: %v", err)
		}
	}
	return out.Validate()
}

// stripCodeFence removes a wrapping markdown code fence, which some models
// emit despite being told not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
