package paper

import (
	"encoding/json"
	"strings"
)

// GenerateRequest asks the service to render and store a paper.
type GenerateRequest struct {
	Paper    Paper
	Settings Settings
	Filename string
}

// DecodeGenerateRequest accepts either an envelope
// {"paper": {...}, "settings": {...}, "filename": "..."} or a bare paper.
func DecodeGenerateRequest(data []byte) (GenerateRequest, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil || root == nil {
		return GenerateRequest{}, NewError(KindValidation, "request body must be a JSON object", err)
	}

	req := GenerateRequest{Settings: DefaultSettings()}
	inner, enveloped := decodeObject(root["paper"])
	if !enveloped {
		req.Paper = decodeRoot(root)
		return req, nil
	}

	req.Paper = decodeRoot(inner)
	if raw, ok := root["settings"]; ok && !isNull(raw) {
		settings, err := DecodeSettings(raw)
		if err != nil {
			return GenerateRequest{}, err
		}
		req.Settings = settings
	}
	req.Filename = strings.TrimSpace(scalarString(root["filename"]))
	return req, nil
}
