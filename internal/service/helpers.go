package service

import "encoding/json"

func mustJSON(v map[string]interface{}) json.RawMessage {
	out, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return out
}
