package validators

import (
	"bytes"
	"encoding/json"

	dto "work-tracker.com/work-tracker/internal/data_models"
	apperrors "work-tracker.com/work-tracker/internal/errors"
)

// ValidateSyncRequest parses a POST /sync body. An empty body is treated as
// an empty object and so fails on the missing username.
func ValidateSyncRequest(body []byte) (*dto.SyncRequest, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, apperrors.ErrInvalidJSON
	}

	var username string
	if raw, ok := fields["username"]; !ok || json.Unmarshal(raw, &username) != nil || username == "" {
		return nil, apperrors.ErrMissingUsername
	}

	state := bytes.TrimSpace(fields["state"])
	if len(state) == 0 || state[0] != '{' {
		return nil, apperrors.ErrMissingState
	}

	return &dto.SyncRequest{
		Username: username,
		State:    json.RawMessage(state),
	}, nil
}
