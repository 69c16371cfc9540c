package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "work-tracker.com/work-tracker/internal/errors"
)

func TestValidateSyncRequest(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"not json", `{"username":`, apperrors.ErrInvalidJSON},
		{"array body", `[1, 2]`, apperrors.ErrInvalidJSON},
		{"empty body", ``, apperrors.ErrMissingUsername},
		{"username missing", `{"state": {}}`, apperrors.ErrMissingUsername},
		{"username not a string", `{"username": 7, "state": {}}`, apperrors.ErrMissingUsername},
		{"username empty", `{"username": "", "state": {}}`, apperrors.ErrMissingUsername},
		{"state missing", `{"username": "alice"}`, apperrors.ErrMissingState},
		{"state null", `{"username": "alice", "state": null}`, apperrors.ErrMissingState},
		{"state array", `{"username": "alice", "state": []}`, apperrors.ErrMissingState},
		{"state string", `{"username": "alice", "state": "{}"}`, apperrors.ErrMissingState},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateSyncRequest([]byte(tc.body))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateSyncRequest_Valid(t *testing.T) {
	req, err := ValidateSyncRequest([]byte(`{"username": "alice", "state": {"isClockedIn": true}}`))
	require.NoError(t, err)
	assert.Equal(t, "alice", req.Username)
	assert.JSONEq(t, `{"isClockedIn": true}`, string(req.State))
}
