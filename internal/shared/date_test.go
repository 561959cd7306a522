package shared

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		Start Date `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2024-02-29"}`), &payload))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), payload.Start.Time)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2024-02-29"}`, string(out))
}

func TestDateRejectsBadFormat(t *testing.T) {
	var d Date
	err := json.Unmarshal([]byte(`"29/02/2024"`), &d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestNewDateTruncates(t *testing.T) {
	d := NewDate(time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "2024-05-01", d.String())
	assert.True(t, NewDate(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)).After(d))
}
