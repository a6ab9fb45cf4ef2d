package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpMessage_MarshalJSON(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC)
	resolved := created.Add(26 * time.Hour)
	answer := "Verifique o endereço"

	raw, err := json.Marshal(&HelpMessage{
		ID:            "h1",
		Message:       "Ajuda",
		Status:        HelpResolved,
		AdminResponse: &answer,
		CreatedAt:     created,
		ResolvedAt:    &resolved,
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "h1", got["id"])
	assert.Equal(t, "01/03/2025 09:05", got["created_at"])
	assert.Equal(t, "02/03/2025 11:05", got["resolved_at"])
	assert.Equal(t, answer, got["admin_response"])
}

func TestUserSummary_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal([]*UserSummary{{
		ID:        "u1",
		Name:      "Ana",
		IsVIP:     true,
		CreatedAt: time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC),
	}})
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "31/12/2024 23:59", got[0]["created_at"])
	assert.Equal(t, true, got[0]["is_vip"])
}
