package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boostermodels "kc-mini-app-backend/internal/features/booster/models"
	usermodels "kc-mini-app-backend/internal/features/user/models"
)

func TestEncodeDecode_KeepsBoosterOrder(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000).UTC()
	b1, _ := boostermodels.Find("B001")
	b5, _ := boostermodels.Find("B005")

	s := Empty()
	s.User = &usermodels.User{ID: "1", TelegramID: 1, Balance: 7.5, CreatedAt: now}
	s.ActiveBoosters = append(s.ActiveBoosters,
		boostermodels.Activate(b1, now),
		boostermodels.Activate(b5, now),
		boostermodels.Activate(b1, now),
	)

	data, err := s.Encode()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, got.ActiveBoosters, 3)
	assert.Equal(t, "B001", got.ActiveBoosters[0].BoosterID)
	assert.Equal(t, "B005", got.ActiveBoosters[1].BoosterID)
	assert.Nil(t, got.ActiveBoosters[1].ExpiresAt)
	assert.Equal(t, 7.5, got.User.Balance)
	assert.Equal(t, SchemaVersion, got.Version)
}

func TestDecode_LegacyRecordWithoutVersion(t *testing.T) {
	got, err := Decode([]byte(`{"user":null,"active_boosters":null}`))
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, got.Version)
	assert.NotNil(t, got.ActiveBoosters)
	assert.False(t, got.HasUser())
}

func TestDecode_RejectsNewerVersion(t *testing.T) {
	_, err := Decode([]byte(`{"version":2,"user":null}`))

	var verErr *UnsupportedVersionError
	require.ErrorAs(t, err, &verErr)
	assert.Equal(t, 2, verErr.Version)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte(`{`))
	assert.Error(t, err)
}
