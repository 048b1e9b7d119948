package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProfile(t *testing.T) {
	assert.Equal(t, ProfileMEV, ParseProfile("mev"))
	assert.Equal(t, ProfileScalper, ParseProfile(" Scalper "))
	assert.Equal(t, ProfileRandom, ParseProfile("random"))
	assert.Equal(t, ProfileRandom, ParseProfile(""))
	assert.Equal(t, ProfileRandom, ParseProfile("arbitrage"))
}
