package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN ", false))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("", true))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("", false))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud", false))
}

func TestNew_TagsService(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "kc", zerolog.InfoLevel)

	l.Debug().Msg("hidden")
	l.Info().Int64("user_id", 7).Msg("shown")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kc", line["service"])
	assert.Equal(t, float64(7), line["user_id"])
}
