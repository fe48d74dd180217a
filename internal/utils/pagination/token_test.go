package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	createdAt := time.Date(2026, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(createdAt, "0f8c1f7e-instance")
	assert.NotEmpty(t, token)

	decodedTime, decodedID, err := DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(decodedTime))
	assert.Equal(t, "0f8c1f7e-instance", decodedID)

	// Non-UTC input is normalized
	jakarta := time.FixedZone("WIB", 7*3600)
	local := time.Date(2026, 5, 15, 21, 30, 45, 0, jakarta)
	decodedTime, _, err = DecodeToken(EncodeToken(local, "x"))
	require.NoError(t, err)
	assert.True(t, local.Equal(decodedTime))
}

func TestDecodeTokenError(t *testing.T) {
	_, _, err := DecodeToken("this is not base64!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	noSeparator := base64.URLEncoding.EncodeToString([]byte("2026-05-15T00:00:00Z"))
	_, _, err = DecodeToken(noSeparator)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badTime := base64.URLEncoding.EncodeToString([]byte("notadate|abc"))
	_, _, err = DecodeToken(badTime)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time parse")
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 20, NormalizeLimit(0, 20, 100))
	assert.Equal(t, 20, NormalizeLimit(-5, 20, 100))
	assert.Equal(t, 50, NormalizeLimit(50, 20, 100))
	assert.Equal(t, 100, NormalizeLimit(500, 20, 100))
}
