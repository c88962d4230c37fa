package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImagePayload(t *testing.T) {
	gif := "R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"

	data, ct, err := decodeImagePayload("data:image/gif;base64," + gif)
	require.NoError(t, err)
	assert.Equal(t, "image/gif", ct)
	assert.NotEmpty(t, data)

	// Raw base64 without the data URL wrapper is accepted too.
	data2, ct2, err := decodeImagePayload(gif)
	require.NoError(t, err)
	assert.Equal(t, data, data2)
	assert.Equal(t, "application/octet-stream", ct2)

	_, _, err = decodeImagePayload("data:image/gif;base64")
	assert.Error(t, err, "data url without a comma separator is malformed")

	_, _, err = decodeImagePayload("!!not-base64!!")
	assert.Error(t, err)
}

func TestParseDOB(t *testing.T) {
	d, err := parseDOB("1990-04-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDOB("1990-04-01T12:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 12, d.Hour())

	_, err = parseDOB("01/04/1990")
	assert.Error(t, err)
}
