package helpers

import (
	stdjson "encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayloadStrict(t *testing.T) {
	inputs := []string{
		`{"vehicles":{"total_detections":5}}`,
		`{"issues":[],"resolution":"1920x1080","output":"processed/annotated-1.avi"}`,
		"  \n{\"a\": {\"b\": [1, 2, {\"c\": null}]}}\n",
		`{}`,
	}

	for _, input := range inputs {
		var expected Payload
		require.NoError(t, stdjson.Unmarshal([]byte(input), &expected))

		payload, err := ParsePayload(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, payload, input)
	}
}

func TestParsePayloadEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t\r\n"} {
		payload, err := ParsePayload(input)
		require.NoError(t, err)
		require.NotNil(t, payload)
		assert.Empty(t, payload)
	}
}

func TestParsePayloadRecoversFromNoise(t *testing.T) {
	payload, err := ParsePayload("WARNING: codec deprecated\n{\"issues\":[]}\n")
	require.NoError(t, err)
	assert.Equal(t, Payload{"issues": []interface{}{}}, payload)

	payload, err = ParsePayload("loading model...\nfps=24\n{\"vehicles\":{\"total_detections\":5}}\ndone in 3.2s")
	require.NoError(t, err)
	vehicles, ok := payload["vehicles"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(5), vehicles["total_detections"])
}

func TestParsePayloadTrailingDocument(t *testing.T) {
	// Strict parse rejects the trailing text, the brace scan picks the object.
	payload, err := ParsePayload(`{"a":1} trailing`)
	require.NoError(t, err)
	assert.Equal(t, Payload{"a": float64(1)}, payload)
}

func TestParsePayloadFailure(t *testing.T) {
	inputs := []string{
		"not json at all",
		`{"broken": true,`,
		"} reversed {",
		"[1, 2, 3]",
		"warning {unbalanced} {\"a\":1}",
	}

	for _, input := range inputs {
		payload, err := ParsePayload(input)
		assert.Nil(t, payload, input)

		var failure *ParseFailure
		require.True(t, errors.As(err, &failure), input)
		assert.NotEmpty(t, failure.Reason)
	}
}

func TestParsePayloadNull(t *testing.T) {
	payload, err := ParsePayload("null")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "äöü", Truncate("äöüß", 3))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))

	long := strings.Repeat("x", 6000)
	assert.Len(t, Truncate(long, 5000), 5000)
}
