package encode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	assert := assert.New(t)
	e := New()

	codes := e.EncodeKeyValueAttributes(
		[][]string{{"a", "b", "a"}},
		[][]string{{"b", "c"}},
	)
	assert.Len(codes, 2)

	assert.Equal(codes[0][0], codes[0][2]) // both "a"
	assert.Equal(codes[0][1], codes[1][0]) // same "b" across columns

	assert.Equal("a", e.DecodeValue(codes[0][0]))
	assert.Equal("b", e.DecodeValue(codes[0][1]))
	assert.Equal("c", e.DecodeValue(codes[1][1]))

	assert.NotEqual(codes[0][0], codes[1][1]) // distinct strings get distinct codes
}
