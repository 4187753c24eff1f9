package streaming

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	data, err := Marshal(TypeError, ErrorPayload{Message: "dataset unavailable"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","payload":{"message":"dataset unavailable"}}`, string(data))

	var p ErrorPayload
	typ, err := Unmarshal(data, &p)
	require.NoError(t, err)
	assert.Equal(t, TypeError, typ)
	assert.Equal(t, "dataset unavailable", p.Message)
}

func TestMarshal_UnsupportedPayload(t *testing.T) {
	_, err := Marshal(TypeStatus, math.Inf(1))
	assert.ErrorContains(t, err, "marshal status payload")
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := Unmarshal([]byte(`not json`), nil)
	assert.Error(t, err)
}
