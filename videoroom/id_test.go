package videoroom

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDPreservesNumericPrecision(t *testing.T) {
	// above 2^53, a float64 round trip would corrupt the id
	in := []byte(`{"room":9007199254740993}`)
	var v struct {
		Room ID `json:"room"`
	}
	require.NoError(t, json.Unmarshal(in, &v))

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(out))
	assert.True(t, v.Room.Equal(NumericID(9007199254740993)))
}

func TestIDKeepsStringKind(t *testing.T) {
	var v struct {
		Room ID `json:"room"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"room":"lobby"}`), &v))
	assert.True(t, v.Room.Equal(StringID("lobby")))
	assert.False(t, v.Room.Equal(NumericID(0)))
	assert.Equal(t, "lobby", v.Room.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"room":"lobby"}`, string(out))
}

func TestIDZeroValue(t *testing.T) {
	var id ID
	assert.True(t, id.IsZero())
	assert.Equal(t, "", id.String())
	assert.False(t, NumericID(7).IsZero())
	assert.False(t, id.Equal(NumericID(0)))
}

func TestIDOmitzeroDropsUnsetField(t *testing.T) {
	body := struct {
		Room ID `json:"room,omitzero"`
	}{}
	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))

	body.Room = NumericID(7)
	out, err = json.Marshal(body)
	require.NoError(t, err)
	assert.Equal(t, `{"room":7}`, string(out))
}

func TestIDNumericAndStringKindsDiffer(t *testing.T) {
	// "7" and 7 are different identifiers on the wire
	assert.False(t, StringID("7").Equal(NumericID(7)))
	assert.Equal(t, "7", StringID("7").String())
	assert.Equal(t, "7", NumericID(7).String())
}
