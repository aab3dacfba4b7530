package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
		Seed int64  `json:"seed"`
	}
	require.NoError(t, ParseJSON(`{"name":"plan","seed":7}`, &v))
	assert.Equal(t, "plan", v.Name)
	assert.EqualValues(t, 7, v.Seed)

	assert.Error(t, ParseJSON(`{"name":"plan"} {"name":"extra"}`, &v))
	assert.Error(t, ParseJSON(`{"name":`, &v))
}

func TestToJSONRoundTrip(t *testing.T) {
	in := map[string]int{"breakfast": 1}

	data, err := ToJSON(in)
	require.NoError(t, err)

	var out map[string]int
	require.NoError(t, ParseJSON(data, &out))
	assert.Equal(t, in, out)

	indented, err := ToIndentedJSON(in)
	require.NoError(t, err)
	assert.Contains(t, indented, "\n  \"breakfast\": 1")
}
