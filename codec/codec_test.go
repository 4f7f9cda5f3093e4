package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manifest struct {
	Kind    string `json:"kind"`
	Width   int64  `json:"record_width,omitempty"`
	Records int64  `json:"record_count"`
}

func TestCodecsAreInterchangeable(t *testing.T) {
	in := manifest{Kind: "flyweight", Width: 16, Records: 3}
	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			data, err := enc.Marshal(in)
			require.NoError(t, err)

			var out manifest
			require.NoError(t, dec.Unmarshal(data, &out), "%s -> %s", enc.Name(), dec.Name())
			assert.Equal(t, in, out)
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("gob")
	assert.False(t, ok)

	assert.Equal(t, Default, OrDefault(nil))
	assert.Equal(t, JSON{}, OrDefault(JSON{}))
}

func TestMarshalIndent(t *testing.T) {
	data, err := GoJSON{}.MarshalIndent(manifest{Kind: "bytes"})
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"kind\": \"bytes\"")
}
