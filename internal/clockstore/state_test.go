package clockstore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/merkle"
)

func createTestState() *ClockState {
	trie := merkle.New()
	for _, ts := range []string{
		"2018-11-13T13:20:40.000Z-0000-0000000000000001",
		"2018-11-14T13:05:35.000Z-0000-0000000000000001",
		"2018-11-15T22:19:00.000Z-0003-0000000000000002",
	} {
		trie = trie.Insert(crdt.MustParse(ts))
	}

	return &ClockState{
		Timestamp: crdt.MustParse("2018-11-15T22:19:00.000Z-0003-0000000000000002"),
		Merkle:    trie,
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	state := createTestState()

	raw, err := Save(state)
	require.NoError(t, err)

	loaded, fresh := Load(raw)
	require.False(t, fresh)
	assert.Equal(t, state.Timestamp, loaded.Timestamp)
	assert.Equal(t, state.Merkle.RootHash(), loaded.Merkle.RootHash())
	assert.Equal(t, state.Merkle.Debug(), loaded.Merkle.Debug())

	_, diverged := merkle.Diff(state.Merkle, loaded.Merkle)
	assert.False(t, diverged)
}

func TestSave_Format(t *testing.T) {
	state := &ClockState{
		Timestamp: crdt.MustParse("2018-11-13T13:20:40.000Z-00FF-0000000000000abc"),
		Merkle:    merkle.New(),
	}

	raw, err := Save(state)
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":"2018-11-13T13:20:40.000Z-00FF-0000000000000abc","merkle":{"hash":0}}`, string(raw))
}

func TestSave_NilMerkle(t *testing.T) {
	raw, err := Save(&ClockState{Timestamp: crdt.Zero()})
	require.NoError(t, err)

	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &obj))
	assert.JSONEq(t, `{"hash":0}`, string(obj["merkle"]))
}

func TestLoad_Fallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "absent", raw: ""},
		{name: "malformed json", raw: `{"timestamp":`},
		{name: "not an object", raw: `[1,2,3]`},
		{name: "invalid timestamp", raw: `{"timestamp":"yesterday","merkle":{}}`},
		{name: "missing timestamp", raw: `{"merkle":{}}`},
		{name: "invalid merkle", raw: `{"timestamp":"2018-11-13T13:20:40.000Z-0000-0000000000000001","merkle":{"hash":"x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, fresh := Load([]byte(tt.raw))
			require.True(t, fresh)
			require.NotNil(t, state)

			assert.Equal(t, uint64(0), state.Timestamp.Millis())
			assert.Equal(t, uint16(0), state.Timestamp.Counter())
			assert.Len(t, state.Timestamp.Node(), crdt.NodeLength, "fresh state gets a generated node id")
			assert.True(t, state.Merkle.IsEmpty())
		})
	}
}

func TestLoad_MissingMerkle(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "absent merkle", raw: `{"timestamp":"2018-11-13T13:20:40.000Z-0000-0000000000000001"}`},
		{name: "null merkle", raw: `{"timestamp":"2018-11-13T13:20:40.000Z-0000-0000000000000001","merkle":null}`},
		{name: "empty merkle", raw: `{"timestamp":"2018-11-13T13:20:40.000Z-0000-0000000000000001","merkle":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, fresh := Load([]byte(tt.raw))
			require.False(t, fresh)
			assert.Equal(t, "2018-11-13T13:20:40.000Z-0000-0000000000000001", state.Timestamp.String())
			assert.True(t, state.Merkle.IsEmpty())
		})
	}
}

func TestFresh(t *testing.T) {
	state := Fresh("abc")
	assert.Equal(t, "1970-01-01T00:00:00.000Z-0000-0000000000000abc", state.Timestamp.String())
	assert.True(t, state.Merkle.IsEmpty())

	a, b := Fresh(""), Fresh("")
	assert.NotEqual(t, a.Timestamp.Node(), b.Timestamp.Node())
}
