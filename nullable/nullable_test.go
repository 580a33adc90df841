package nullable

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name  String `json:"name"`
	Count Int    `json:"count"`
	Seen  Time   `json:"seen"`
}

func TestJSON(t *testing.T) {
	seen := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(row{Name: Of("ann"), Seen: Of(seen)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ann","count":null,"seen":"2024-03-01T12:00:00Z"}`, string(data))

	var back row
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "ann", back.Name.ForceValue())
	assert.True(t, back.Count.IsNil())
	assert.True(t, seen.Equal(back.Seen.ForceValue()))
}

func TestScanAndValue(t *testing.T) {
	var s String
	require.NoError(t, s.Scan("x"))
	assert.Equal(t, "x", *s.Ptr())

	require.NoError(t, s.Scan(nil))
	assert.True(t, s.IsNil())
	assert.Nil(t, s.Ptr())
	assert.Equal(t, "", s.ForceValue())

	v, err := Of(int64(4)).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)
	v, err = Int{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
