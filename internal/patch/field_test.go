package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type body struct {
	Hours Field[float64] `json:"hours"`
	Owner Field[string]  `json:"owner"`
}

func TestField_Unmarshal(t *testing.T) {
	var b body
	require.NoError(t, json.Unmarshal([]byte(`{"hours": 2.5, "owner": null}`), &b))

	assert.True(t, b.Hours.Set)
	assert.False(t, b.Hours.Null)
	assert.Equal(t, 2.5, b.Hours.Value)
	assert.True(t, b.Owner.Set)
	assert.True(t, b.Owner.Null)

	var empty body
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.False(t, empty.Hours.Set)
	assert.False(t, empty.Owner.Set)

	assert.Error(t, json.Unmarshal([]byte(`{"hours": "muitas"}`), &b))
}

func TestField_Ptr(t *testing.T) {
	cur := "ana"

	assert.Same(t, &cur, Field[string]{}.Ptr(&cur), "absent keeps the current value")
	assert.Nil(t, Null[string]().Ptr(&cur))

	next := Value("bruno").Ptr(&cur)
	require.NotNil(t, next)
	assert.Equal(t, "bruno", *next)
	assert.Equal(t, "ana", cur)
}
