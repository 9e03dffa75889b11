package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ieg-tools/projcodes/domain"
)

func TestResultRegistry_Evicts(t *testing.T) {
	r := NewResultRegistry(2)

	assert.Equal(t, "a", r.Put(&domain.QueryResult{ID: "a"}))
	r.Put(&domain.CountResult{ID: "b"})
	r.Put(&domain.DominantResult{ID: "c"})

	assert.Equal(t, 2, r.Len())
	_, ok := r.Get("a")
	assert.False(t, ok)
	res, ok := r.Get("c")
	assert.True(t, ok)
	assert.IsType(t, &domain.DominantResult{}, res)
}

func TestResultRegistry_IgnoresResultsWithoutID(t *testing.T) {
	r := NewResultRegistry(0)
	var typedNil *domain.QueryResult

	assert.Empty(t, r.Put(typedNil))
	assert.Empty(t, r.Put(&domain.QueryResult{}))
	assert.Equal(t, 0, r.Len())
}

func TestArguments(t *testing.T) {
	args := map[string]interface{}{
		"codes":  []interface{}{"WX", float64(331)},
		"single": "P1",
		"min":    float64(5),
		"levels": []interface{}{float64(1), "2"},
		"flag":   true,
	}

	assert.Equal(t, []string{"WX", "331"}, stringSliceArg(args, "codes"))
	assert.Equal(t, []string{"P1"}, stringSliceArg(args, "single"))
	assert.Nil(t, stringSliceArg(args, "absent"))
	assert.Equal(t, 5, intArg(args, "min", 1))
	assert.Equal(t, 1, intArg(args, "absent", 1))
	assert.Nil(t, optionalIntArg(args, "absent"))
	assert.Equal(t, []int{1, 2}, intSliceArg(args, "levels"))
	assert.True(t, boolArg(args, "flag", false))
	assert.Equal(t, "sector", stringArg(args, "scheme", "sector"))
}
