package gridkit_test

import (
	"testing"

	gridkit "github.com/esimov/gridkit/core"
	"github.com/stretchr/testify/assert"
)

func TestDims_IndexColumnMajor(t *testing.T) {
	d := gridkit.Dims{4, 3, 2}

	assert.Equal(t, 24, d.Len())
	assert.Equal(t, [3]int{1, 4, 12}, d.Strides())
	assert.Equal(t, 0, d.Index(0, 0, 0))
	assert.Equal(t, 1, d.Index(1, 0, 0))
	assert.Equal(t, 4, d.Index(0, 1, 0))
	assert.Equal(t, 12, d.Index(0, 0, 1))
	assert.Equal(t, 23, d.Index(3, 2, 1))

	for idx := 0; idx < d.Len(); idx++ {
		ijk := d.Unravel(idx)
		assert.True(t, d.Contains(ijk[0], ijk[1], ijk[2]))
		assert.Equal(t, idx, d.Index(ijk[0], ijk[1], ijk[2]))
	}
	assert.False(t, d.Contains(4, 0, 0))
	assert.False(t, d.Contains(0, -1, 0))
}

func TestDims_CellDims(t *testing.T) {
	for _, tc := range []struct {
		dims, cells gridkit.Dims
	}{
		{gridkit.Dims{4, 3, 2}, gridkit.Dims{3, 2, 1}},
		{gridkit.Dims{4, 3, 1}, gridkit.Dims{3, 2, 1}},
		{gridkit.Dims{1, 1, 1}, gridkit.Dims{1, 1, 1}},
		{gridkit.Dims{2, 1, 5}, gridkit.Dims{1, 1, 4}},
	} {
		assert.Equal(t, tc.cells, tc.dims.CellDims(), "dims %v", tc.dims)
		assert.Equal(t, tc.cells.Len(), tc.dims.NumCells())
	}
}

func TestDims_Valid(t *testing.T) {
	assert.True(t, gridkit.Dims{1, 1, 1}.Valid())
	assert.False(t, gridkit.Dims{0, 1, 1}.Valid())
	assert.False(t, gridkit.Dims{2, 2, -1}.Valid())
	assert.True(t, gridkit.Dims{gridkit.MaxNodes, 1, 1}.Valid())
	assert.False(t, gridkit.Dims{gridkit.MaxNodes, 2, 1}.Valid())
	// The product wraps around to zero on 64 bit platforms.
	assert.False(t, gridkit.Dims{1 << 22, 1 << 22, 1 << 20}.Valid())
	assert.Equal(t, "(2, 3, 4)", gridkit.Dims{2, 3, 4}.String())
}

func TestDims_Layer(t *testing.T) {
	d := gridkit.Dims{3, 2, 2}

	assert.Equal(t, []int{2, 5, 8, 11}, d.Layer(0, 2))
	assert.Equal(t, []int{0, 1, 2, 6, 7, 8}, d.Layer(1, 0))
	assert.Equal(t, []int{6, 7, 8, 9, 10, 11}, d.Layer(2, 1))
}

func TestGather(t *testing.T) {
	d := gridkit.Dims{3, 2, 1}
	values := []int{
		0, 1, 2,
		3, 4, 5,
	}
	got := gridkit.Gather(d, values, 1, [3][]int{{0, 2}, {1}, {0}})
	assert.Equal(t, []int{3, 5}, got)

	pairs := []string{"a0", "a1", "b0", "b1", "c0", "c1", "d0", "d1"}
	got2 := gridkit.Gather(gridkit.Dims{2, 2, 1}, pairs, 2, [3][]int{{1}, {0, 1}, {0}})
	assert.Equal(t, []string{"b0", "b1", "d0", "d1"}, got2)
}
