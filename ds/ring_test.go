package ds

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/15mga/kecs/util"
)

func TestRingFifo(t *testing.T) {
	r := NewRing[uint32](RingMinCap[uint32](4))
	assert.Nil(t, r.Put(1, 2, 3))
	v, err := r.Pop()
	assert.Nil(t, err)
	assert.Equal(t, uint32(1), v)

	// 跨越末尾写入
	assert.Nil(t, r.Put(4, 5))
	var got []uint32
	for r.Available() > 0 {
		v, _ = r.Pop()
		got = append(got, v)
	}
	assert.Equal(t, []uint32{2, 3, 4, 5}, got)

	_, err = r.Pop()
	assert.Equal(t, util.EcNotEnough, err.Code())
}

func TestRingGrow(t *testing.T) {
	var resized []int
	r := NewRing[int](RingMinCap[int](2), RingResize[int](func(c int) {
		resized = append(resized, c)
	}))
	for i := 0; i < 100; i++ {
		assert.Nil(t, r.Put(i))
	}
	assert.Equal(t, 100, r.Available())
	assert.NotEmpty(t, resized)
	for i := 0; i < 100; i++ {
		v, _ := r.Pop()
		assert.Equal(t, i, v)
	}
}

func TestRingMaxCap(t *testing.T) {
	r := NewRing[int](RingMinCap[int](2), RingMaxCap[int](8))
	err := r.Put(make([]int, 16)...)
	assert.Equal(t, util.EcTooLong, err.Code())
}
