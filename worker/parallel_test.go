package worker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/15mga/kecs/ecs"
	"github.com/15mga/kecs/util"
)

func TestP(t *testing.T) {
	data := make([]int64, 10000)
	for i := range data {
		data[i] = int64(i)
	}
	var sum int64
	err := P(data, func(v int64) {
		atomic.AddInt64(&sum, v)
	})
	assert.Nil(t, err)
	assert.Equal(t, int64(10000*9999/2), sum)
}

func TestPRecover(t *testing.T) {
	data := make([]int, 200)
	err := P(data, func(v int) {
		panic("boom")
	})
	assert.NotNil(t, err)
	assert.Equal(t, util.EcRecover, err.Code())
}

func TestEach(t *testing.T) {
	t.Cleanup(ecs.ResetGlobals)
	position := ecs.NewComponent()
	worlds := make([]*ecs.World, 4)
	for i := range worlds {
		worlds[i] = ecs.CreateWorld()
	}
	var calls int32
	spawn := ecs.Pipe(
		func(w *ecs.World) {
			for i := 0; i < 100; i++ {
				_, _ = ecs.AddEntity(w, position)
			}
		},
		func(w *ecs.World) {
			atomic.AddInt32(&calls, 1)
		},
	)
	err := Each(worlds, spawn)
	assert.Nil(t, err)
	assert.Equal(t, int32(4), calls)
	for _, w := range worlds {
		assert.Len(t, ecs.QueryTerms(w, position), 100)
	}
}

func TestGo(t *testing.T) {
	ch := make(chan any, 1)
	err := Go(func(params []any) {
		ch <- params[0]
	}, "kecs")
	assert.Nil(t, err)
	assert.Equal(t, "kecs", <-ch)
}
