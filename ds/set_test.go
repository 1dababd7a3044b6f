package ds

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	id   int64
	name string
}

func newItemSet(c int) *KSet[int64, *item] {
	return NewKSet[int64, *item](c, func(i *item) int64 {
		return i.id
	})
}

func TestKSet(t *testing.T) {
	s := newItemSet(2)
	for i := int64(0); i < 10; i++ {
		assert.Nil(t, s.Add(&item{id: i}))
	}
	assert.NotNil(t, s.Add(&item{id: 3}))
	assert.False(t, s.AddNX(&item{id: 3}))
	assert.Equal(t, 10, s.Count())

	v, ok := s.Del(0)
	assert.True(t, ok)
	assert.Equal(t, int64(0), v.id)
	// 末尾补位
	assert.Equal(t, int64(9), s.Values()[0].id)
	_, ok = s.Del(0)
	assert.False(t, ok)

	got, ok := s.Get(9)
	assert.True(t, ok)
	assert.Equal(t, int64(9), got.id)
	assert.True(t, s.Has(5))
	assert.True(t, s.Any(func(i *item) bool {
		return i.id == 7
	}))

	for i := int64(1); i < 10; i++ {
		s.Del(i)
	}
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 2, s.cap)
	assert.True(t, s.AddNX(&item{id: 100}))

	var values []*item
	s.CopyValues(&values)
	assert.Len(t, values, 1)
}

func TestKSetIterOrder(t *testing.T) {
	s := newItemSet(4)
	for i := int64(0); i < 5; i++ {
		s.AddNX(&item{id: i})
	}
	var ids []int64
	s.Iter(func(i *item) {
		ids = append(ids, i.id)
	})
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, ids)
}

func BenchmarkKSet(b *testing.B) {
	count := 1024 << 6
	set := newItemSet(count << 2)
	mp := make(map[int64]*item, count)
	items := make([]*item, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, &item{id: int64(i)})
	}
	b.Run("map add", func(b *testing.B) {
		b.ReportAllocs()
		for _, it := range items {
			mp[it.id] = it
		}
	})
	b.Run("set add", func(b *testing.B) {
		b.ReportAllocs()
		for _, it := range items {
			_ = set.Add(it)
		}
	})
	fn := func(*item) {}
	b.Run("map range", func(b *testing.B) {
		b.ReportAllocs()
		for _, it := range mp {
			fn(it)
		}
	})
	b.Run("set range", func(b *testing.B) {
		b.ReportAllocs()
		set.Iter(fn)
	})
	delIds := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		delIds = append(delIds, items[rand.Intn(count)].id)
	}
	b.Run("map del", func(b *testing.B) {
		b.ReportAllocs()
		for _, id := range delIds {
			delete(mp, id)
		}
	})
	b.Run("set del", func(b *testing.B) {
		b.ReportAllocs()
		for _, id := range delIds {
			set.Del(id)
		}
	})
}
