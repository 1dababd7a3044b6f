package ds

import (
	"github.com/15mga/kecs/util"
)

// NewKSet 按key去重的有序集合, 删除时末尾元素补位
func NewKSet[KT comparable, VT any](defCap int, getKey func(VT) KT) *KSet[KT, VT] {
	if defCap == 0 {
		defCap = 1
	}
	return &KSet[KT, VT]{
		items:    make([]VT, defCap),
		keyToIdx: make(map[KT]int, defCap),
		cap:      defCap,
		defCap:   defCap,
		getKey:   getKey,
		defVal:   util.Default[VT](),
	}
}

type KSet[KT comparable, VT any] struct {
	items    []VT
	keyToIdx map[KT]int
	count    int
	cap      int
	defCap   int
	getKey   func(VT) KT
	defVal   VT
}

func (s *KSet[KT, VT]) Count() int {
	return s.count
}

func (s *KSet[KT, VT]) Add(item VT) *util.Err {
	key := s.getKey(item)
	_, ok := s.keyToIdx[key]
	if ok {
		return util.NewErr(util.EcExist, util.M{
			"key": key,
		})
	}
	s.add(key, item)
	return nil
}

func (s *KSet[KT, VT]) AddNX(item VT) bool {
	key := s.getKey(item)
	_, ok := s.keyToIdx[key]
	if ok {
		return false
	}
	s.add(key, item)
	return true
}

func (s *KSet[KT, VT]) add(key KT, item VT) {
	s.testGrow()
	s.items[s.count] = item
	s.keyToIdx[key] = s.count
	s.count++
}

func (s *KSet[KT, VT]) testGrow() {
	if s.count+1 < s.cap {
		return
	}
	s.cap, _ = util.NextCap(s.count+2, s.cap, 1024)
	ns := make([]VT, s.cap)
	copy(ns, s.items)
	s.items = ns
}

// testShrink 数量不足一半时减半, 不低于初始容量
func (s *KSet[KT, VT]) testShrink() {
	if s.cap <= s.defCap {
		return
	}
	h := s.cap >> 1
	if s.count > h || h < s.defCap {
		return
	}
	ns := make([]VT, h)
	copy(ns, s.items[:s.count])
	s.items = ns
	s.cap = h
}

func (s *KSet[KT, VT]) Del(k KT) (val VT, exist bool) {
	idx, ok := s.keyToIdx[k]
	if !ok {
		return
	}
	val = s.items[idx]
	exist = true
	delete(s.keyToIdx, k)
	c := s.count - 1
	if idx == c || c == 0 {
		s.items[idx] = s.defVal
	} else {
		tail := s.items[c]
		s.items[idx] = tail
		s.items[c] = s.defVal
		s.keyToIdx[s.getKey(tail)] = idx
	}
	s.count = c
	s.testShrink()
	return
}

func (s *KSet[KT, VT]) Get(key KT) (VT, bool) {
	idx, ok := s.keyToIdx[key]
	if !ok {
		return s.defVal, false
	}
	item := s.items[idx]
	return item, true
}

func (s *KSet[KT, VT]) Has(key KT) bool {
	_, ok := s.keyToIdx[key]
	return ok
}

func (s *KSet[KT, VT]) Iter(fn func(VT)) {
	for i := 0; i < s.count; i++ {
		fn(s.items[i])
	}
}

func (s *KSet[KT, VT]) Any(fn func(VT) bool) bool {
	for i := 0; i < s.count; i++ {
		item := s.items[i]
		if fn(item) {
			return true
		}
	}
	return false
}

func (s *KSet[KT, VT]) Values() []VT {
	return s.items[:s.count]
}

func (s *KSet[KT, VT]) CopyValues(values *[]VT) {
	for _, v := range s.items[:s.count] {
		*values = append(*values, v)
	}
}

