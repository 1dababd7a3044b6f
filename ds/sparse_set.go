package ds

// NewSparseSet 稀疏集合, dense保存成员, sparse保存成员在dense中的下标
func NewSparseSet[T ~uint32](defCap int) *SparseSet[T] {
	if defCap == 0 {
		defCap = 1
	}
	return &SparseSet[T]{
		dense:  make([]T, 0, defCap),
		sparse: make([]int32, defCap),
	}
}

type SparseSet[T ~uint32] struct {
	dense  []T
	sparse []int32
}

func (s *SparseSet[T]) Count() int {
	return len(s.dense)
}

func (s *SparseSet[T]) Has(v T) bool {
	i := int(v)
	if i >= len(s.sparse) {
		return false
	}
	idx := s.sparse[i]
	return int(idx) < len(s.dense) && s.dense[idx] == v
}

func (s *SparseSet[T]) Add(v T) bool {
	if s.Has(v) {
		return false
	}
	s.testGrow(int(v))
	s.sparse[v] = int32(len(s.dense))
	s.dense = append(s.dense, v)
	return true
}

func (s *SparseSet[T]) testGrow(i int) {
	if i < len(s.sparse) {
		return
	}
	c := len(s.sparse) << 1
	for c <= i {
		c <<= 1
	}
	ns := make([]int32, c)
	copy(ns, s.sparse)
	s.sparse = ns
}

// Del 末尾元素移动到被删除的位置, dense顺序不稳定
func (s *SparseSet[T]) Del(v T) bool {
	if !s.Has(v) {
		return false
	}
	idx := s.sparse[v]
	last := len(s.dense) - 1
	tail := s.dense[last]
	s.dense[idx] = tail
	s.sparse[tail] = idx
	s.dense = s.dense[:last]
	return true
}

// Values 直接返回dense, 调用方不可持有
func (s *SparseSet[T]) Values() []T {
	return s.dense
}

func (s *SparseSet[T]) CopyValues() []T {
	slc := make([]T, len(s.dense))
	copy(slc, s.dense)
	return slc
}

func (s *SparseSet[T]) Iter(fn func(T)) {
	for _, v := range s.dense {
		fn(v)
	}
}

// Reset sparse不清理, Has通过dense反查校验
func (s *SparseSet[T]) Reset() {
	s.dense = s.dense[:0]
}
