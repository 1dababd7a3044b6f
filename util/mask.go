package util

type Mask interface {
	~int64 | ~uint32 | ~uint64
}

func GenMask[T Mask](items ...T) T {
	var v T
	for _, val := range items {
		v |= val
	}
	return v
}

// TestMask item与mask存在交集
func TestMask[T Mask](item, mask T) bool {
	return (item & mask) != 0
}

// TestAllMask item包含mask的全部位
func TestAllMask[T Mask](item, mask T) bool {
	return (item & mask) == mask
}

func MaskAddItem[T Mask](item, mask T) T {
	return item | mask
}

func MaskDelItem[T Mask](item, mask T) T {
	return ^item & mask
}
