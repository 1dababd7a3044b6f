package util

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func NextPowerOfTwo[T ~int | ~uint32](v T) T {
	v -= 1
	v |= v >> 16
	v |= v >> 8
	v |= v >> 4
	v |= v >> 2
	v |= v >> 1
	return v + 1
}

// NextCap slow以下按2的幂扩容, 之后按slow步长线性扩容
func NextCap(required, current, slow int) (int, bool) {
	if required <= current {
		return current, false
	}
	if current < slow {
		return NextPowerOfTwo(required), true
	}
	for current < required {
		current += slow
	}
	return current, true
}
