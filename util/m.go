package util

type (
	M map[string]any
)

func MGet[T any](m M, key string) (T, bool) {
	v, ok := m[key]
	if !ok {
		return Default[T](), false
	}
	v1, ok := v.(T)
	return v1, ok
}

func (m M) CopyTo(n M) {
	for k, v := range m {
		n[k] = v
	}
}
