package ecs

// System 对单个world执行一次
type System func(w *World)

// Pipe 按顺序执行
func Pipe(systems ...System) System {
	return func(w *World) {
		for _, s := range systems {
			s(w)
		}
	}
}
