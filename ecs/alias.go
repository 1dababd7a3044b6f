package ecs

type (
	// Entity 实体id, 删除后经过flush才会被复用
	Entity uint32

	FnWorldEntity   func(w *World, eid Entity)
	FnSet           func(w *World, store any, eid Entity, params any)
	FnReset         func(w *World, store any, eid Entity)
	FnRegister      func(w *World, store any)
	FnTargetRemoved func(w *World, subject Entity, target Entity)
	FnPrefabAdd     func(w *World, eid Entity, params any)
	FnStore         func() any

	// Queue 读取后清空, 无变化时返回空切片
	Queue func(w *World) []Entity
)

var (
	_EmptyEntities = []Entity{}
)
