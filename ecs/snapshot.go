package ecs

import "github.com/15mga/kecs/util"

type ComponentInfo struct {
	Id         int    `json:"id"`
	Name       string `json:"name,omitempty"`
	Generation int    `json:"generation"`
	Bitflag    uint32 `json:"bitflag"`
	Pair       bool   `json:"pair,omitempty"`
}

// Snapshot 只读视图, 存储内容由调用方通过GetStore读取
type Snapshot struct {
	World      int64           `json:"world"`
	Cursor     Entity          `json:"cursor"`
	Components []ComponentInfo `json:"components"`
	Entities   []Entity        `json:"entities"`
	Recycled   []Entity        `json:"recycled"`
	Masks      [][]uint32      `json:"masks"`
}

func TakeSnapshot(w *World) *Snapshot {
	w.mustAlive()
	s := &Snapshot{
		World:    w.id,
		Cursor:   w.entities.cursor,
		Entities: w.entities.alive.CopyValues(),
		Recycled: GetRecycledEntities(w),
		Masks:    w.masks.rows(),
	}
	for _, c := range w.components {
		ins := w.componentMap[c]
		s.Components = append(s.Components, ComponentInfo{
			Id:         ins.id,
			Name:       c.Name(),
			Generation: ins.generationId,
			Bitflag:    ins.bitflag,
			Pair:       c.IsPair(),
		})
	}
	return s
}

func (s *Snapshot) Json() ([]byte, *util.Err) {
	return util.JsonMarshal(s)
}
