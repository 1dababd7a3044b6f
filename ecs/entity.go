package ecs

import (
	"github.com/15mga/kecs/ds"
	"github.com/15mga/kecs/util"
)

func newEntityIndex(defCap int) *entityIndex {
	return &entityIndex{
		alive:      ds.NewSparseSet[Entity](defCap),
		recyclable: ds.NewRing[Entity](),
	}
}

// entityIndex 删除的id先进pending, flush后进入recyclable按先进先出复用
type entityIndex struct {
	alive      *ds.SparseSet[Entity]
	cursor     Entity
	pending    []Entity
	recyclable *ds.Ring[Entity]
}

func (e *entityIndex) allocate() Entity {
	if e.recyclable.Available() > 0 {
		id, _ := e.recyclable.Pop()
		e.alive.Add(id)
		return id
	}
	id := e.cursor
	e.cursor++
	e.alive.Add(id)
	return id
}

func (e *entityIndex) has(id Entity) bool {
	return e.alive.Has(id)
}

func (e *entityIndex) markRemoved(id Entity) bool {
	if !e.alive.Del(id) {
		return false
	}
	e.pending = append(e.pending, id)
	return true
}

func (e *entityIndex) flush() {
	if len(e.pending) == 0 {
		return
	}
	_ = e.recyclable.Put(e.pending...)
	e.pending = e.pending[:0]
}

// AddEntity 创建实体并添加组件, 参数可以是组件, WithParams或者IsA(prefab)
func AddEntity(w *World, args ...Arg) (Entity, *util.Err) {
	w.mustAlive()
	err := checkArgs(args)
	if err != nil {
		return 0, err
	}
	return w.addEntity(false, args), nil
}

func (w *World) addEntity(prefab bool, args []Arg) Entity {
	eid := w.entities.allocate()
	w.entityComponents[eid] = newComponentSet()
	// 只包含Not条件的查询, 空实体也要匹配
	if !prefab {
		for _, qd := range w.notQueries.Values() {
			if qd.matches(w, eid) {
				w.queryAddEntity(qd, eid)
			}
		}
	}
	if len(args) > 0 {
		w.addComponents(eid, args)
	}
	return eid
}

// RemoveEntity reset默认true, 会调用组件的onRemove和onReset
func RemoveEntity(w *World, eid Entity, reset ...bool) {
	w.mustAlive()
	w.removeEntity(eid, resetArg(reset))
}

func resetArg(reset []bool) bool {
	if len(reset) == 0 {
		return true
	}
	return reset[0]
}

func (w *World) removeEntity(eid Entity, reset bool) {
	if !w.entities.has(eid) {
		return
	}
	if _, ok := w.relationTargets[eid]; ok {
		delete(w.relationTargets, eid)
		w.removeRelationsTo(eid, reset)
	}
	// 级联删除时可能已经被移除
	if !w.entities.has(eid) {
		return
	}

	set := w.entityComponents[eid]
	components := make([]*Component, 0, set.Count())
	set.CopyValues(&components)
	isPrefab := set.Has(PrefabMarker)
	for _, c := range components {
		if c == PrefabMarker {
			continue
		}
		w.removeComponent(eid, c, reset)
	}
	if isPrefab {
		// 标记最后去掉, 不再触发重新匹配
		ins := w.componentMap[PrefabMarker]
		w.masks.del(ins.generationId, eid, ins.bitflag)
		set.Del(PrefabMarker)
	}
	for _, qd := range w.queries.Values() {
		w.queryRemoveEntity(qd, eid)
	}
	w.entities.markRemoved(eid)
	delete(w.entityComponents, eid)
	w.masks.clear(eid)
	w.dropTargetQueries(eid)
	if p, ok := w.eidToPrefab[eid]; ok {
		delete(w.eidToPrefab, eid)
		p.forget(w, eid)
	}
}

// removeRelationsTo 删除所有指向target的边
func (w *World) removeRelationsTo(target Entity, reset bool) {
	subjects := QueryTerms(w, Wildcard.pairOf(target))
	for _, subject := range subjects {
		if !w.entities.has(subject) {
			continue
		}
		set := w.entityComponents[subject]
		components := make([]*Component, 0, set.Count())
		set.CopyValues(&components)
		for _, c := range components {
			if !c.IsPair() || c.pair.relation == Wildcard || c.pair.target != any(target) {
				continue
			}
			rel := c.pair.relation
			w.removeComponent(subject, c, reset)
			if rel.option.onTargetRemoved != nil {
				rel.option.onTargetRemoved(w, subject, target)
			}
			if rel.option.autoRemoveSubject {
				w.removeEntity(subject, reset)
				break
			}
		}
	}
}

// dropTargetQueries 注销以该实体为目标的临时查询
func (w *World) dropTargetQueries(target Entity) {
	queries, ok := w.targetQueries[target]
	if !ok {
		return
	}
	delete(w.targetQueries, target)
	for _, q := range queries {
		w.removeQuery(q)
	}
}

func EntityExists(w *World, eid Entity) bool {
	if w.deleted {
		return false
	}
	return w.entities.has(eid)
}

// FlushRemovedEntities pending中的id进入可复用队列
func FlushRemovedEntities(w *World) {
	w.mustAlive()
	w.entities.flush()
}

func GetEntityCursor(w *World) Entity {
	w.mustAlive()
	return w.entities.cursor
}

// GetRecycledEntities 已删除但还未flush的id
func GetRecycledEntities(w *World) []Entity {
	w.mustAlive()
	slc := make([]Entity, len(w.entities.pending))
	copy(slc, w.entities.pending)
	return slc
}

func GetRecyclableCount(w *World) int {
	w.mustAlive()
	return w.entities.recyclable.Available()
}

func GetAllEntities(w *World) []Entity {
	w.mustAlive()
	return w.entities.alive.CopyValues()
}

func GetEntityComponents(w *World, eid Entity) []*Component {
	w.mustAlive()
	set, ok := w.entityComponents[eid]
	if !ok {
		return nil
	}
	components := make([]*Component, 0, set.Count())
	set.CopyValues(&components)
	return components
}
