package ecs

import (
	"sync"

	"github.com/15mga/kecs/util"
)

// PrefabMarker prefab实体的标记组件, 带标记的实体不进入普通查询
var PrefabMarker = DefineComponent(ComponentName("prefab"))

type (
	prefabOption struct {
		name       string
		components []Arg
		onAdd      FnPrefabAdd
		onRemove   FnWorldEntity
	}
	PrefabOption func(o *prefabOption)
)

func PrefabName(name string) PrefabOption {
	return func(o *prefabOption) {
		o.name = name
	}
}

// PrefabComponents IsA(prefab)声明继承, ChildOf(prefab)声明为该prefab的子模板
func PrefabComponents(args ...Arg) PrefabOption {
	return func(o *prefabOption) {
		o.components = append(o.components, args...)
	}
}

func PrefabOnAdd(fn FnPrefabAdd) PrefabOption {
	return func(o *prefabOption) {
		o.onAdd = fn
	}
}

func PrefabOnRemove(fn FnWorldEntity) PrefabOption {
	return func(o *prefabOption) {
		o.onRemove = fn
	}
}

type Prefab struct {
	option     *prefabOption
	components []Arg
	// 从根到自身, 最后一个是自己
	ancestors  []*Prefab
	mtx        sync.Mutex
	children   []*Prefab
	worldToEid map[*World]Entity
}

func DefinePrefab(opts ...PrefabOption) *Prefab {
	o := &prefabOption{}
	for _, opt := range opts {
		opt(o)
	}
	if err := checkArgs(o.components); err != nil {
		panic(err)
	}
	p := &Prefab{
		option:     o,
		worldToEid: make(map[*World]Entity),
	}
	var parents []*Prefab
	for _, arg := range o.components {
		c, _, _ := arg.argComponent()
		if parent, ok := isPrefabPair(c); ok {
			parents = append(parents, parent)
			continue
		}
		if c.pair != nil && c.pair.relation == ChildOf {
			if parent, ok := c.pair.target.(*Prefab); ok {
				parent.addChild(p)
				continue
			}
		}
		p.components = append(p.components, arg)
	}
	seen := make(map[*Prefab]struct{})
	for _, parent := range parents {
		for _, ancestor := range parent.ancestors {
			if _, ok := seen[ancestor]; ok {
				continue
			}
			seen[ancestor] = struct{}{}
			p.ancestors = append(p.ancestors, ancestor)
		}
	}
	p.ancestors = append(p.ancestors, p)
	return p
}

func (p *Prefab) Name() string {
	return p.option.name
}

func (p *Prefab) Ancestors() []*Prefab {
	return p.ancestors
}

func (p *Prefab) addChild(child *Prefab) {
	p.mtx.Lock()
	p.children = append(p.children, child)
	p.mtx.Unlock()
}

func (p *Prefab) childList() []*Prefab {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	slc := make([]*Prefab, len(p.children))
	copy(slc, p.children)
	return slc
}

func (p *Prefab) forget(w *World, eid Entity) {
	p.mtx.Lock()
	if e, ok := p.worldToEid[w]; ok && e == eid {
		delete(p.worldToEid, w)
	}
	p.mtx.Unlock()
}

// RegisterPrefab 在world中创建prefab实体, 重复调用返回同一个实体
func RegisterPrefab(w *World, p *Prefab) (Entity, *util.Err) {
	w.mustAlive()
	if p == nil {
		return 0, newErr(EcNilPrefab, nil)
	}
	return w.registerPrefab(p), nil
}

func (w *World) registerPrefab(p *Prefab) Entity {
	p.mtx.Lock()
	eid, ok := p.worldToEid[w]
	p.mtx.Unlock()
	if ok && w.entities.has(eid) {
		return eid
	}
	args := make([]Arg, 0, len(p.components)+1)
	args = append(args, PrefabMarker)
	args = append(args, p.components...)
	eid = w.addEntity(true, args)
	p.mtx.Lock()
	p.worldToEid[w] = eid
	p.mtx.Unlock()
	w.eidToPrefab[eid] = p
	return eid
}

func GetPrefabEid(w *World, p *Prefab) (Entity, bool) {
	if p == nil || w.deleted {
		return 0, false
	}
	p.mtx.Lock()
	defer p.mtx.Unlock()
	eid, ok := p.worldToEid[w]
	return eid, ok
}

func GetPrefab(w *World, eid Entity) (*Prefab, bool) {
	w.mustAlive()
	p, ok := w.eidToPrefab[eid]
	return p, ok
}
