package ecs

import (
	"github.com/15mga/kecs/ds"
	"github.com/15mga/kecs/util"
)

type (
	componentOption struct {
		name       string
		store      FnStore
		onAdd      FnWorldEntity
		onRemove   FnWorldEntity
		onSet      FnSet
		onReset    FnReset
		onRegister FnRegister
	}
	ComponentOption func(o *componentOption)
)

func ComponentName(name string) ComponentOption {
	return func(o *componentOption) {
		o.name = name
	}
}

// ComponentStore 每个world调用一次, 生成该组件在world中的存储
func ComponentStore(fn FnStore) ComponentOption {
	return func(o *componentOption) {
		o.store = fn
	}
}

func ComponentOnAdd(fn FnWorldEntity) ComponentOption {
	return func(o *componentOption) {
		o.onAdd = fn
	}
}

func ComponentOnRemove(fn FnWorldEntity) ComponentOption {
	return func(o *componentOption) {
		o.onRemove = fn
	}
}

func ComponentOnSet(fn FnSet) ComponentOption {
	return func(o *componentOption) {
		o.onSet = fn
	}
}

func ComponentOnReset(fn FnReset) ComponentOption {
	return func(o *componentOption) {
		o.onReset = fn
	}
}

func ComponentOnRegister(fn FnRegister) ComponentOption {
	return func(o *componentOption) {
		o.onRegister = fn
	}
}

// DefineComponent 组件描述, 同一个组件可以注册到多个world
func DefineComponent(opts ...ComponentOption) *Component {
	o := &componentOption{}
	for _, opt := range opts {
		opt(o)
	}
	return &Component{
		option: o,
	}
}

// NewComponent 无存储的标记组件
func NewComponent() *Component {
	return DefineComponent()
}

type Component struct {
	option *componentOption
	pair   *pairMeta
}

type pairMeta struct {
	relation *Relation
	target   any
}

func (c *Component) Name() string {
	if c.option.name != "" || c.pair == nil {
		return c.option.name
	}
	return c.pair.relation.Name() + "(" + targetName(c.pair.target) + ")"
}

func (c *Component) IsPair() bool {
	return c.pair != nil
}

// Relation 非pair组件返回nil
func (c *Component) Relation() *Relation {
	if c.pair == nil {
		return nil
	}
	return c.pair.relation
}

func (c *Component) Target() any {
	if c.pair == nil {
		return nil
	}
	return c.pair.target
}

func (c *Component) isConcretePair() bool {
	return c.pair != nil && c.pair.relation != Wildcard && c.pair.target != any(Wildcard)
}

func (c *Component) newStore() any {
	if c.option.store == nil {
		return c
	}
	return c.option.store()
}

func (c *Component) queryTerm() (*Component, bool) {
	return c, false
}

func (c *Component) argComponent() (*Component, any, bool) {
	return c, nil, false
}

// Arg AddEntity, AddComponents的参数
type Arg interface {
	argComponent() (c *Component, params any, explicit bool)
}

type withParams struct {
	component *Component
	params    any
}

func (p *withParams) argComponent() (*Component, any, bool) {
	return p.component, p.params, true
}

// WithParams 组件附带参数, 添加后传给onSet
func WithParams(c *Component, params any) Arg {
	return &withParams{
		component: c,
		params:    params,
	}
}

func checkArgs(args []Arg) *util.Err {
	for i, arg := range args {
		if arg == nil {
			return newErr(EcNilComponent, util.M{
				"index": i,
			})
		}
		c, _, _ := arg.argComponent()
		if c == nil {
			return newErr(EcNilComponent, util.M{
				"index": i,
			})
		}
	}
	return nil
}

type componentInstance struct {
	id           int
	generationId int
	bitflag      uint32
	ref          *Component
	store        any
	queries      *ds.KSet[*queryData, *queryData]
	notQueries   *ds.KSet[*queryData, *queryData]
}

func newQuerySet() *ds.KSet[*queryData, *queryData] {
	return ds.NewKSet[*queryData, *queryData](4, func(qd *queryData) *queryData {
		return qd
	})
}

func newComponentSet() *ds.KSet[*Component, *Component] {
	return ds.NewKSet[*Component, *Component](8, func(c *Component) *Component {
		return c
	})
}

func RegisterComponent(w *World, c *Component) *util.Err {
	w.mustAlive()
	if c == nil {
		return newErr(EcNilComponent, nil)
	}
	w.registerComponent(c)
	return nil
}

func RegisterComponents(w *World, components ...*Component) *util.Err {
	w.mustAlive()
	for i, c := range components {
		if c == nil {
			return newErr(EcNilComponent, util.M{
				"index": i,
			})
		}
	}
	for _, c := range components {
		w.registerComponent(c)
	}
	return nil
}

func (w *World) registerComponent(c *Component) *componentInstance {
	if ins, ok := w.componentMap[c]; ok {
		return ins
	}
	ins := &componentInstance{
		id:           len(w.components),
		generationId: w.masks.generations() - 1,
		bitflag:      w.bitflag,
		ref:          c,
		store:        c.newStore(),
		queries:      newQuerySet(),
		notQueries:   newQuerySet(),
	}
	for _, qd := range w.queries.Values() {
		if qd.requires(c) {
			ins.queries.AddNX(qd)
		}
		if qd.forbids(c) {
			ins.notQueries.AddNX(qd)
		}
	}
	w.componentMap[c] = ins
	w.components = append(w.components, c)
	w.incrementBitflag()
	if c.option.onRegister != nil {
		c.option.onRegister(w, ins.store)
	}
	return ins
}

func (w *World) incrementBitflag() {
	w.bitflag <<= 1
	if w.bitflag >= _MaxBitflag || w.bitflag == 0 {
		w.bitflag = 1
		w.masks.addGeneration()
	}
}

func HasComponent(w *World, eid Entity, c *Component) bool {
	if c == nil || w.deleted {
		return false
	}
	ins, ok := w.componentMap[c]
	if !ok {
		return false
	}
	return w.masks.has(ins.generationId, eid, ins.bitflag)
}

func AddComponent(w *World, eid Entity, arg Arg) *util.Err {
	return AddComponents(w, eid, arg)
}

// AddComponents 展开prefab继承链, 显式参数覆盖继承参数
func AddComponents(w *World, eid Entity, args ...Arg) *util.Err {
	w.mustAlive()
	err := checkArgs(args)
	if err != nil {
		return err
	}
	if !w.entities.has(eid) {
		return newErr(EcNoEntity, util.M{
			"entity": eid,
		})
	}
	w.addComponents(eid, args)
	return nil
}

type foldedArg struct {
	component *Component
	params    any
	explicit  bool
	direct    bool
}

type foldedPrefab struct {
	prefab   *Prefab
	params   any
	explicit bool
}

func (w *World) addComponents(eid Entity, args []Arg) {
	components := ds.NewKSet[*Component, *foldedArg](len(args)+4, func(a *foldedArg) *Component {
		return a.component
	})
	prefabs := ds.NewKSet[*Prefab, *foldedPrefab](2, func(p *foldedPrefab) *Prefab {
		return p.prefab
	})
	var children []*Prefab
	instanced := make(map[*Prefab]struct{})

	// 参数优先级: 直接传入 > 越具体的prefab > 隐式
	putComponent := func(c *Component, params any, explicit, direct bool) {
		a, ok := components.Get(c)
		if !ok {
			components.Add(&foldedArg{c, params, explicit, direct && explicit})
			return
		}
		if !explicit || (a.direct && !direct) {
			return
		}
		a.params = params
		a.explicit = true
		a.direct = a.direct || direct
	}
	putPrefab := func(p *Prefab, params any, explicit bool) {
		fp, ok := prefabs.Get(p)
		if !ok {
			prefabs.Add(&foldedPrefab{p, params, explicit})
			return
		}
		if explicit {
			fp.params = params
			fp.explicit = true
		}
	}

	for _, arg := range args {
		c, params, explicit := arg.argComponent()
		prefab, ok := isPrefabPair(c)
		if !ok {
			putComponent(c, params, explicit, true)
			continue
		}
		// 祖先从根到自身依次展开, 越具体的显式参数越后写入
		for _, ancestor := range prefab.ancestors {
			if ancestor == prefab {
				putPrefab(ancestor, params, explicit)
			} else {
				putPrefab(ancestor, nil, false)
			}
			for _, pa := range ancestor.components {
				pc, pp, pe := pa.argComponent()
				putComponent(pc, pp, pe, false)
			}
		}
		// 已经拥有IsA(prefab)时不再生成子实体
		if _, ok := instanced[prefab]; ok || HasComponent(w, eid, IsA.pairOf(prefab)) {
			continue
		}
		instanced[prefab] = struct{}{}
		children = append(children, prefab.childList()...)
	}

	for _, a := range components.Values() {
		if !w.addComponentWithShadows(eid, a.component) {
			continue
		}
		w.invokeOnSet(eid, a.component, a.params)
	}
	for _, fp := range prefabs.Values() {
		w.registerPrefab(fp.prefab)
		if !w.addComponentWithShadows(eid, IsA.pairOf(fp.prefab)) {
			continue
		}
		if fp.prefab.option.onAdd != nil {
			fp.prefab.option.onAdd(w, eid, fp.params)
		}
	}
	for _, child := range children {
		w.addEntity(false, []Arg{IsA.pairOf(child), ChildOf.pairOf(eid)})
	}
}

func isPrefabPair(c *Component) (*Prefab, bool) {
	if c.pair == nil || c.pair.relation != IsA {
		return nil, false
	}
	p, ok := c.pair.target.(*Prefab)
	return p, ok
}

func (w *World) invokeOnSet(eid Entity, c *Component, params any) {
	if c.option.onSet == nil {
		return
	}
	ins := w.componentMap[c]
	c.option.onSet(w, ins.store, eid, params)
}

// addComponentWithShadows pair组件先添加Pair(R,*)和Pair(*,target)
func (w *World) addComponentWithShadows(eid Entity, c *Component) bool {
	if c.isConcretePair() {
		w.addComponent(eid, c.pair.relation.pairOf(Wildcard))
		w.addComponent(eid, Wildcard.pairOf(c.pair.target))
	}
	return w.addComponent(eid, c)
}

func (w *World) addComponent(eid Entity, c *Component) bool {
	if HasComponent(w, eid, c) {
		return false
	}
	ins := w.registerComponent(c)
	w.masks.add(ins.generationId, eid, ins.bitflag)
	w.entityComponents[eid].AddNX(c)
	w.reevaluate(ins, eid)

	if c.isConcretePair() {
		rel := c.pair.relation
		if target, ok := c.pair.target.(Entity); ok {
			w.relationTargets[target] = struct{}{}
		}
		if rel.option.exclusive {
			for _, old := range GetRelationTargets(w, rel, eid) {
				if old != c.pair.target {
					w.removeComponent(eid, rel.pairOf(old), true)
				}
			}
		}
	}
	if c.option.onAdd != nil {
		c.option.onAdd(w, eid)
	}
	return true
}

// reevaluate prefab实体只参与包含PrefabMarker的查询
func (w *World) reevaluate(ins *componentInstance, eid Entity) {
	if ins.ref == PrefabMarker {
		w.refreshEntity(eid)
		return
	}
	prefab := w.isPrefabEntity(eid)
	for _, qd := range ins.queries.Values() {
		if prefab && !qd.queriesPrefab {
			continue
		}
		w.queryCheckEntity(qd, eid)
	}
	for _, qd := range ins.notQueries.Values() {
		if prefab && !qd.queriesPrefab {
			continue
		}
		w.queryCheckEntity(qd, eid)
	}
}

// refreshEntity PrefabMarker变化时所有查询重新判断
func (w *World) refreshEntity(eid Entity) {
	prefab := w.isPrefabEntity(eid)
	for _, qd := range w.queries.Values() {
		if prefab && !qd.queriesPrefab {
			w.queryRemoveEntity(qd, eid)
			continue
		}
		w.queryCheckEntity(qd, eid)
	}
}

func (w *World) isPrefabEntity(eid Entity) bool {
	return HasComponent(w, eid, PrefabMarker)
}

func RemoveComponent(w *World, eid Entity, c *Component, reset ...bool) *util.Err {
	w.mustAlive()
	if c == nil {
		return newErr(EcNilComponent, nil)
	}
	if !w.entities.has(eid) {
		return newErr(EcNoEntity, util.M{
			"entity": eid,
		})
	}
	w.removeComponent(eid, c, resetArg(reset))
	return nil
}

func RemoveComponents(w *World, eid Entity, components ...*Component) *util.Err {
	w.mustAlive()
	for i, c := range components {
		if c == nil {
			return newErr(EcNilComponent, util.M{
				"index": i,
			})
		}
	}
	if !w.entities.has(eid) {
		return newErr(EcNoEntity, util.M{
			"entity": eid,
		})
	}
	for _, c := range components {
		w.removeComponent(eid, c, true)
	}
	return nil
}

func (w *World) removeComponent(eid Entity, c *Component, reset bool) {
	if !HasComponent(w, eid, c) {
		return
	}
	ins := w.componentMap[c]
	w.masks.del(ins.generationId, eid, ins.bitflag)
	w.entityComponents[eid].Del(c)
	w.reevaluate(ins, eid)

	if c.isConcretePair() {
		rel, target := c.pair.relation, c.pair.target
		if !w.hasEdgeTo(eid, target) {
			w.removeComponent(eid, Wildcard.pairOf(target), false)
		}
		if len(GetRelationTargets(w, rel, eid)) == 0 {
			w.removeComponent(eid, rel.pairOf(Wildcard), false)
		}
		if p, ok := target.(*Prefab); ok && rel == IsA && reset && p.option.onRemove != nil {
			p.option.onRemove(w, eid)
		}
	}

	if !reset {
		return
	}
	if c.option.onRemove != nil {
		c.option.onRemove(w, eid)
	}
	if c.option.onReset != nil {
		c.option.onReset(w, ins.store, eid)
	}
}

// hasEdgeTo 是否还有任意关系指向target
func (w *World) hasEdgeTo(eid Entity, target any) bool {
	set, ok := w.entityComponents[eid]
	if !ok {
		return false
	}
	return set.Any(func(c *Component) bool {
		return c.isConcretePair() && c.pair.target == target
	})
}

// GetStore 未注册的组件会先注册
func GetStore(w *World, c *Component) any {
	w.mustAlive()
	if c == nil {
		return nil
	}
	return w.registerComponent(c).store
}

func SetStore(w *World, c *Component, store any) *util.Err {
	w.mustAlive()
	if c == nil {
		return newErr(EcNilComponent, nil)
	}
	w.registerComponent(c).store = store
	return nil
}

func StoreOf[T any](w *World, c *Component) (T, bool) {
	s, ok := GetStore(w, c).(T)
	return s, ok
}

// GetWorldComponents 按注册顺序
func GetWorldComponents(w *World) []*Component {
	w.mustAlive()
	slc := make([]*Component, len(w.components))
	copy(slc, w.components)
	return slc
}
