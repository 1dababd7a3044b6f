package ecs

import (
	"strconv"
	"sync"

	"github.com/15mga/kecs/util"
)

type (
	relationOption struct {
		name              string
		store             FnStore
		exclusive         bool
		autoRemoveSubject bool
		onTargetRemoved   FnTargetRemoved
		onSet             FnSet
		onReset           FnReset
	}
	RelationOption func(o *relationOption)
)

func RelationName(name string) RelationOption {
	return func(o *relationOption) {
		o.name = name
	}
}

// RelationStore 每个pair在每个world中各自一份存储
func RelationStore(fn FnStore) RelationOption {
	return func(o *relationOption) {
		o.store = fn
	}
}

// RelationExclusive 主体同一时间只能有一个目标
func RelationExclusive() RelationOption {
	return func(o *relationOption) {
		o.exclusive = true
	}
}

// RelationAutoRemoveSubject 目标删除时同时删除主体
func RelationAutoRemoveSubject() RelationOption {
	return func(o *relationOption) {
		o.autoRemoveSubject = true
	}
}

func RelationOnTargetRemoved(fn FnTargetRemoved) RelationOption {
	return func(o *relationOption) {
		o.onTargetRemoved = fn
	}
}

func RelationOnSet(fn FnSet) RelationOption {
	return func(o *relationOption) {
		o.onSet = fn
	}
}

func RelationOnReset(fn FnReset) RelationOption {
	return func(o *relationOption) {
		o.onReset = fn
	}
}

func DefineRelation(opts ...RelationOption) *Relation {
	o := &relationOption{}
	for _, opt := range opts {
		opt(o)
	}
	return &Relation{
		option: o,
		pairs:  make(map[any]*Component),
	}
}

type Relation struct {
	option *relationOption
	mtx    sync.Mutex
	pairs  map[any]*Component
}

func (r *Relation) Name() string {
	return r.option.name
}

// To 同一target总是返回同一个pair组件, target非法时panic
func (r *Relation) To(target any) *Component {
	c, err := r.pair(target)
	if err != nil {
		panic(err)
	}
	return c
}

func Pair(r *Relation, target any) (*Component, *util.Err) {
	if r == nil {
		return nil, newErr(EcNilRelation, nil)
	}
	return r.pair(target)
}

func (r *Relation) pair(target any) (*Component, *util.Err) {
	t, err := normalizeTarget(target)
	if err != nil {
		return nil, err
	}
	return r.pairOf(t), nil
}

// pairOf target已经规范化
func (r *Relation) pairOf(target any) *Component {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	c, ok := r.pairs[target]
	if ok {
		return c
	}
	c = &Component{
		option: &componentOption{},
		pair: &pairMeta{
			relation: r,
			target:   target,
		},
	}
	// 通配pair只做索引, 没有存储和钩子
	if r != Wildcard && target != any(Wildcard) {
		c.option.store = r.option.store
		c.option.onSet = r.option.onSet
		c.option.onReset = r.option.onReset
	}
	r.pairs[target] = c
	return c
}

func normalizeTarget(target any) (any, *util.Err) {
	switch t := target.(type) {
	case nil:
		return nil, newErr(EcNilTarget, nil)
	case Entity:
		return t, nil
	case int:
		if t < 0 {
			return nil, newErr(EcWrongTarget, util.M{"target": t})
		}
		return Entity(t), nil
	case int64:
		if t < 0 {
			return nil, newErr(EcWrongTarget, util.M{"target": t})
		}
		return Entity(t), nil
	case uint32:
		return Entity(t), nil
	case string:
		if t == "*" {
			return Wildcard, nil
		}
		return t, nil
	case *Prefab:
		if t == nil {
			return nil, newErr(EcNilTarget, nil)
		}
		return t, nil
	case *Relation:
		if t == nil {
			return nil, newErr(EcNilTarget, nil)
		}
		return t, nil
	default:
		return nil, newErr(EcWrongTarget, util.M{
			"target": target,
		})
	}
}

func targetName(target any) string {
	switch t := target.(type) {
	case Entity:
		return strconv.FormatUint(uint64(t), 10)
	case string:
		return t
	case *Prefab:
		return t.Name()
	case *Relation:
		if t == Wildcard {
			return "*"
		}
		return t.Name()
	}
	return ""
}

var (
	Wildcard = DefineRelation(RelationName("*"))
	IsA      = DefineRelation(RelationName("is_a"))
	ChildOf  = DefineRelation(RelationName("child_of"), RelationAutoRemoveSubject())
)

// GetRelationTargets 不包含通配目标
func GetRelationTargets(w *World, r *Relation, eid Entity) []any {
	w.mustAlive()
	set, ok := w.entityComponents[eid]
	if !ok {
		return nil
	}
	var targets []any
	for _, c := range set.Values() {
		if c.pair == nil || c.pair.relation != r || c.pair.target == any(Wildcard) {
			continue
		}
		targets = append(targets, c.pair.target)
	}
	return targets
}

func GetParent(w *World, eid Entity) (Entity, bool) {
	for _, t := range GetRelationTargets(w, ChildOf, eid) {
		if parent, ok := t.(Entity); ok {
			return parent, true
		}
	}
	return 0, false
}

type (
	childOption struct {
		terms []Term
		deep  bool
	}
	ChildOption func(o *childOption)
)

// ChildTerms 子实体额外需要满足的条件
func ChildTerms(terms ...Term) ChildOption {
	return func(o *childOption) {
		o.terms = append(o.terms, terms...)
	}
}

// ChildDeep 递归所有后代, 先子后孙
func ChildDeep() ChildOption {
	return func(o *childOption) {
		o.deep = true
	}
}

func GetChildren(w *World, eid Entity, opts ...ChildOption) []Entity {
	o := &childOption{}
	for _, opt := range opts {
		opt(o)
	}
	if !o.deep {
		return w.children(eid, o.terms)
	}
	visited := map[Entity]struct{}{eid: {}}
	var result []Entity
	queue := []Entity{eid}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range w.children(parent, o.terms) {
			if _, ok := visited[child]; ok {
				continue
			}
			visited[child] = struct{}{}
			result = append(result, child)
			queue = append(queue, child)
		}
	}
	return result
}

func (w *World) children(eid Entity, terms []Term) []Entity {
	t := make([]Term, 0, len(terms)+1)
	t = append(t, ChildOf.pairOf(eid))
	t = append(t, terms...)
	return QueryTerms(w, t...)
}

func GetChild(w *World, eid Entity, opts ...ChildOption) (Entity, bool) {
	children := GetChildren(w, eid, opts...)
	if len(children) == 0 {
		return 0, false
	}
	return children[0], true
}
