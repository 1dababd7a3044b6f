package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newHealthComponent() *Component {
	return DefineComponent(
		ComponentName("health"),
		ComponentStore(func() any {
			return make([]int, 64)
		}),
		ComponentOnSet(func(w *World, store any, eid Entity, params any) {
			n, _ := DecodeParams[int](params)
			store.([]int)[eid] = n
		}),
	)
}

func TestPrefabInherit(t *testing.T) {
	w := newTestWorld(t)
	position := newVec2Component()
	health := newHealthComponent()
	animal := DefinePrefab(PrefabName("animal"), PrefabComponents(WithParams(health, 10), position))
	sheep := DefinePrefab(PrefabName("sheep"), PrefabComponents(IsA.To(animal), WithParams(health, 20)))
	assert.Equal(t, []*Prefab{animal, sheep}, sheep.Ancestors())

	e, err := AddEntity(w, IsA.To(sheep))
	assert.Nil(t, err)
	assert.True(t, HasComponent(w, e, position))
	assert.True(t, HasComponent(w, e, health))
	assert.True(t, HasComponent(w, e, IsA.To(sheep)))
	assert.True(t, HasComponent(w, e, IsA.To(animal)))
	assert.True(t, HasComponent(w, e, Wildcard.To(animal)))
	assert.ElementsMatch(t, []any{animal, sheep}, GetRelationTargets(w, IsA, e))

	store, _ := StoreOf[[]int](w, health)
	// 越具体的prefab参数优先
	assert.Equal(t, 20, store[e])

	// 直接传入的参数优先, 与顺序无关
	e1, _ := AddEntity(w, WithParams(health, 30), IsA.To(sheep))
	assert.Equal(t, 30, store[e1])
	e2, _ := AddEntity(w, IsA.To(sheep), WithParams(health, 40))
	assert.Equal(t, 40, store[e2])
	e3, _ := AddEntity(w, IsA.To(animal))
	assert.Equal(t, 10, store[e3])
}

func TestPrefabNotQueried(t *testing.T) {
	w := newTestWorld(t)
	position := newVec2Component()
	velocity := NewComponent()
	notVelocity := DefineQuery(Not(velocity))
	withPosition := DefineQuery(position)
	ship := DefinePrefab(PrefabComponents(position))

	pid, err := RegisterPrefab(w, ship)
	assert.Nil(t, err)
	pid2, _ := RegisterPrefab(w, ship)
	assert.Equal(t, pid, pid2)
	assert.True(t, HasComponent(w, pid, PrefabMarker))
	assert.True(t, HasComponent(w, pid, position))

	e, _ := AddEntity(w, IsA.To(ship))
	assert.Equal(t, []Entity{e}, QueryEntities(w, withPosition))
	assert.Equal(t, []Entity{e}, QueryEntities(w, notVelocity))
	assert.Equal(t, []Entity{e}, UncachedQuery(w, position))
	assert.Equal(t, []Entity{pid}, QueryTerms(w, PrefabMarker))
	assert.Equal(t, []Entity{pid}, UncachedQuery(w, PrefabMarker, position))

	eid, ok := GetPrefabEid(w, ship)
	assert.True(t, ok)
	assert.Equal(t, pid, eid)
	p, ok := GetPrefab(w, pid)
	assert.True(t, ok)
	assert.Same(t, ship, p)

	RemoveEntity(w, pid)
	assert.Empty(t, ExitQuery(withPosition)(w))
	_, ok = GetPrefabEid(w, ship)
	assert.False(t, ok)
	_, ok = GetPrefab(w, pid)
	assert.False(t, ok)

	_, err = RegisterPrefab(w, nil)
	assert.Equal(t, EcNilPrefab, err.Code())
}

func TestPrefabHooks(t *testing.T) {
	w := newTestWorld(t)
	var added []any
	var removed []Entity
	animal := DefinePrefab(PrefabOnAdd(func(w *World, eid Entity, params any) {
		added = append(added, params)
	}))
	sheep := DefinePrefab(
		PrefabComponents(IsA.To(animal)),
		PrefabOnAdd(func(w *World, eid Entity, params any) {
			added = append(added, params)
		}),
		PrefabOnRemove(func(w *World, eid Entity) {
			removed = append(removed, eid)
		}),
	)

	e, _ := AddEntity(w, WithParams(IsA.To(sheep), "wool"))
	assert.Equal(t, []any{nil, "wool"}, added)

	_ = AddComponent(w, e, IsA.To(sheep))
	assert.Len(t, added, 2)

	_ = RemoveComponent(w, e, IsA.To(sheep))
	assert.Equal(t, []Entity{e}, removed)
	assert.True(t, HasComponent(w, e, IsA.To(animal)))
	assert.True(t, HasComponent(w, e, IsA.To(Wildcard)))
}

func TestPrefabChildren(t *testing.T) {
	w := newTestWorld(t)
	position := newVec2Component()
	body := DefinePrefab(PrefabName("body"))
	leg := DefinePrefab(PrefabName("leg"), PrefabComponents(ChildOf.To(body), WithParams(position, vec2{1, 0})))
	foot := DefinePrefab(PrefabName("foot"), PrefabComponents(ChildOf.To(leg)))

	e, _ := AddEntity(w, IsA.To(body))
	legs := GetChildren(w, e)
	assert.Len(t, legs, 1)
	assert.True(t, HasComponent(w, legs[0], IsA.To(leg)))
	assert.True(t, HasComponent(w, legs[0], position))
	store, _ := StoreOf[*vec2Store](w, position)
	assert.Equal(t, float32(1), store.X[legs[0]])

	feet := GetChildren(w, legs[0])
	assert.Len(t, feet, 1)
	assert.True(t, HasComponent(w, feet[0], IsA.To(foot)))
	assert.Len(t, GetChildren(w, e, ChildDeep()), 2)

	// 删除父实体级联删除子实体
	RemoveEntity(w, e)
	assert.False(t, EntityExists(w, legs[0]))
	assert.False(t, EntityExists(w, feet[0]))
}

func TestPrefabReAdd(t *testing.T) {
	w := newTestWorld(t)
	added := 0
	ship := DefinePrefab(PrefabName("ship"), PrefabOnAdd(func(w *World, eid Entity, params any) {
		added++
	}))
	_ = DefinePrefab(PrefabName("gun"), PrefabComponents(ChildOf.To(ship)))

	e, _ := AddEntity(w, IsA.To(ship))
	assert.Len(t, GetChildren(w, e), 1)

	// 重复添加不会再生成子实体
	assert.Nil(t, AddComponent(w, e, IsA.To(ship)))
	assert.Nil(t, AddComponents(w, e, IsA.To(ship), IsA.To(ship)))
	assert.Len(t, GetChildren(w, e), 1)
	assert.Equal(t, 1, added)

	e2, _ := AddEntity(w, IsA.To(ship), IsA.To(ship))
	assert.Len(t, GetChildren(w, e2), 1)
}

func TestPrefabAcrossWorlds(t *testing.T) {
	w1 := newTestWorld(t)
	w2 := CreateWorld()
	tag := NewComponent()
	tree := DefinePrefab(PrefabComponents(tag))

	_, _ = AddEntity(w1)
	e1, _ := AddEntity(w1, IsA.To(tree))
	e2, _ := AddEntity(w2, IsA.To(tree))
	p1, _ := GetPrefabEid(w1, tree)
	p2, _ := GetPrefabEid(w2, tree)
	assert.NotEqual(t, p1, p2)
	assert.True(t, HasComponent(w1, e1, tag))
	assert.True(t, HasComponent(w2, e2, tag))

	DeleteWorld(w2)
	_, ok := GetPrefabEid(w2, tree)
	assert.False(t, ok)
	_, ok = GetPrefabEid(w1, tree)
	assert.True(t, ok)
}

func TestPrefabMarkerQuery(t *testing.T) {
	w := newTestWorld(t)
	position := newVec2Component()
	prefabs := DefineQuery(PrefabMarker)
	withPosition := DefineQuery(position)
	ship := DefinePrefab(PrefabComponents(position))

	pid, _ := RegisterPrefab(w, ship)
	assert.Equal(t, []Entity{pid}, QueryEntities(w, prefabs))
	assert.Empty(t, QueryEntities(w, withPosition))

	// 去掉标记后变成普通实体
	assert.Nil(t, RemoveComponent(w, pid, PrefabMarker))
	assert.Empty(t, QueryEntities(w, prefabs))
	assert.Equal(t, []Entity{pid}, QueryEntities(w, withPosition))
}
