package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExclusiveRelation(t *testing.T) {
	w := newTestWorld(t)
	targeting := DefineRelation(RelationName("targeting"), RelationExclusive())
	t1, _ := AddEntity(w)
	t2, _ := AddEntity(w)
	e, _ := AddEntity(w)

	_ = AddComponent(w, e, targeting.To(t1))
	_ = AddComponent(w, e, targeting.To(t2))
	assert.False(t, HasComponent(w, e, targeting.To(t1)))
	assert.True(t, HasComponent(w, e, targeting.To(t2)))
	assert.Equal(t, []any{t2}, GetRelationTargets(w, targeting, e))
	assert.False(t, HasComponent(w, e, Wildcard.To(t1)))
	assert.True(t, HasComponent(w, e, Wildcard.To(t2)))
	assert.True(t, HasComponent(w, e, targeting.To(Wildcard)))
}

func TestPairMemo(t *testing.T) {
	likes := DefineRelation(RelationName("likes"))
	assert.Same(t, likes.To(1), likes.To(Entity(1)))
	assert.Same(t, likes.To("*"), likes.To(Wildcard))
	assert.NotSame(t, likes.To(1), likes.To(2))
	assert.Equal(t, "likes(1)", likes.To(1).Name())
	assert.Equal(t, "likes(*)", likes.To(Wildcard).Name())
	assert.Same(t, likes, likes.To(3).Relation())
	assert.Equal(t, Entity(3), likes.To(3).Target())

	_, err := Pair(nil, 1)
	assert.Equal(t, EcNilRelation, err.Code())
	_, err = Pair(likes, nil)
	assert.Equal(t, EcNilTarget, err.Code())
	_, err = Pair(likes, -1)
	assert.Equal(t, EcWrongTarget, err.Code())
	_, err = Pair(likes, 1.5)
	assert.Equal(t, EcWrongTarget, err.Code())
	c, err := Pair(likes, "apples")
	assert.Nil(t, err)
	assert.Same(t, c, likes.To("apples"))
	assert.Panics(t, func() {
		likes.To(nil)
	})
}

func TestWildcardShadow(t *testing.T) {
	w := newTestWorld(t)
	likes := DefineRelation()
	eats := DefineRelation()
	a, _ := AddEntity(w)
	b, _ := AddEntity(w)
	e, _ := AddEntity(w, likes.To(a), likes.To(b), eats.To(b))

	assert.ElementsMatch(t, []Entity{e}, QueryTerms(w, Wildcard.To(b)))
	assert.ElementsMatch(t, []Entity{e}, QueryTerms(w, likes.To("*")))
	assert.ElementsMatch(t, []any{a, b}, GetRelationTargets(w, likes, e))

	_ = RemoveComponent(w, e, likes.To(a))
	assert.False(t, HasComponent(w, e, Wildcard.To(a)))
	assert.True(t, HasComponent(w, e, likes.To(Wildcard)))

	// eats(b)还在, Pair(*,b)保留
	_ = RemoveComponent(w, e, likes.To(b))
	assert.True(t, HasComponent(w, e, Wildcard.To(b)))
	assert.False(t, HasComponent(w, e, likes.To(Wildcard)))
	assert.Empty(t, GetRelationTargets(w, likes, e))
}

func TestChildOfCascade(t *testing.T) {
	w := newTestWorld(t)
	parent, _ := AddEntity(w)
	child, _ := AddEntity(w, ChildOf.To(parent))
	grandchild, _ := AddEntity(w, ChildOf.To(child))
	other, _ := AddEntity(w)

	RemoveEntity(w, parent)
	assert.False(t, EntityExists(w, parent))
	assert.False(t, EntityExists(w, child))
	assert.False(t, EntityExists(w, grandchild))
	assert.True(t, EntityExists(w, other))
	assert.ElementsMatch(t, []Entity{parent, child, grandchild}, GetRecycledEntities(w))
	_, ok := w.targetQueries[parent]
	assert.False(t, ok)
}

func TestRelationCycle(t *testing.T) {
	w := newTestWorld(t)
	a, _ := AddEntity(w)
	b, _ := AddEntity(w, ChildOf.To(a))
	_ = AddComponent(w, a, ChildOf.To(b))

	assert.NotPanics(t, func() {
		RemoveEntity(w, a)
	})
	assert.False(t, EntityExists(w, a))
	assert.False(t, EntityExists(w, b))
}

func TestOnTargetRemoved(t *testing.T) {
	w := newTestWorld(t)
	type edge struct {
		subject, target Entity
	}
	var edges []edge
	follows := DefineRelation(RelationOnTargetRemoved(func(w *World, subject, target Entity) {
		edges = append(edges, edge{subject, target})
	}))
	leader, _ := AddEntity(w)
	follower, _ := AddEntity(w, follows.To(leader))

	RemoveEntity(w, leader)
	assert.True(t, EntityExists(w, follower))
	assert.False(t, HasComponent(w, follower, follows.To(leader)))
	assert.False(t, HasComponent(w, follower, follows.To(Wildcard)))
	assert.Equal(t, []edge{{follower, leader}}, edges)
}

func TestGetChildren(t *testing.T) {
	w := newTestWorld(t)
	marked := NewComponent()
	parent, _ := AddEntity(w)
	c1, _ := AddEntity(w, ChildOf.To(parent))
	c2, _ := AddEntity(w, ChildOf.To(parent), marked)
	gc, _ := AddEntity(w, ChildOf.To(c1), marked)

	assert.ElementsMatch(t, []Entity{c1, c2}, GetChildren(w, parent))
	assert.ElementsMatch(t, []Entity{c1, c2, gc}, GetChildren(w, parent, ChildDeep()))
	assert.Equal(t, []Entity{c2}, GetChildren(w, parent, ChildTerms(marked)))
	assert.Empty(t, GetChildren(w, gc))

	p, ok := GetParent(w, gc)
	assert.True(t, ok)
	assert.Equal(t, c1, p)
	_, ok = GetParent(w, parent)
	assert.False(t, ok)

	child, ok := GetChild(w, c1)
	assert.True(t, ok)
	assert.Equal(t, gc, child)
	_, ok = GetChild(w, c2)
	assert.False(t, ok)
}

type amountStore struct {
	amount []int
}

func TestRelationStore(t *testing.T) {
	w := newTestWorld(t)
	var resets int
	contains := DefineRelation(
		RelationStore(func() any {
			return &amountStore{amount: make([]int, 16)}
		}),
		RelationOnSet(func(w *World, store any, eid Entity, params any) {
			n, _ := DecodeParams[int](params)
			store.(*amountStore).amount[eid] = n
		}),
		RelationOnReset(func(w *World, store any, eid Entity) {
			store.(*amountStore).amount[eid] = 0
			resets++
		}),
	)
	gold, _ := AddEntity(w)
	silver, _ := AddEntity(w)
	bag, _ := AddEntity(w, WithParams(contains.To(gold), 5), WithParams(contains.To(silver), 2))

	goldStore, _ := StoreOf[*amountStore](w, contains.To(gold))
	silverStore, _ := StoreOf[*amountStore](w, contains.To(silver))
	assert.NotSame(t, goldStore, silverStore)
	assert.Equal(t, 5, goldStore.amount[bag])
	assert.Equal(t, 2, silverStore.amount[bag])

	_ = RemoveComponent(w, bag, contains.To(gold))
	assert.Equal(t, 0, goldStore.amount[bag])
	assert.Equal(t, 1, resets)

	_, ok := StoreOf[*amountStore](w, contains.To(Wildcard))
	assert.False(t, ok)
}

func TestChildQueriesDropped(t *testing.T) {
	w := newTestWorld(t)
	count := w.queries.Count()
	e, _ := AddEntity(w)
	assert.Empty(t, GetChildren(w, e))
	assert.Len(t, w.targetQueries[e], 1)

	RemoveEntity(w, e)
	_, ok := w.targetQueries[e]
	assert.False(t, ok)
	assert.Equal(t, count, w.queries.Count())
}
