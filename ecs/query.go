package ecs

import (
	"sort"
	"strconv"
	"strings"

	"github.com/15mga/kecs/ds"
	"github.com/15mga/kecs/util"
)

// Term 查询条件, 组件本身或Not(组件)
type Term interface {
	queryTerm() (c *Component, not bool)
}

type notTerm struct {
	component *Component
}

func (t notTerm) queryTerm() (*Component, bool) {
	return t.component, true
}

// Not 实体不能拥有该组件
func Not(c *Component) Term {
	if c == nil {
		panic(util.NewErr(EcNilComponent, nil))
	}
	return notTerm{c}
}

func checkTerms(terms []Term) {
	for i, t := range terms {
		if t == nil {
			panic(util.NewErr(EcNilComponent, util.M{"index": i}))
		}
		if c, _ := t.queryTerm(); c == nil {
			panic(util.NewErr(EcNilComponent, util.M{"index": i}))
		}
	}
}

type Query struct {
	terms      []Term
	enterCount int
	exitCount  int
	local      bool
}

func (q *Query) Terms() []Term {
	return q.terms
}

// DefineQuery 全局查询, 注册到所有现有和之后创建的world
func DefineQuery(terms ...Term) *Query {
	checkTerms(terms)
	q := &Query{
		terms:      append([]Term(nil), terms...),
		enterCount: 1,
		exitCount:  1,
	}
	_QueryMtx.Lock()
	_Queries = append(_Queries, q)
	_QueryMtx.Unlock()
	for _, w := range Worlds() {
		w.registerQuery(q)
	}
	return q
}

func queryTemplates() []*Query {
	_QueryMtx.RLock()
	defer _QueryMtx.RUnlock()
	slc := make([]*Query, len(_Queries))
	copy(slc, _Queries)
	return slc
}

// queryMask 按代汇总的掩码, masks全部拥有, notMasks一个都不能有
type queryMask struct {
	generations   []int
	masks         []uint32
	notMasks      []uint32
	hasMasks      []uint32
	required      []*componentInstance
	forbidden     []*componentInstance
	queriesPrefab bool
}

func compileTerms(w *World, terms []Term) *queryMask {
	m := &queryMask{}
	gens := w.masks.generations()
	m.masks = make([]uint32, gens)
	m.notMasks = make([]uint32, gens)
	m.hasMasks = make([]uint32, gens)
	used := make([]bool, gens)
	for _, t := range terms {
		c, not := t.queryTerm()
		if c == PrefabMarker {
			m.queriesPrefab = true
		}
		ins := w.registerComponent(c)
		// 注册可能新增一代
		for len(m.masks) < w.masks.generations() {
			m.masks = append(m.masks, 0)
			m.notMasks = append(m.notMasks, 0)
			m.hasMasks = append(m.hasMasks, 0)
			used = append(used, false)
		}
		g := ins.generationId
		if not {
			m.notMasks[g] |= ins.bitflag
			m.forbidden = append(m.forbidden, ins)
		} else {
			m.masks[g] |= ins.bitflag
			m.required = append(m.required, ins)
		}
		m.hasMasks[g] |= ins.bitflag
		used[g] = true
	}
	for g, ok := range used {
		if ok {
			m.generations = append(m.generations, g)
		}
	}
	return m
}

func (m *queryMask) matches(w *World, eid Entity) bool {
	for _, g := range m.generations {
		v := w.masks.get(g, eid)
		if not := m.notMasks[g]; not != 0 && util.TestMask(v, not) {
			return false
		}
		if mask := m.masks[g]; mask != 0 && !util.TestAllMask(v, mask) {
			return false
		}
	}
	return true
}

func (m *queryMask) requires(c *Component) bool {
	for _, ins := range m.required {
		if ins.ref == c {
			return true
		}
	}
	return false
}

func (m *queryMask) forbids(c *Component) bool {
	for _, ins := range m.forbidden {
		if ins.ref == c {
			return true
		}
	}
	return false
}

type queryData struct {
	*queryMask
	query       *Query
	hash        string
	dense       *ds.SparseSet[Entity]
	toRemove    *ds.SparseSet[Entity]
	enterQueues []*ds.SparseSet[Entity]
	exitQueues  []*ds.SparseSet[Entity]
}

func (qd *queryData) enterQueue(idx int) *ds.SparseSet[Entity] {
	for len(qd.enterQueues) <= idx {
		qd.enterQueues = append(qd.enterQueues, ds.NewSparseSet[Entity](0))
	}
	return qd.enterQueues[idx]
}

func (qd *queryData) exitQueue(idx int) *ds.SparseSet[Entity] {
	for len(qd.exitQueues) <= idx {
		qd.exitQueues = append(qd.exitQueues, ds.NewSparseSet[Entity](0))
	}
	return qd.exitQueues[idx]
}

func (w *World) registerQuery(q *Query) *queryData {
	if qd, ok := w.queryDataMap[q]; ok {
		return qd
	}
	hash := ArchetypeHash(w, q.terms...)
	qd := &queryData{
		queryMask: compileTerms(w, q.terms),
		query:     q,
		hash:      hash,
		dense:     ds.NewSparseSet[Entity](w.entityCap),
		toRemove:  ds.NewSparseSet[Entity](0),
	}
	_QueryMtx.RLock()
	enter, exit := q.enterCount, q.exitCount
	_QueryMtx.RUnlock()
	qd.enterQueue(enter - 1)
	qd.exitQueue(exit - 1)

	w.queryDataMap[q] = qd
	w.queries.AddNX(qd)
	old, ok := w.queriesHashMap[hash]
	switch {
	case !ok:
		w.queriesHashMap[hash] = qd
	case !q.local:
		// 全局查询替换同条件的临时查询
		if old.query.local {
			w.removeQuery(old.query)
		}
		w.queriesHashMap[hash] = qd
	}
	for _, ins := range qd.required {
		ins.queries.AddNX(qd)
	}
	for _, ins := range qd.forbidden {
		ins.notQueries.AddNX(qd)
	}
	if len(qd.forbidden) > 0 {
		w.notQueries.AddNX(qd)
	}
	if q.local {
		for _, t := range q.terms {
			c, _ := t.queryTerm()
			if target, ok := c.Target().(Entity); ok {
				w.targetQueries[target] = append(w.targetQueries[target], q)
			}
		}
	}

	for eid := Entity(0); eid < w.entities.cursor; eid++ {
		if !w.entities.has(eid) {
			continue
		}
		if !qd.queriesPrefab && w.isPrefabEntity(eid) {
			continue
		}
		if qd.matches(w, eid) {
			w.queryAddEntity(qd, eid)
		}
	}
	return qd
}

// queryCheckEntity 组件变化后重新判断实体是否满足查询
func (w *World) queryCheckEntity(qd *queryData, eid Entity) {
	pending := qd.toRemove.Del(eid)
	if !qd.matches(w, eid) {
		if pending {
			qd.toRemove.Add(eid)
		}
		w.queryRemoveEntity(qd, eid)
		return
	}
	if qd.dense.Has(eid) && !pending {
		return
	}
	w.queryAddEntity(qd, eid)
}

func (w *World) queryAddEntity(qd *queryData, eid Entity) {
	qd.toRemove.Del(eid)
	for _, s := range qd.enterQueues {
		s.Add(eid)
	}
	for _, s := range qd.exitQueues {
		s.Del(eid)
	}
	qd.dense.Add(eid)
}

// queryRemoveEntity 延迟删除, 下次查询时提交
func (w *World) queryRemoveEntity(qd *queryData, eid Entity) {
	if !qd.dense.Has(eid) || qd.toRemove.Has(eid) {
		return
	}
	qd.toRemove.Add(eid)
	w.dirtyQueries[qd] = struct{}{}
	for _, s := range qd.exitQueues {
		s.Add(eid)
	}
	for _, s := range qd.enterQueues {
		s.Del(eid)
	}
}

// CommitRemovals 提交所有延迟删除
func CommitRemovals(w *World) {
	w.mustAlive()
	w.commitRemovals()
}

func (w *World) commitRemovals() {
	if len(w.dirtyQueries) == 0 {
		return
	}
	for qd := range w.dirtyQueries {
		values := qd.toRemove.Values()
		for i := len(values) - 1; i >= 0; i-- {
			eid := values[i]
			qd.toRemove.Del(eid)
			qd.dense.Del(eid)
		}
		delete(w.dirtyQueries, qd)
	}
}

// QueryEntities 返回满足查询的实体快照
func QueryEntities(w *World, q *Query) []Entity {
	w.mustAlive()
	qd := w.registerQuery(q)
	w.commitRemovals()
	return qd.dense.CopyValues()
}

// QueryTerms 临时查询, 相同条件组合在同一world中复用
func QueryTerms(w *World, terms ...Term) []Entity {
	w.mustAlive()
	checkTerms(terms)
	hash := ArchetypeHash(w, terms...)
	qd, ok := w.queriesHashMap[hash]
	if !ok {
		qd = w.registerQuery(&Query{
			terms:      append([]Term(nil), terms...),
			enterCount: 1,
			exitCount:  1,
			local:      true,
		})
	}
	w.commitRemovals()
	return qd.dense.CopyValues()
}

func QueryQueue(w *World, queue Queue) []Entity {
	return queue(w)
}

// UncachedQuery 不维护结果集, 每次遍历所有实体
func UncachedQuery(w *World, terms ...Term) []Entity {
	w.mustAlive()
	checkTerms(terms)
	hash := ArchetypeHash(w, terms...)
	m, ok := w.hashToUncached[hash]
	if !ok {
		m = compileTerms(w, terms)
		w.hashToUncached[hash] = m
	}
	var result []Entity
	for eid := Entity(0); eid < w.entities.cursor; eid++ {
		if !w.entities.has(eid) {
			continue
		}
		if !m.queriesPrefab && w.isPrefabEntity(eid) {
			continue
		}
		if m.matches(w, eid) {
			result = append(result, eid)
		}
	}
	return result
}

// EnterQuery 默认进入队列
func EnterQuery(q *Query) Queue {
	return q.queue(true, 0)
}

// ExitQuery 默认退出队列
func ExitQuery(q *Query) Queue {
	return q.queue(false, 0)
}

// DefineEnterQueue 独立的进入队列, 多个读者互不影响
func DefineEnterQueue(q *Query) Queue {
	_QueryMtx.Lock()
	idx := q.enterCount
	q.enterCount++
	_QueryMtx.Unlock()
	for _, w := range Worlds() {
		if qd, ok := w.queryDataMap[q]; ok {
			qd.enterQueue(idx)
		}
	}
	return q.queue(true, idx)
}

func DefineExitQueue(q *Query) Queue {
	_QueryMtx.Lock()
	idx := q.exitCount
	q.exitCount++
	_QueryMtx.Unlock()
	for _, w := range Worlds() {
		if qd, ok := w.queryDataMap[q]; ok {
			qd.exitQueue(idx)
		}
	}
	return q.queue(false, idx)
}

func (q *Query) queue(enter bool, idx int) Queue {
	return func(w *World) []Entity {
		w.mustAlive()
		qd := w.registerQuery(q)
		var s *ds.SparseSet[Entity]
		if enter {
			s = qd.enterQueue(idx)
		} else {
			s = qd.exitQueue(idx)
		}
		if s.Count() == 0 {
			return _EmptyEntities
		}
		slc := s.CopyValues()
		s.Reset()
		return slc
	}
}

// RemoveQuery 从world中注销, 全局定义不变, 再次使用时重新注册
func RemoveQuery(w *World, q *Query) {
	w.mustAlive()
	w.removeQuery(q)
}

func (w *World) removeQuery(q *Query) {
	qd, ok := w.queryDataMap[q]
	if !ok {
		return
	}
	delete(w.queryDataMap, q)
	w.queries.Del(qd)
	w.notQueries.Del(qd)
	delete(w.dirtyQueries, qd)
	if w.queriesHashMap[qd.hash] == qd {
		delete(w.queriesHashMap, qd.hash)
	}
	for _, ins := range qd.required {
		ins.queries.Del(qd)
	}
	for _, ins := range qd.forbidden {
		ins.notQueries.Del(qd)
	}
}

// ArchetypeHash 按组件注册id排序, Not条件单独标记
func ArchetypeHash(w *World, terms ...Term) string {
	type item struct {
		id  int
		not bool
	}
	items := make([]item, 0, len(terms))
	for _, t := range terms {
		c, not := t.queryTerm()
		items = append(items, item{w.registerComponent(c).id, not})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].id == items[j].id {
			return !items[i].not && items[j].not
		}
		return items[i].id < items[j].id
	})
	var sb strings.Builder
	for i, it := range items {
		if i > 0 {
			sb.WriteByte('-')
		}
		if it.not {
			sb.WriteString("!")
		}
		sb.WriteString(strconv.Itoa(it.id))
	}
	return sb.String()
}
