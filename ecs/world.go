package ecs

import (
	"sync"

	"github.com/orcaman/concurrent-map/v2"

	"github.com/15mga/kecs"
	"github.com/15mga/kecs/ds"
	"github.com/15mga/kecs/sid"
	"github.com/15mga/kecs/util"
)

const (
	DefEntityCap = 1024
)

var (
	_QueryMtx sync.RWMutex
	_Queries  []*Query
	_Worlds   = cmap.NewWithCustomShardingFunction[int64, *World](func(key int64) uint32 {
		return uint32(key) ^ uint32(key>>32)
	})
)

type (
	worldOption struct {
		data      util.M
		entityCap int
	}
	WorldOption func(o *worldOption)
)

// WorldData 调用方的上下文数据, 引擎不读取
func WorldData(data util.M) WorldOption {
	return func(o *worldOption) {
		o.data = data
	}
}

func WorldEntityCap(c int) WorldOption {
	return func(o *worldOption) {
		o.entityCap = c
	}
}

func WorldConf(conf *Conf) WorldOption {
	return func(o *worldOption) {
		if conf == nil {
			return
		}
		if conf.EntityCap > 0 {
			o.entityCap = conf.EntityCap
		}
		if conf.Data != nil {
			if o.data == nil {
				o.data = util.M{}
			}
			conf.Data.CopyTo(o.data)
		}
	}
}

type World struct {
	id               int64
	data             util.M
	deleted          bool
	entityCap        int
	entities         *entityIndex
	masks            *maskStore
	bitflag          uint32
	componentMap     map[*Component]*componentInstance
	components       []*Component
	queryDataMap     map[*Query]*queryData
	queries          *ds.KSet[*queryData, *queryData]
	notQueries       *ds.KSet[*queryData, *queryData]
	queriesHashMap   map[string]*queryData
	hashToUncached   map[string]*queryMask
	dirtyQueries     map[*queryData]struct{}
	entityComponents map[Entity]*ds.KSet[*Component, *Component]
	relationTargets  map[Entity]struct{}
	targetQueries    map[Entity][]*Query
	eidToPrefab      map[Entity]*Prefab
}

// CreateWorld 创建并注册所有已定义的全局查询
func CreateWorld(opts ...WorldOption) *World {
	o := &worldOption{
		entityCap: DefEntityCap,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.data == nil {
		o.data = util.M{}
	}
	w := &World{
		id:        sid.GetId(),
		data:      o.data,
		entityCap: o.entityCap,
	}
	w.init()
	_Worlds.Set(w.id, w)
	kecs.Debug("create world", util.M{
		"world":      w.id,
		"entity cap": w.entityCap,
	})
	return w
}

func (w *World) init() {
	w.entities = newEntityIndex(w.entityCap)
	w.masks = newMaskStore(w.entityCap)
	w.bitflag = 1
	w.componentMap = make(map[*Component]*componentInstance)
	w.components = nil
	w.queryDataMap = make(map[*Query]*queryData)
	w.queries = newQuerySet()
	w.notQueries = newQuerySet()
	w.queriesHashMap = make(map[string]*queryData)
	w.hashToUncached = make(map[string]*queryMask)
	w.dirtyQueries = make(map[*queryData]struct{})
	w.entityComponents = make(map[Entity]*ds.KSet[*Component, *Component], w.entityCap)
	w.relationTargets = make(map[Entity]struct{})
	w.targetQueries = make(map[Entity][]*Query)
	w.eidToPrefab = make(map[Entity]*Prefab)
	for _, q := range queryTemplates() {
		w.registerQuery(q)
	}
}

func (w *World) Id() int64 {
	return w.id
}

func (w *World) Data() util.M {
	return w.data
}

func (w *World) Deleted() bool {
	return w.deleted
}

func (w *World) mustAlive() {
	if w == nil || w.deleted {
		var id int64
		if w != nil {
			id = w.id
		}
		panic(util.NewErr(EcWorldDeleted, util.M{
			"world": id,
		}))
	}
}

func (w *World) forgetPrefabs() {
	for eid, p := range w.eidToPrefab {
		p.forget(w, eid)
	}
}

// ResetWorld 清空实体, 组件和查询, 保留id和data
func ResetWorld(w *World) {
	w.mustAlive()
	for _, eid := range w.entities.alive.CopyValues() {
		w.removeEntity(eid, true)
	}
	w.forgetPrefabs()
	w.init()
	kecs.Debug("reset world", util.M{
		"world": w.id,
	})
}

// DeleteWorld 之后对该world的操作都会panic
func DeleteWorld(w *World) {
	w.mustAlive()
	w.forgetPrefabs()
	_Worlds.Remove(w.id)
	w.deleted = true
	w.componentMap = nil
	w.queryDataMap = nil
	w.entityComponents = nil
	w.eidToPrefab = nil
	kecs.Debug("delete world", util.M{
		"world": w.id,
	})
}

func Worlds() []*World {
	items := _Worlds.Items()
	slc := make([]*World, 0, len(items))
	for _, w := range items {
		slc = append(slc, w)
	}
	return slc
}

func GetWorld(id int64) (*World, bool) {
	return _Worlds.Get(id)
}

// ResetGlobals 清空全局查询定义和world列表, 用于测试隔离
func ResetGlobals() {
	_QueryMtx.Lock()
	_Queries = nil
	_QueryMtx.Unlock()
	_Worlds.Clear()
}
