package worker

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/15mga/kecs"
	"github.com/15mga/kecs/util"
)

var (
	_Pool     *ants.Pool
	_PoolSize = 0
	_PoolMtx  sync.Mutex
)

// SetPoolSize 在第一次使用前设置, 0表示不限制
func SetPoolSize(size int) {
	_PoolMtx.Lock()
	_PoolSize = size
	_PoolMtx.Unlock()
}

func pool() *ants.Pool {
	_PoolMtx.Lock()
	defer _PoolMtx.Unlock()
	if _Pool != nil {
		return _Pool
	}
	size := _PoolSize
	if size <= 0 {
		size = -1
	}
	p, err := ants.NewPool(size, ants.WithPanicHandler(func(r any) {
		kecs.Error2(util.EcRecover, util.M{
			"error": fmt.Sprint(r),
		})
	}))
	if err != nil {
		panic(err)
	}
	_Pool = p
	return p
}

func Go(fn util.FnAnySlc, params ...any) *util.Err {
	err := pool().Submit(func() {
		fn(params)
	})
	if err != nil {
		return util.WrapErr(util.EcFail, err)
	}
	return nil
}

func Running() int {
	return pool().Running()
}

// Release 释放协程池, 之后再使用会重新创建
func Release() {
	_PoolMtx.Lock()
	defer _PoolMtx.Unlock()
	if _Pool == nil {
		return
	}
	_Pool.Release()
	_Pool = nil
}
