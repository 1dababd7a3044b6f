package worker

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/15mga/kecs/ecs"
	"github.com/15mga/kecs/util"
)

var (
	_ParallelNum      int
	_JobParallelCount int
)

func init() {
	n := runtime.NumCPU()
	if n < 8 {
		n = 8
	}
	_ParallelNum = n
	_JobParallelCount = _JobUnit * n
}

const (
	_JobUnit = 64
)

func getAvgCount(l int) int {
	if l < _JobParallelCount {
		return _JobUnit
	}
	count := l / _ParallelNum
	if l%_ParallelNum != 0 {
		count++
	}
	return count
}

// P 数据分段并行处理, 第一段在当前协程执行
func P[DT any](data []DT, fn func(DT)) *util.Err {
	return pChunk(data, getAvgCount(len(data)), fn)
}

// Each 每个world一个任务, 同一个world不会被两个协程同时访问
func Each(worlds []*ecs.World, system ecs.System) *util.Err {
	return pChunk[*ecs.World](worlds, 1, system)
}

type pResult struct {
	mtx sync.Mutex
	err *util.Err
}

func (r *pResult) set(err *util.Err) {
	r.mtx.Lock()
	if r.err == nil {
		r.err = err
	}
	r.mtx.Unlock()
}

func pChunk[DT any](data []DT, size int, fn func(DT)) *util.Err {
	l := len(data)
	if l == 0 {
		return nil
	}
	if size <= 0 {
		size = 1
	}
	var (
		wg  sync.WaitGroup
		res pResult
	)
	run := func(slc []DT) {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(*util.Err); ok {
					res.set(err)
					return
				}
				res.set(util.NewErr(util.EcRecover, util.M{
					"error": fmt.Sprint(r),
				}))
			}
		}()
		for _, d := range slc {
			fn(d)
		}
	}
	p := pool()
	for start := size; start < l; start += size {
		end := start + size
		if end > l {
			end = l
		}
		slc := data[start:end]
		wg.Add(1)
		err := p.Submit(func() {
			defer wg.Done()
			run(slc)
		})
		if err != nil {
			wg.Done()
			res.set(util.WrapErr(util.EcFail, err))
			break
		}
	}
	run(data[:util.MinInt(size, l)])
	wg.Wait()
	return res.err
}
