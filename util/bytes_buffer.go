package util

import (
	"sync"
)

const (
	_MinBytesCap = uint32(16)
	_MaxBytesCap = uint32(1 << 20)
)

var (
	_BytesPoolMap map[uint32]*sync.Pool
)

func init() {
	_BytesPoolMap = make(map[uint32]*sync.Pool)
	for i := _MinBytesCap; i <= _MaxBytesCap; i = i << 1 {
		l := i
		_BytesPoolMap[i] = &sync.Pool{
			New: func() any {
				return make([]byte, l)
			},
		}
	}
}

func SpawnBytesWithLen(l uint32) []byte {
	var c uint32
	if l < _MinBytesCap {
		c = _MinBytesCap
	} else {
		c = NextPowerOfTwo(l)
		if c > _MaxBytesCap {
			return make([]byte, l)
		}
	}
	return _BytesPoolMap[c].Get().([]byte)
}

func RecycleBytes(bytes []byte) {
	c := uint32(cap(bytes))
	if c < _MinBytesCap || c > _MaxBytesCap {
		return
	}
	ll := NextPowerOfTwo(c)
	if c < ll {
		c = ll >> 1
	}
	_BytesPoolMap[c].Put(bytes[:c])
}

// ByteBuffer 日志与错误堆栈拼接用的写缓冲
type ByteBuffer struct {
	canRecycle bool
	pos        uint32
	cap        uint32
	bytes      []byte
}

func (b *ByteBuffer) InitCap(c uint32) {
	b.pos = 0
	b.bytes = SpawnBytesWithLen(c)
	b.cap = uint32(len(b.bytes))
	b.canRecycle = true
}

func (b *ByteBuffer) All() []byte {
	return b.bytes[:b.pos]
}

func (b *ByteBuffer) tryGrow(c uint32) {
	if c <= b.cap {
		return
	}
	c = NextPowerOfTwo(c)
	bytes := SpawnBytesWithLen(c)
	copy(bytes, b.bytes[:b.pos])
	if b.canRecycle {
		RecycleBytes(b.bytes)
	}
	b.cap = uint32(len(bytes))
	b.bytes = bytes
	b.canRecycle = true
}

func (b *ByteBuffer) Write(v []byte) (int, error) {
	l := uint32(len(v))
	if l == 0 {
		return 0, nil
	}
	c := b.pos + l
	b.tryGrow(c)
	n := copy(b.bytes[b.pos:], v)
	b.pos = c
	return n, nil
}

func (b *ByteBuffer) WUint8(v uint8) {
	c := b.pos + 1
	b.tryGrow(c)
	b.bytes[b.pos] = v
	b.pos = c
}

func (b *ByteBuffer) WStringNoLen(v string) {
	if len(v) == 0 {
		return
	}
	_, _ = b.Write(StrToBytes(v))
}

func (b *ByteBuffer) Dispose() {
	if !b.canRecycle {
		return
	}
	b.canRecycle = false
	RecycleBytes(b.bytes)
	b.bytes = nil
}
