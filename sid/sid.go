package sid

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"

	"github.com/15mga/kecs/util"
)

const (
	Snowflake = "snowflake"
)

var (
	_NameToFac = make(map[string]util.ToInt64)
	_Mtx       sync.RWMutex
	_Once      sync.Once
)

func BindIdFac(name string, to util.ToInt64) {
	_Mtx.Lock()
	_NameToFac[name] = to
	_Mtx.Unlock()
}

func GetIdWithName(name string) int64 {
	_Mtx.RLock()
	fac, ok := _NameToFac[name]
	_Mtx.RUnlock()
	if !ok {
		panic("not exist " + name)
	}
	return fac()
}

func GetStrIdWithName(name string) string {
	return hex.EncodeToString(int64ToBytes(GetIdWithName(name)))
}

func SetNodeId(id int64) {
	node, err := snowflake.NewNode(id)
	if err != nil {
		panic(fmt.Sprintf("generate node failed id:%d", id))
	}
	BindIdFac(Snowflake, func() int64 {
		return node.Generate().Int64()
	})
}

// GetId 未调用SetNodeId时使用节点0
func GetId() int64 {
	_Once.Do(func() {
		_Mtx.RLock()
		_, ok := _NameToFac[Snowflake]
		_Mtx.RUnlock()
		if !ok {
			SetNodeId(0)
		}
	})
	return GetIdWithName(Snowflake)
}

func GetStrId() string {
	return hex.EncodeToString(int64ToBytes(GetId()))
}

func int64ToBytes(id int64) []byte {
	return []byte{
		byte(id >> 56),
		byte(id >> 48),
		byte(id >> 40),
		byte(id >> 32),
		byte(id >> 24),
		byte(id >> 16),
		byte(id >> 8),
		byte(id),
	}
}
