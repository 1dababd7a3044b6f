package ecs

import (
	"github.com/15mga/kecs"
	"github.com/15mga/kecs/util"
)

const (
	EcNoEntity util.TErrCode = 61000 + iota
	EcNilComponent
	EcNilRelation
	EcNilTarget
	EcWrongTarget
	EcNilPrefab
	EcWorldDeleted
)

func init() {
	util.SetErrCodeToStr(EcNoEntity, "no_entity")
	util.SetErrCodeToStr(EcNilComponent, "nil_component")
	util.SetErrCodeToStr(EcNilRelation, "nil_relation")
	util.SetErrCodeToStr(EcNilTarget, "nil_target")
	util.SetErrCodeToStr(EcWrongTarget, "wrong_target")
	util.SetErrCodeToStr(EcNilPrefab, "nil_prefab")
	util.SetErrCodeToStr(EcWorldDeleted, "world_deleted")
}

// newErr 前置条件失败, 记录warn后返回
func newErr(code util.TErrCode, params util.M) *util.Err {
	err := util.NewErr(code, params)
	kecs.Warn(err)
	return err
}
