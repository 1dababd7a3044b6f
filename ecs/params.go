package ecs

import (
	"github.com/mitchellh/mapstructure"

	"github.com/15mga/kecs/util"
)

// DecodeParams 钩子参数转换, 支持T, *T以及map
func DecodeParams[T any](params any) (T, *util.Err) {
	var t T
	switch p := params.(type) {
	case nil:
		return t, nil
	case T:
		return p, nil
	case *T:
		if p == nil {
			return t, nil
		}
		return *p, nil
	}
	err := mapstructure.Decode(params, &t)
	if err != nil {
		return t, util.WrapErr(util.EcWrongType, err)
	}
	return t, nil
}
