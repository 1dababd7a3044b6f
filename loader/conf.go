package loader

import (
	"path"
	"strings"

	"github.com/spf13/viper"

	"github.com/15mga/kecs"
	"github.com/15mga/kecs/util"
)

const (
	ConfLocalLoader = "local"
	ConfPathSep     = "|"
)

type ConfLoader func(path string, v *viper.Viper) *util.Err

var (
	_TypeToLoader   = make(map[string]ConfLoader)
	_ConfPathParser = func(path string) (string, string, *util.Err) {
		ss := strings.Split(path, ConfPathSep)
		if len(ss) != 2 {
			return "", "", util.NewErr(util.EcParamsErr, util.M{
				"path": path,
			})
		}
		return ss[0], ss[1], nil
	}
	_ConfRoot string
)

func init() {
	SetConfLoader(ConfLocalLoader, confLocalLoader)
}

func SetConfRoot(p string) {
	_ConfRoot = p
}

func confRoot() string {
	if _ConfRoot == "" {
		_ConfRoot = util.WorkDir()
	}
	return _ConfRoot
}

func SetConfPathParser(parser util.StrToStr2Err) {
	_ConfPathParser = parser
}

// LoadConf 按顺序加载配置, 后加载的覆盖先加载的, 最后反序列化到conf
func LoadConf(conf any, paths ...string) *util.Err {
	l := len(paths)
	if l == 0 {
		return util.NewErr(util.EcParamsErr, util.M{
			"error": "paths empty",
		})
	}
	vpr := viper.New()
	vpr.SetConfigType("yaml")
	for i := 0; i < l; i++ {
		p := paths[i]
		loaderType, filePath, err := _ConfPathParser(p)
		if err != nil {
			kecs.Warn(err)
			continue
		}
		loader, ok := _TypeToLoader[loaderType]
		if !ok {
			kecs.Warn2(util.EcNotExist, util.M{
				"loader type": loaderType,
			})
			continue
		}
		err = loader(filePath, vpr)
		if err != nil {
			kecs.Warn(err)
			continue
		}
		if i < l-1 {
			for k, v := range vpr.AllSettings() {
				vpr.SetDefault(k, v)
			}
		}
	}
	e := vpr.Unmarshal(conf)
	if e != nil {
		return util.WrapErr(util.EcUnmarshallErr, e)
	}
	return nil
}

func SetConfLoader(typ string, loader ConfLoader) {
	_TypeToLoader[typ] = loader
}

func GetConfLoader(typ string) ConfLoader {
	return _TypeToLoader[typ]
}

func confLocalLoader(p string, v *viper.Viper) *util.Err {
	if !path.IsAbs(p) {
		p = path.Join(confRoot(), p)
	}
	ext := path.Ext(p)
	if ext == "" {
		return util.NewErr(util.EcParamsErr, util.M{
			"error": "missing extension",
			"path":  p,
		})
	}
	ext = ext[1:]
	switch ext {
	case "yml":
		ext = "yaml"
	}
	v.SetConfigFile(p)
	v.SetConfigType(ext)
	err := v.ReadInConfig()
	if err != nil {
		return util.NewErr(util.EcParamsErr, util.M{
			"error": err.Error(),
			"path":  p,
		})
	}
	return nil
}

func ConvertConfLocalPath(paths ...string) []string {
	for i, p := range paths {
		paths[i] = ConfLocalLoader + ConfPathSep + p
	}
	return paths
}
