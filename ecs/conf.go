package ecs

import (
	"github.com/15mga/kecs"
	"github.com/15mga/kecs/loader"
	"github.com/15mga/kecs/log"
	"github.com/15mga/kecs/util"
)

type LogConf struct {
	Levels  []string `mapstructure:"levels"`
	File    string   `mapstructure:"file"`
	Color   bool     `mapstructure:"color"`
	Layout  string   `mapstructure:"layout"`
	Disable bool     `mapstructure:"disable"`
	// Params 每条日志都带上的参数
	Params  util.M   `mapstructure:"params"`
}

type Conf struct {
	EntityCap int     `mapstructure:"entity_cap"`
	Data      util.M  `mapstructure:"data"`
	Log       LogConf `mapstructure:"log"`
}

func DefaultConf() *Conf {
	return &Conf{
		EntityCap: DefEntityCap,
		Log: LogConf{
			Color: true,
		},
	}
}

// LoadConf 本地配置文件, 后面的覆盖前面的
func LoadConf(paths ...string) (*Conf, *util.Err) {
	conf := DefaultConf()
	err := loader.LoadConf(conf, loader.ConvertConfLocalPath(paths...)...)
	if err != nil {
		return nil, err
	}
	return conf, nil
}

// ApplyLog 按配置添加标准日志, 未配置级别时使用info及以上
func (c *Conf) ApplyLog() {
	if c.Log.Disable {
		return
	}
	levels := c.Log.Levels
	if len(levels) == 0 {
		levels = []string{kecs.SInfo, kecs.SWarn, kecs.SError, kecs.SFatal}
	}
	opts := []log.StdOption{
		log.StdLogStrLvl(levels...),
		log.StdColor(c.Log.Color),
	}
	if c.Log.File != "" {
		opts = append(opts, log.StdFile(c.Log.File))
	}
	if c.Log.Layout != "" {
		opts = append(opts, log.StdTimeLayout(c.Log.Layout))
	}
	if len(c.Log.Params) > 0 {
		kecs.SetLogDefParams(c.Log.Params)
	}
	kecs.AddLogger(log.NewStd(opts...))
}
