package util

import (
	"os"
	"path/filepath"
)

var (
	_ExeDir string
)

// WorkDir 程序执行目录
func WorkDir() string {
	if _ExeDir != "" {
		return _ExeDir
	}
	p, err := os.Executable()
	if err != nil {
		panic(err)
	}
	_ExeDir = filepath.ToSlash(filepath.Dir(p))
	return _ExeDir
}
