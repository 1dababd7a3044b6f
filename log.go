package kecs

import (
	"runtime"
	"strconv"

	"github.com/15mga/kecs/util"
)

// ILogger 日志
type ILogger interface {
	// Log 记录日志
	Log(level TLevel, msg, caller string, stack []byte, params util.M)
}

var (
	TestLevels = []TLevel{TDebug, TInfo, TWarn, TError, TFatal}
	DevLevels  = []TLevel{TInfo, TWarn, TError, TFatal}
	ProdLevels = []TLevel{TWarn, TError, TFatal}
)

type TLevel = int64

func StrToLevel(l string) TLevel {
	switch l {
	case SDebug:
		return TDebug
	case SInfo:
		return TInfo
	case SWarn:
		return TWarn
	case SError:
		return TError
	case SFatal:
		return TFatal
	default:
		return TInfo
	}
}

func LevelToStr(l TLevel) string {
	switch l {
	case TDebug:
		return SDebug
	case TInfo:
		return SInfo
	case TWarn:
		return SWarn
	case TError:
		return SError
	case TFatal:
		return SFatal
	default:
		return SInfo
	}
}

const (
	TDebug TLevel = 1 << iota
	TInfo
	TWarn
	TError
	TFatal
)

const (
	SDebug = "debug"
	SInfo  = "info"
	SWarn  = "warn"
	SError = "error"
	SFatal = "fatal"
)

const (
	DefTimeFormatter = "2006-01-02 15:04:05.999"
)

func StrLvlToMask(levels ...string) TLevel {
	slc := make([]TLevel, 0, len(levels))
	for _, level := range levels {
		slc = append(slc, StrToLevel(level))
	}
	return util.GenMask(slc...)
}

func LvlToMask(levels ...TLevel) TLevel {
	return util.GenMask(levels...)
}

var (
	_LogDefParams    = util.M{}
	_LogDefParamsLen int
)

func SetLogDefParams(params util.M) {
	for k, v := range params {
		_LogDefParams[k] = v
	}
	_LogDefParamsLen = len(_LogDefParams)
}

func copyLogParams(params util.M) {
	for k, v := range _LogDefParams {
		params[k] = v
	}
}

const (
	_CallerSkip = 2
)

var (
	_Loggers []ILogger
)

func AddLogger(logger ILogger) {
	_Loggers = append(_Loggers, logger)
}

// ResetLoggers 测试用, 同时清空默认参数
func ResetLoggers() {
	_Loggers = nil
	_LogDefParams = util.M{}
	_LogDefParamsLen = 0
}

func log(level TLevel, msg string, stack []byte, params util.M) {
	if len(_Loggers) == 0 {
		return
	}
	var caller string
	for _, l := range _Loggers {
		if params == nil && _LogDefParamsLen > 0 {
			params = make(util.M, _LogDefParamsLen)
		}
		copyLogParams(params)
		if caller == "" {
			caller = GetCaller(_CallerSkip + 1)
		}
		l.Log(level, msg, caller, stack, params)
	}
}

func Debug(str string, params util.M) {
	log(TDebug, str, nil, params)
}

func Info(str string, params util.M) {
	log(TInfo, str, nil, params)
}

func Warn(err *util.Err) {
	if err == nil {
		return
	}
	log(TWarn, err.String(), err.Stack(), err.Params())
}

func Warn2(code util.TErrCode, m util.M) {
	err := util.NewErr(code, m)
	log(TWarn, err.String(), err.Stack(), err.Params())
}

func Error(err *util.Err) {
	if err == nil {
		return
	}
	log(TError, err.String(), err.Stack(), err.Params())
}

func Error2(code util.TErrCode, m util.M) {
	err := util.NewErr(code, m)
	log(TError, err.String(), err.Stack(), err.Params())
}

func GetCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	str := util.LogTrim(file) + ":" + strconv.Itoa(line)
	return str
}
