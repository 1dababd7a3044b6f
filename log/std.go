package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/15mga/kecs"
	"github.com/15mga/kecs/util"
)

const (
	_SDebug = "[D]"
	_SInfo  = "[I]"
	_SWarn  = "[W]"
	_SError = "[E]"
	_SFatal = "[F]"
)

const (
	ColorRed      = "\033[31m"
	ColorGreen    = "\033[32m"
	ColorYellow   = "\033[33m"
	ColorHiRed    = "\033[91m"
	ColorHiGreen  = "\033[92m"
	ColorHiYellow = "\033[93m"
	ColorHiPurple = "\033[95m"
	ColorHiWhite  = "\033[97m"
	ColorReset    = "\033[0m"
)

func LogLvlToStr(l kecs.TLevel) string {
	switch l {
	case kecs.TDebug:
		return _SDebug
	case kecs.TInfo:
		return _SInfo
	case kecs.TWarn:
		return _SWarn
	case kecs.TError:
		return _SError
	case kecs.TFatal:
		return _SFatal
	default:
		return ""
	}
}

type (
	stdOption struct {
		logLvl     kecs.TLevel
		timeLayout string
		color      bool
		writer     io.Writer
	}
	StdOption func(opt *stdOption)
)

func StdLogLvl(levels ...kecs.TLevel) StdOption {
	return func(opt *stdOption) {
		opt.logLvl = kecs.LvlToMask(levels...)
	}
}

func StdLogStrLvl(levels ...string) StdOption {
	return func(opt *stdOption) {
		opt.logLvl = kecs.StrLvlToMask(levels...)
	}
}

func StdTimeLayout(layout string) StdOption {
	return func(opt *stdOption) {
		opt.timeLayout = layout
	}
}

func StdWriter(writer io.Writer) StdOption {
	return func(opt *stdOption) {
		opt.writer = writer
	}
}

func StdColor(color bool) StdOption {
	return func(opt *stdOption) {
		opt.color = color
	}
}

func StdFile(file string) StdOption {
	fmt.Println("log:", file)
	return func(opt *stdOption) {
		opt.writer = &lumberjack.Logger{
			Filename: file,
			MaxAge:   30,   //days
			Compress: true, // disabled by default
		}
	}
}

func NewStd(opts ...StdOption) *stdLogger {
	opt := &stdOption{
		logLvl:     kecs.LvlToMask(kecs.TestLevels...),
		timeLayout: kecs.DefTimeFormatter,
		color:      true,
		writer:     os.Stdout,
	}
	for _, o := range opts {
		o(opt)
	}
	f := &stdLogger{
		option: opt,
	}
	f.headLogDebug = _SDebug
	f.headLogInfo = _SInfo
	f.headLogWarn = _SWarn
	f.headLogError = _SError
	f.headLogFatal = _SFatal
	f.tail = "\n"
	if opt.color {
		f.headLogDebug = ColorHiWhite + f.headLogDebug
		f.headLogInfo = ColorHiGreen + f.headLogInfo
		f.headLogWarn = ColorHiYellow + f.headLogWarn
		f.headLogError = ColorHiRed + f.headLogError
		f.headLogFatal = ColorHiPurple + f.headLogFatal
		f.tail = ColorReset + f.tail
	}

	return f
}

type stdLogger struct {
	option       *stdOption
	headLogDebug string
	headLogInfo  string
	headLogWarn  string
	headLogError string
	headLogFatal string
	tail         string
}

func (l *stdLogger) getTimestamp() string {
	return time.Now().Format(l.option.timeLayout)
}

func (l *stdLogger) Log(level kecs.TLevel, msg, caller string, stack []byte, params util.M) {
	if !util.TestMask(level, l.option.logLvl) {
		return
	}
	var buffer util.ByteBuffer
	if stack == nil {
		buffer.InitCap(512)
	} else {
		buffer.InitCap(1024)
	}
	switch level {
	case kecs.TDebug:
		buffer.WStringNoLen(l.headLogDebug)
	case kecs.TInfo:
		buffer.WStringNoLen(l.headLogInfo)
	case kecs.TWarn:
		buffer.WStringNoLen(l.headLogWarn)
	case kecs.TError:
		buffer.WStringNoLen(l.headLogError)
	case kecs.TFatal:
		buffer.WStringNoLen(l.headLogFatal)
	}
	buffer.WStringNoLen(l.getTimestamp())
	if msg != "" {
		buffer.WStringNoLen(" ")
		buffer.WStringNoLen(msg)
	}
	buffer.WStringNoLen(l.tail)
	ps, _ := util.JsonMarshal(params)
	_, _ = buffer.Write(ps)
	buffer.WStringNoLen("\n")
	buffer.WStringNoLen(caller)
	if stack != nil {
		_, _ = buffer.Write(stack)
	}
	buffer.WStringNoLen("\n")
	_, _ = l.option.writer.Write(buffer.All())
	buffer.Dispose()
}
