package util

import (
	"regexp"
	"runtime"
	"strconv"
)

const (
	EcMin TErrCode = iota + 60000
	EcNil
	EcRecover
	EcWrongType
	EcClosed
	EcEmpty
	EcExist
	EcNotExist
	EcNotEnough
	EcMarshallErr
	EcUnmarshallErr
	EcIllegalOp
	EcParamsErr
	EcParseErr
	EcOutOfRange
	EcTooLong
	EcFail
)

var (
	_ErrCodeToString = map[TErrCode]string{
		EcNil:           "object_nil",
		EcRecover:       "recover",
		EcWrongType:     "wrong_type",
		EcClosed:        "closed",
		EcEmpty:         "empty",
		EcExist:         "exist",
		EcNotExist:      "not_exist",
		EcNotEnough:     "not_enough",
		EcMarshallErr:   "marshall_error",
		EcUnmarshallErr: "unmarshall_error",
		EcIllegalOp:     "illegal_operation",
		EcParamsErr:     "args_error",
		EcParseErr:      "parse_error",
		EcOutOfRange:    "out_of_range",
		EcTooLong:       "too_long",
		EcFail:          "fail_code",
	}
)

func SetErrCodeToStr(ec TErrCode, str string) {
	_ErrCodeToString[ec] = str
}

func ErrCodeToStr(ec TErrCode) string {
	str, ok := _ErrCodeToString[ec]
	if ok {
		return str
	}
	return strconv.FormatInt(int64(ec), 10)
}

func WrapErr(code TErrCode, e error) *Err {
	if e == nil {
		return &Err{code: code, stack: GetStack(3)}
	}
	return &Err{code: code, stack: GetStack(3), params: M{"error": e.Error()}}
}

func NewErr(code TErrCode, params M) *Err {
	return &Err{code: code, stack: GetStack(3), params: params}
}

type Err struct {
	code   TErrCode
	stack  []byte
	params M
}

func (e *Err) Code() TErrCode {
	return e.code
}

func (e *Err) ToBytes() []byte {
	if e.params == nil {
		e.params = map[string]any{}
	}
	e.params["code"] = e.code
	if e.stack != nil {
		e.params["stack"] = BytesToStr(e.stack)
	}
	bytes, _ := JsonMarshal(e.params)
	return bytes
}

func (e *Err) Error() string {
	err, ok := e.params["error"]
	if ok {
		return err.(string)
	}
	return BytesToStr(e.ToBytes())
}

func (e *Err) Params() M {
	return e.params
}

func (e *Err) Stack() []byte {
	return e.stack
}

func (e *Err) GetParam(k string) (v any, ok bool) {
	if e.params == nil {
		return nil, false
	}
	v, ok = e.params[k]
	return
}

func (e *Err) String() string {
	return ErrCodeToStr(e.code)
}

func GetStack(skip int) []byte {
	const depth = 16
	var rpc [depth]uintptr
	n := runtime.Callers(skip, rpc[:])
	if n < 1 {
		return nil
	}
	frames := runtime.CallersFrames(rpc[:])

	var buffer ByteBuffer
	buffer.InitCap(256)
	for i := 0; i < StackMaxDeep; i++ {
		frame, ok := frames.Next()
		if !ok {
			break
		}
		buffer.WUint8('\n')
		buffer.WUint8('\t')
		buffer.WStringNoLen(LogTrim(frame.File))
		buffer.WUint8(':')
		buffer.WStringNoLen(strconv.Itoa(frame.Line))
	}
	return buffer.All()
}

var (
	StackMaxDeep = 8
	LogPrefix    = ".."
	LogReg       = regexp.MustCompile(`(\/.+\.(com)|(org))|(\/.+go\d{1}\.\d{1,2}.\d{1,2}|/src)`)
)

func LogTrim(file string) string {
	s := LogReg.FindStringIndex(file)
	if len(s) > 0 {
		return LogPrefix + file[s[1]:]
	}
	return file
}
