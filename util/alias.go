package util

type (
	TErrCode = uint16
)

type (
	ToInt64      func() int64
	FnAnySlc     func([]any)
	StrToStr2Err func(string) (string, string, *Err)
)

func Default[T any]() (v T) {
	return
}
