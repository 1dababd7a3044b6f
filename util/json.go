package util

import jsoniter "github.com/json-iterator/go"

var _JsonConf = jsoniter.Config{
	UseNumber:   true,
	EscapeHTML:  true,
	SortMapKeys: true,
}.Froze()

func JsonMarshal(o any) ([]byte, *Err) {
	bytes, err := _JsonConf.Marshal(o)
	if err != nil {
		return nil, WrapErr(EcMarshallErr, err)
	}
	return bytes, nil
}

func JsonUnmarshal(bytes []byte, o any) *Err {
	err := _JsonConf.Unmarshal(bytes, o)
	if err != nil {
		return WrapErr(EcUnmarshallErr, err)
	}
	return nil
}
