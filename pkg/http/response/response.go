package response

import (
	"encoding/json"
	"net/http"

	"github.com/hookrelay-io/hookrelay/constants"
)

func JSON(w http.ResponseWriter, code int, data interface{}) {
	for _, header := range constants.DefaultResponseHeaders {
		w.Header().Set(header.Name, header.Value)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	w.WriteHeader(code)

	if data == nil {
		return
	}

	var bytes []byte
	switch v := data.(type) {
	case string:
		bytes = []byte(v)
	default:
		var err error
		bytes, err = json.Marshal(data)
		if err != nil {
			panic(err)
		}
	}
	_, _ = w.Write(bytes)
}
