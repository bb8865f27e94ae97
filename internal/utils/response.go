package utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// ContentTypeMsgpack is returned when the client asks for MessagePack
const ContentTypeMsgpack = "application/msgpack"

// WantsMsgpack reports whether the request prefers a MessagePack body
func WantsMsgpack(r *http.Request) bool {
	if r == nil {
		return false
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, ContentTypeMsgpack) || strings.Contains(accept, "application/x-msgpack")
}

// WriteResponse encodes data as JSON, or MessagePack when the request asks for it.
// Struct field names follow their json tags in both encodings.
func WriteResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if WantsMsgpack(r) {
		body, err := marshalMsgpack(data)
		if err == nil {
			w.Header().Set("Content-Type", ContentTypeMsgpack)
			w.WriteHeader(status)
			_, _ = w.Write(body)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func marshalMsgpack(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
