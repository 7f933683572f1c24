package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const contentTypeMsgpack = "application/msgpack"

// Codec - формат снимков для клиента. Команды от клиента всегда JSON.
type Codec interface {
	Marshal(v any) ([]byte, error)
	ContentType() string
	// MessageType - тип кадра WebSocket
	MessageType() int
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) ContentType() string           { return "application/json" }
func (jsonCodec) MessageType() int              { return websocket.TextMessage }

// msgpackCodec использует json-теги, чтобы имена полей совпадали с JSON-клиентом
type msgpackCodec struct{}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
func (msgpackCodec) ContentType() string { return contentTypeMsgpack }
func (msgpackCodec) MessageType() int    { return websocket.BinaryMessage }

var (
	JSONCodec    Codec = jsonCodec{}
	MsgpackCodec Codec = msgpackCodec{}
)

// codecFor выбирает формат по ?codec=msgpack или заголовку Accept
func codecFor(r *http.Request) Codec {
	if strings.EqualFold(r.URL.Query().Get("codec"), "msgpack") {
		return MsgpackCodec
	}
	if strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack) {
		return MsgpackCodec
	}
	return JSONCodec
}

// decodeMsgpack - обратная операция для клиентов на Go (бот, тесты)
func decodeMsgpack(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
