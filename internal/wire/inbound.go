package wire

import (
	"encoding/json"

	"github.com/gorilla/websocket"
)

// ClientMessage is the ocean mode's inbound JSON message: frames travel
// binary outbound but JSON inbound. Only the fields relevant to Type are
// populated.
type ClientMessage struct {
	Type  string  `json:"type"`
	Name  string  `json:"name,omitempty"`
	Model string  `json:"model,omitempty"`
	DirX  float64 `json:"dirX,omitempty"`
	DirY  float64 `json:"dirY,omitempty"`
	Boost bool    `json:"boost,omitempty"`
	Seq   uint32  `json:"seq,omitempty"`
}

const (
	ClientJoin  = "join"
	ClientInput = "input"
	ClientPing  = "ping"
)

// Codec adapts this package's binary outbound encoding and JSON inbound
// decoding to the netconn.Codec interface.
type Codec struct{}

func (Codec) MessageType() int { return websocket.BinaryMessage }

func (Codec) EncodeBatch(frames []interface{}) ([]byte, error) {
	return EncodeBatch(frames)
}

func (Codec) Decode(data []byte) (interface{}, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return msg, nil
}
