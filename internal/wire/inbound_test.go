package wire

import (
	"testing"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCodec(t *testing.T) {
	Convey("Given the ocean Codec", t, func() {
		var c Codec

		Convey("It emits binary WebSocket messages outbound", func() {
			So(c.MessageType(), ShouldEqual, websocket.BinaryMessage)
		})

		Convey("EncodeBatch defers to the package-level binary encoder", func() {
			data, err := c.EncodeBatch([]interface{}{PongFrame{}})
			So(err, ShouldBeNil)
			So(data, ShouldResemble, []byte{TagPong})
		})

		Convey("Decode parses inbound JSON into a ClientMessage", func() {
			raw := []byte(`{"type":"input","dirX":0.5,"dirY":-0.5,"boost":true,"seq":7}`)
			msg, err := c.Decode(raw)
			So(err, ShouldBeNil)
			cm := msg.(ClientMessage)
			So(cm.Type, ShouldEqual, ClientInput)
			So(cm.DirX, ShouldEqual, 0.5)
			So(cm.DirY, ShouldEqual, -0.5)
			So(cm.Boost, ShouldBeTrue)
			So(cm.Seq, ShouldEqual, uint32(7))
		})

		Convey("Decode rejects malformed JSON", func() {
			_, err := c.Decode([]byte(`not json`))
			So(err, ShouldNotBeNil)
		})
	})
}
