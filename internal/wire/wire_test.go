package wire

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	Convey("Given a WelcomeFrame", t, func() {
		f := WelcomeFrame{ID: "p1", Name: "Nemo", Model: "swordfish", WorldW: 4000, WorldH: 4000}

		Convey("Decoding what Encode wrote reproduces it exactly", func() {
			var buf bytes.Buffer
			So(Encode(&buf, f), ShouldBeNil)
			out, err := Decode(buf.Bytes())
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 1)
			So(out[0], ShouldResemble, f)
		})
	})

	Convey("Given a StateFrame with others, food, and powerups", t, func() {
		f := StateFrame{
			Alive: true, X: 1, Y: 2, VelX: 3, VelY: 4, Rot: 5, Size: 6, Score: 7, Seq: 8,
			HasKilledBy: true, KilledBy: "shark", HasRespawnIn: true, RespawnIn: 2.5,
			PowerupActive: true, PowerupDuration: 1.5,
			Others:   []OtherPlayer{{ID: "a", X: 1, Y: 1, VelX: 0, VelY: 0, Rot: 0, Size: 1, PowerupActive: true}},
			Food:     []FoodItem{{ID: 1, X: 10, Y: 10, R: 3}},
			Powerups: []FoodItem{{ID: 2, X: 20, Y: 20, R: 4}},
		}

		Convey("Decoding reproduces every field", func() {
			var buf bytes.Buffer
			So(Encode(&buf, f), ShouldBeNil)
			out, err := Decode(buf.Bytes())
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 1)
			So(out[0], ShouldResemble, f)
		})
	})

	Convey("Given a StateFrame with no optional fields set", t, func() {
		f := StateFrame{Alive: false, X: 1, Y: 2}

		Convey("The optional KilledBy/RespawnIn/PowerupDuration bytes aren't written or read back", func() {
			var buf bytes.Buffer
			So(Encode(&buf, f), ShouldBeNil)
			out, err := Decode(buf.Bytes())
			So(err, ShouldBeNil)
			got := out[0].(StateFrame)
			So(got.HasKilledBy, ShouldBeFalse)
			So(got.HasRespawnIn, ShouldBeFalse)
			So(got.PowerupActive, ShouldBeFalse)
		})
	})

	Convey("Given a PongFrame", t, func() {
		var buf bytes.Buffer
		So(Encode(&buf, PongFrame{}), ShouldBeNil)
		out, err := Decode(buf.Bytes())
		So(err, ShouldBeNil)
		So(out, ShouldResemble, []interface{}{PongFrame{}})
	})

	Convey("Given a LeaderboardFrame", t, func() {
		f := LeaderboardFrame{Entries: []LeaderboardEntry{{Name: "a", Score: 10}, {Name: "b", Score: 5}}}
		var buf bytes.Buffer
		So(Encode(&buf, f), ShouldBeNil)
		out, err := Decode(buf.Bytes())
		So(err, ShouldBeNil)
		So(out[0], ShouldResemble, f)
	})

	Convey("Given a PlayerInfoFrame", t, func() {
		f := PlayerInfoFrame{ID: "p2", Name: "Dory", Model: "blobfish"}
		var buf bytes.Buffer
		So(Encode(&buf, f), ShouldBeNil)
		out, err := Decode(buf.Bytes())
		So(err, ShouldBeNil)
		So(out[0], ShouldResemble, f)
	})

	Convey("Given an AllPlayersFrame", t, func() {
		f := AllPlayersFrame{Players: []AllPlayersEntry{{ID: "p1", X: 1, Y: 2}, {ID: "p2", X: 3, Y: 4}}}
		var buf bytes.Buffer
		So(Encode(&buf, f), ShouldBeNil)
		out, err := Decode(buf.Bytes())
		So(err, ShouldBeNil)
		So(out[0], ShouldResemble, f)
	})
}

func TestEncodeBatchDecodesInOrder(t *testing.T) {
	Convey("Given several frames batched into one payload", t, func() {
		frames := []interface{}{
			WelcomeFrame{ID: "p1", Name: "a", Model: "shark", WorldW: 1, WorldH: 1},
			PongFrame{},
			PlayerInfoFrame{ID: "p2", Name: "b", Model: "swordfish"},
		}
		data, err := EncodeBatch(frames)
		So(err, ShouldBeNil)

		Convey("Decode returns them in the same order", func() {
			out, err := Decode(data)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, frames)
		})
	})
}

func TestDecodeUnknownTag(t *testing.T) {
	Convey("Given a buffer with one valid frame followed by a bogus tag byte", t, func() {
		var buf bytes.Buffer
		So(Encode(&buf, PongFrame{}), ShouldBeNil)
		buf.WriteByte(200)

		Convey("Decode returns what it decoded before the error, plus the error", func() {
			out, err := Decode(buf.Bytes())
			So(err, ShouldNotBeNil)
			So(out, ShouldResemble, []interface{}{PongFrame{}})
		})
	})
}

func TestEncodeUnknownFrameType(t *testing.T) {
	Convey("Given a value that isn't one of the known frame types", t, func() {
		var buf bytes.Buffer
		err := Encode(&buf, "not a frame")
		So(err, ShouldNotBeNil)
	})
}
