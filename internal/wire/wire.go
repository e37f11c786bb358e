// Package wire implements the ocean mode's binary, big-endian, tagged frame
// codec. Frames are written into a reusable bytes.Buffer and
// concatenated so several can travel in one WebSocket message; Decode reads
// back as many frames as the buffer holds, advancing until it is exhausted.
//
// The explicit length-prefixed-string / binary.Write idiom here is grounded
// on the accbroadcastingsdk network buffer pattern surveyed from the
// example pack (bytes.Buffer + encoding/binary, one write-helper per
// primitive type).
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Frame type tags.
const (
	TagWelcome     = 1
	TagState       = 2
	TagPong        = 3
	TagLeaderboard = 4
	TagPlayerInfo  = 5
	TagAllPlayers  = 6
)

// state flag bits within the State frame's single flags byte.
const (
	flagAlive         = 1 << 0
	flagHasKilledBy   = 1 << 1
	flagHasRespawnIn  = 1 << 2
	flagPowerupActive = 1 << 3
)

// WelcomeFrame (tag 1): str id, str name, str model, f64 worldW, f64 worldH.
type WelcomeFrame struct {
	ID      string
	Name    string
	Model   string
	WorldW  float64
	WorldH  float64
}

// OtherPlayer is one entry in a State frame's "others" list.
type OtherPlayer struct {
	ID            string
	X, Y          float32
	VelX, VelY    float32
	Rot           float32
	Size          float32
	PowerupActive bool
}

// FoodItem is one entry in a State frame's food or powerup list.
type FoodItem struct {
	ID uint64
	X  float32
	Y  float32
	R  float32
}

// StateFrame (tag 2) carries one recipient's own state plus everything it is
// currently interested in.
type StateFrame struct {
	Alive      bool
	X, Y       float32
	VelX, VelY float32
	Rot        float32
	Size       float32
	Score      uint32
	Seq        uint32

	HasKilledBy bool
	KilledBy    string

	HasRespawnIn bool
	RespawnIn    float32

	PowerupActive   bool
	PowerupDuration float32

	Others   []OtherPlayer
	Food     []FoodItem
	Powerups []FoodItem
}

// PongFrame (tag 3) has no payload.
type PongFrame struct{}

// LeaderboardEntry is one row of a Leaderboard frame.
type LeaderboardEntry struct {
	Name  string
	Score uint32
}

// LeaderboardFrame (tag 4): u8 n; n x (str name, u32 score).
type LeaderboardFrame struct {
	Entries []LeaderboardEntry
}

// PlayerInfoFrame (tag 5): one-shot per-peer announcement.
type PlayerInfoFrame struct {
	ID    string
	Name  string
	Model string
}

// AllPlayersEntry is one row of an AllPlayers frame.
type AllPlayersEntry struct {
	ID   string
	X, Y float32
}

// AllPlayersFrame (tag 6): the shark-vision position feed.
type AllPlayersFrame struct {
	Players []AllPlayersEntry
}

// Encode appends the binary encoding of one frame to buf.
func Encode(buf *bytes.Buffer, frame interface{}) error {
	switch f := frame.(type) {
	case WelcomeFrame:
		buf.WriteByte(TagWelcome)
		writeString(buf, f.ID)
		writeString(buf, f.Name)
		writeString(buf, f.Model)
		writeFloat64(buf, f.WorldW)
		writeFloat64(buf, f.WorldH)
	case StateFrame:
		buf.WriteByte(TagState)
		encodeState(buf, f)
	case PongFrame:
		buf.WriteByte(TagPong)
	case LeaderboardFrame:
		buf.WriteByte(TagLeaderboard)
		buf.WriteByte(byte(len(f.Entries)))
		for _, e := range f.Entries {
			writeString(buf, e.Name)
			writeUint32(buf, e.Score)
		}
	case PlayerInfoFrame:
		buf.WriteByte(TagPlayerInfo)
		writeString(buf, f.ID)
		writeString(buf, f.Name)
		writeString(buf, f.Model)
	case AllPlayersFrame:
		buf.WriteByte(TagAllPlayers)
		writeUint16(buf, uint16(len(f.Players)))
		for _, p := range f.Players {
			writeString(buf, p.ID)
			writeFloat32(buf, p.X)
			writeFloat32(buf, p.Y)
		}
	default:
		return fmt.Errorf("wire: unknown frame type %T", frame)
	}
	return nil
}

func encodeState(buf *bytes.Buffer, f StateFrame) {
	var flags byte
	if f.Alive {
		flags |= flagAlive
	}
	if f.HasKilledBy {
		flags |= flagHasKilledBy
	}
	if f.HasRespawnIn {
		flags |= flagHasRespawnIn
	}
	if f.PowerupActive {
		flags |= flagPowerupActive
	}
	buf.WriteByte(flags)
	writeFloat32(buf, f.X)
	writeFloat32(buf, f.Y)
	writeFloat32(buf, f.VelX)
	writeFloat32(buf, f.VelY)
	writeFloat32(buf, f.Rot)
	writeFloat32(buf, f.Size)
	writeUint32(buf, f.Score)
	writeUint32(buf, f.Seq)
	if f.HasKilledBy {
		writeString(buf, f.KilledBy)
	}
	if f.HasRespawnIn {
		writeFloat32(buf, f.RespawnIn)
	}
	if f.PowerupActive {
		writeFloat32(buf, f.PowerupDuration)
	}
	writeUint16(buf, uint16(len(f.Others)))
	for _, o := range f.Others {
		writeString(buf, o.ID)
		writeFloat32(buf, o.X)
		writeFloat32(buf, o.Y)
		writeFloat32(buf, o.VelX)
		writeFloat32(buf, o.VelY)
		writeFloat32(buf, o.Rot)
		writeFloat32(buf, o.Size)
		if o.PowerupActive {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}
	writeUint16(buf, uint16(len(f.Food)))
	for _, it := range f.Food {
		writeUint64(buf, it.ID)
		writeFloat32(buf, it.X)
		writeFloat32(buf, it.Y)
		writeFloat32(buf, it.R)
	}
	writeUint16(buf, uint16(len(f.Powerups)))
	for _, it := range f.Powerups {
		writeUint64(buf, it.ID)
		writeFloat32(buf, it.X)
		writeFloat32(buf, it.Y)
		writeFloat32(buf, it.R)
	}
}

// EncodeBatch encodes every frame into a single concatenated buffer, for
// one WebSocket message carrying multiple frames.
func EncodeBatch(frames []interface{}) ([]byte, error) {
	var buf bytes.Buffer
	for _, f := range frames {
		if err := Encode(&buf, f); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// maxStringLen caps a string's length prefix; readString also rejects a
// prefix that claims more bytes than remain in the buffer.
const maxStringLen = 1 << 16

// Decode reads every frame out of data in order, stopping only when the
// buffer is exhausted. On a malformed frame it aborts decoding the rest of
// the batch and returns what it decoded so far alongside the error, so the
// caller can log and drop the connection.
func Decode(data []byte) ([]interface{}, error) {
	r := bytes.NewReader(data)
	var out []interface{}
	for r.Len() > 0 {
		tagByte, err := r.ReadByte()
		if err != nil {
			return out, nil
		}
		frame, err := decodeOne(r, tagByte)
		if err != nil {
			return out, fmt.Errorf("wire: decode tag %d: %w", tagByte, err)
		}
		out = append(out, frame)
	}
	return out, nil
}

func decodeOne(r *bytes.Reader, tag byte) (interface{}, error) {
	switch tag {
	case TagWelcome:
		id, err := readString(r)
		if err != nil {
			return nil, err
		}
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		model, err := readString(r)
		if err != nil {
			return nil, err
		}
		w, err := readFloat64(r)
		if err != nil {
			return nil, err
		}
		h, err := readFloat64(r)
		if err != nil {
			return nil, err
		}
		return WelcomeFrame{ID: id, Name: name, Model: model, WorldW: w, WorldH: h}, nil
	case TagState:
		return decodeState(r)
	case TagPong:
		return PongFrame{}, nil
	case TagLeaderboard:
		n, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		entries := make([]LeaderboardEntry, 0, n)
		for i := byte(0); i < n; i++ {
			name, err := readString(r)
			if err != nil {
				return nil, err
			}
			score, err := readUint32(r)
			if err != nil {
				return nil, err
			}
			entries = append(entries, LeaderboardEntry{Name: name, Score: score})
		}
		return LeaderboardFrame{Entries: entries}, nil
	case TagPlayerInfo:
		id, err := readString(r)
		if err != nil {
			return nil, err
		}
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		model, err := readString(r)
		if err != nil {
			return nil, err
		}
		return PlayerInfoFrame{ID: id, Name: name, Model: model}, nil
	case TagAllPlayers:
		n, err := readUint16(r)
		if err != nil {
			return nil, err
		}
		players := make([]AllPlayersEntry, 0, n)
		for i := uint16(0); i < n; i++ {
			id, err := readString(r)
			if err != nil {
				return nil, err
			}
			x, err := readFloat32(r)
			if err != nil {
				return nil, err
			}
			y, err := readFloat32(r)
			if err != nil {
				return nil, err
			}
			players = append(players, AllPlayersEntry{ID: id, X: x, Y: y})
		}
		return AllPlayersFrame{Players: players}, nil
	default:
		return nil, fmt.Errorf("unknown tag %d", tag)
	}
}

func decodeState(r *bytes.Reader) (StateFrame, error) {
	var f StateFrame
	flags, err := r.ReadByte()
	if err != nil {
		return f, err
	}
	f.Alive = flags&flagAlive != 0
	f.HasKilledBy = flags&flagHasKilledBy != 0
	f.HasRespawnIn = flags&flagHasRespawnIn != 0
	f.PowerupActive = flags&flagPowerupActive != 0

	vals := make([]float32, 6)
	for i := range vals {
		v, err := readFloat32(r)
		if err != nil {
			return f, err
		}
		vals[i] = v
	}
	f.X, f.Y, f.VelX, f.VelY, f.Rot, f.Size = vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]

	f.Score, err = readUint32(r)
	if err != nil {
		return f, err
	}
	f.Seq, err = readUint32(r)
	if err != nil {
		return f, err
	}
	if f.HasKilledBy {
		f.KilledBy, err = readString(r)
		if err != nil {
			return f, err
		}
	}
	if f.HasRespawnIn {
		f.RespawnIn, err = readFloat32(r)
		if err != nil {
			return f, err
		}
	}
	if f.PowerupActive {
		f.PowerupDuration, err = readFloat32(r)
		if err != nil {
			return f, err
		}
	}
	nOthers, err := readUint16(r)
	if err != nil {
		return f, err
	}
	for i := uint16(0); i < nOthers; i++ {
		var o OtherPlayer
		o.ID, err = readString(r)
		if err != nil {
			return f, err
		}
		if o.X, err = readFloat32(r); err != nil {
			return f, err
		}
		if o.Y, err = readFloat32(r); err != nil {
			return f, err
		}
		if o.VelX, err = readFloat32(r); err != nil {
			return f, err
		}
		if o.VelY, err = readFloat32(r); err != nil {
			return f, err
		}
		if o.Rot, err = readFloat32(r); err != nil {
			return f, err
		}
		if o.Size, err = readFloat32(r); err != nil {
			return f, err
		}
		pa, err := r.ReadByte()
		if err != nil {
			return f, err
		}
		o.PowerupActive = pa != 0
		f.Others = append(f.Others, o)
	}
	nFood, err := readUint16(r)
	if err != nil {
		return f, err
	}
	for i := uint16(0); i < nFood; i++ {
		it, err := readFoodItem(r)
		if err != nil {
			return f, err
		}
		f.Food = append(f.Food, it)
	}
	nPowerups, err := readUint16(r)
	if err != nil {
		return f, err
	}
	for i := uint16(0); i < nPowerups; i++ {
		it, err := readFoodItem(r)
		if err != nil {
			return f, err
		}
		f.Powerups = append(f.Powerups, it)
	}
	return f, nil
}

func readFoodItem(r *bytes.Reader) (FoodItem, error) {
	var it FoodItem
	id, err := readUint64(r)
	if err != nil {
		return it, err
	}
	x, err := readFloat32(r)
	if err != nil {
		return it, err
	}
	y, err := readFloat32(r)
	if err != nil {
		return it, err
	}
	rad, err := readFloat32(r)
	if err != nil {
		return it, err
	}
	return FoodItem{ID: id, X: x, Y: y, R: rad}, nil
}

// --- primitive read/write helpers ---

func writeString(buf *bytes.Buffer, s string) {
	writeUint16(buf, uint16(len(s)))
	buf.WriteString(s)
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	_ = binary.Write(buf, binary.BigEndian, v)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	_ = binary.Write(buf, binary.BigEndian, v)
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	_ = binary.Write(buf, binary.BigEndian, v)
}

func writeFloat32(buf *bytes.Buffer, v float32) {
	_ = binary.Write(buf, binary.BigEndian, math.Float32bits(v))
}

func writeFloat64(buf *bytes.Buffer, v float64) {
	_ = binary.Write(buf, binary.BigEndian, math.Float64bits(v))
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readUint16(r)
	if err != nil {
		return "", err
	}
	if int(n) > maxStringLen {
		return "", fmt.Errorf("string length %d exceeds max", n)
	}
	if int(n) > r.Len() {
		return "", fmt.Errorf("string length %d exceeds the %d bytes remaining", n, r.Len())
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(b); err != nil {
			return "", err
		}
	}
	return string(b), nil
}

func readUint16(r *bytes.Reader) (uint16, error) {
	var v uint16
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var v uint64
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func readFloat32(r *bytes.Reader) (float32, error) {
	var bits uint32
	if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func readFloat64(r *bytes.Reader) (float64, error) {
	var bits uint64
	if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}
