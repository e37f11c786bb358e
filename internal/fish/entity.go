package fish

import (
	"math"

	"github.com/tathan08/fishy-business/internal/geom"
)

// MaxSize caps how large a fish's hitboxes and sprite scale can grow,
// regardless of how much it has eaten.
const MaxSize = 200.0

// Sender is the narrow interface the ocean world uses to hand a frame back
// to a connection without ever touching connection internals, avoiding a
// cyclic reference between connection, player, and world.
type Sender interface {
	Enqueue(frame interface{}) error
	EnqueueMeta(frame interface{}) error
}

// Input is the latest direction/boost pair drained from a player's input
// queue ("current input").
type Input struct {
	Dir   geom.Vec2
	Boost bool
	Seq   uint32
}

// PowerupState tracks a player's active powerup, including the species-
// specific saved base size pufferfish needs to revert on expiry.
type PowerupState struct {
	Active      bool
	Remaining   float64 // seconds
	BaseSize    float64 // pufferfish-only: size before the powerup was applied
	HasBaseSize bool
}

// Player is one connected (or recently disconnected-but-not-yet-reaped)
// ocean participant.
type Player struct {
	ID      string
	Name    string
	Species Species

	Pos      geom.Vec2
	Vel      geom.Vec2
	Rotation float64

	Size  float64
	Score int
	Alive bool

	RespawnIn float64
	KilledBy  string

	LastSeq uint32
	Input   Input

	Powerup PowerupState

	Conn Sender

	// SeenPeers tracks which other player ids this connection has already
	// been sent a one-shot PlayerInfo frame for (interest mgmt).
	SeenPeers map[string]bool
}

// NewPlayer constructs a freshly joined/respawned player at pos.
func NewPlayer(id, name string, species Species, pos geom.Vec2, initialSize float64) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Species:   species,
		Pos:       pos,
		Size:      initialSize,
		Alive:     true,
		SeenPeers: make(map[string]bool),
	}
}

// MouthCircle derives the mouth hitbox: a circle of radius
// cappedSize*mouthR at position + cappedSize*mouthOffset*(cos θ, sin θ).
// Swordfish under an active powerup gets mouth radius x2 and offset x1.5.
func (p *Player) MouthCircle() geom.Circle {
	h := HitboxFor(p.Species)
	capped := math.Min(p.Size, MaxSize)
	mouthR := h.MouthR
	mouthOffset := h.MouthOffset
	if p.Species == Swordfish && p.Powerup.Active {
		mouthR *= 2
		mouthOffset *= 1.5
	}
	center := geom.Add(p.Pos, geom.Vec2{
		X: capped * mouthOffset * math.Cos(p.Rotation),
		Y: capped * mouthOffset * math.Sin(p.Rotation),
	})
	return geom.Circle{Center: center, Radius: capped * mouthR}
}

// BodyOBB derives the body hitbox from the species table, scaled by size.
func (p *Player) BodyOBB() geom.OBB {
	h := HitboxFor(p.Species)
	capped := math.Min(p.Size, MaxSize)
	return geom.OBB{
		Center:      p.Pos,
		HalfExtents: geom.Vec2{X: capped * h.BodyW / 2, Y: capped * h.BodyH / 2},
		Rotation:    p.Rotation,
	}
}

// Food is a consumable world entity worth FoodValue points of size.
type Food struct {
	ID     uint64
	Pos    geom.Vec2
	Radius float64
}

// Powerup is shaped identically to Food but grants a timed species effect
// on pickup.
type Powerup struct {
	ID     uint64
	Pos    geom.Vec2
	Radius float64
}
