package ocean

import (
	"log"
	"time"

	"github.com/tathan08/fishy-business/internal/fish"
	"github.com/tathan08/fishy-business/internal/geom"
	"github.com/tathan08/fishy-business/internal/wire"
)

// Broadcaster fans world state out to connections on independent cadences:
// per-client interest-scoped state at BroadcastRate, a leaderboard stream at
// LeaderboardRate, and a shark-vision stream at SharkVisionRate.
// Grounded on the original GameLoop.broadcast, generalized for interest
// management and the two extra streams.
type Broadcaster struct {
	world *World
}

func NewBroadcaster(w *World) *Broadcaster {
	return &Broadcaster{world: w}
}

// Run starts all three broadcast loops in their own goroutines and returns
// immediately; the loops run until the process exits.
func (b *Broadcaster) Run() {
	go b.runStateLoop()
	go b.runLeaderboardLoop()
	go b.runSharkVisionLoop()
}

func (b *Broadcaster) runStateLoop() {
	ticker := time.NewTicker(BroadcastInterval)
	defer ticker.Stop()
	for range ticker.C {
		b.broadcastState()
	}
}

func (b *Broadcaster) runLeaderboardLoop() {
	ticker := time.NewTicker(LeaderboardInterval)
	defer ticker.Stop()
	for range ticker.C {
		b.broadcastLeaderboard()
	}
}

func (b *Broadcaster) runSharkVisionLoop() {
	ticker := time.NewTicker(SharkVisionInterval)
	defer ticker.Stop()
	for range ticker.C {
		b.broadcastSharkVision()
	}
}

// broadcastState walks all players, builds each owning connection's
// interest-scoped frame set, and enqueues it. Reads are taken under the
// world read lock; sends happen after releasing it so a slow client can
// never stall the simulator.
func (b *Broadcaster) broadcastState() {
	w := b.world
	w.mu.RLock()
	type outgoing struct {
		conn   fish.Sender
		frames []interface{}
	}
	batch := make([]outgoing, 0, len(w.Players))

	for _, p := range w.Players {
		if p.Conn == nil {
			continue
		}
		frames := []interface{}{}

		for _, other := range w.Players {
			if other.ID == p.ID || !other.Alive {
				continue
			}
			if geom.Distance(p.Pos, other.Pos) > ViewDistance {
				continue
			}
			if !p.SeenPeers[other.ID] {
				p.SeenPeers[other.ID] = true
				frames = append(frames, wire.PlayerInfoFrame{
					ID:    other.ID,
					Name:  other.Name,
					Model: string(other.Species),
				})
			}
		}

		frames = append(frames, buildStateFrame(p, w))
		batch = append(batch, outgoing{conn: p.Conn, frames: frames})
	}
	w.mu.RUnlock()

	for _, o := range batch {
		for _, f := range o.frames {
			if err := o.conn.Enqueue(f); err != nil {
				log.Printf("ocean: state enqueue failed: %v", err)
				break
			}
		}
	}
}

func buildStateFrame(p *fish.Player, w *World) wire.StateFrame {
	f := wire.StateFrame{
		Alive: p.Alive,
		X:     float32(p.Pos.X),
		Y:     float32(p.Pos.Y),
		VelX:  float32(p.Vel.X),
		VelY:  float32(p.Vel.Y),
		Rot:   float32(p.Rotation),
		Size:  float32(p.Size),
		Score: uint32(p.Score),
		Seq:   p.LastSeq,
	}
	if !p.Alive {
		f.HasKilledBy = p.KilledBy != ""
		f.KilledBy = p.KilledBy
		f.HasRespawnIn = true
		f.RespawnIn = float32(p.RespawnIn)
	}
	if p.Powerup.Active {
		f.PowerupActive = true
		f.PowerupDuration = float32(p.Powerup.Remaining)
	}

	for _, other := range w.Players {
		if other.ID == p.ID || !other.Alive {
			continue
		}
		if geom.Distance(p.Pos, other.Pos) > ViewDistance {
			continue
		}
		f.Others = append(f.Others, wire.OtherPlayer{
			ID:            other.ID,
			X:             float32(other.Pos.X),
			Y:             float32(other.Pos.Y),
			VelX:          float32(other.Vel.X),
			VelY:          float32(other.Vel.Y),
			Rot:           float32(other.Rotation),
			Size:          float32(other.Size),
			PowerupActive: other.Powerup.Active,
		})
	}
	for _, food := range w.Food {
		if geom.Distance(p.Pos, food.Pos) > ViewDistance {
			continue
		}
		f.Food = append(f.Food, wire.FoodItem{ID: food.ID, X: float32(food.Pos.X), Y: float32(food.Pos.Y), R: float32(food.Radius)})
	}
	for _, pu := range w.Powerups {
		f.Powerups = append(f.Powerups, wire.FoodItem{ID: pu.ID, X: float32(pu.Pos.X), Y: float32(pu.Pos.Y), R: float32(pu.Radius)})
	}
	return f
}

// broadcastLeaderboard sends the top-10 alive-or-dead players by score to
// every connection, once per second.
func (b *Broadcaster) broadcastLeaderboard() {
	top := b.world.Leaderboard()
	entries := make([]wire.LeaderboardEntry, 0, len(top))
	for _, p := range top {
		entries = append(entries, wire.LeaderboardEntry{Name: p.Name, Score: uint32(p.Score)})
	}
	frame := wire.LeaderboardFrame{Entries: entries}

	b.world.mu.RLock()
	conns := make([]fish.Sender, 0, len(b.world.Players))
	for _, p := range b.world.Players {
		if p.Conn != nil {
			conns = append(conns, p.Conn)
		}
	}
	b.world.mu.RUnlock()

	for _, c := range conns {
		_ = c.EnqueueMeta(frame)
	}
}

// broadcastSharkVision sends an AllPlayers position feed, twice per second,
// only to shark clients whose powerup is currently active.
func (b *Broadcaster) broadcastSharkVision() {
	w := b.world
	w.mu.RLock()
	defer w.mu.RUnlock()

	var entries []wire.AllPlayersEntry
	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		entries = append(entries, wire.AllPlayersEntry{ID: p.ID, X: float32(p.Pos.X), Y: float32(p.Pos.Y)})
	}
	frame := wire.AllPlayersFrame{Players: entries}

	for _, p := range w.Players {
		if p.Species != fish.Shark || !p.Powerup.Active || p.Conn == nil {
			continue
		}
		_ = p.Conn.EnqueueMeta(frame)
	}
}
