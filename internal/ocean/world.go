package ocean

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/tathan08/fishy-business/internal/fish"
	"github.com/tathan08/fishy-business/internal/geom"
	"github.com/tathan08/fishy-business/internal/idgen"
	"github.com/tathan08/fishy-business/internal/quadtree"
)

// InputMsg is one client input event queued for the next tick's drain.
type InputMsg struct {
	PlayerID string
	Dir      geom.Vec2
	Boost    bool
	Seq      uint32
}

// World holds all ocean state: players, food, powerups, and the index
// rebuilt fresh every tick. Grounded on the original World (world.go),
// generalized with a bounded non-blocking input queue.
type World struct {
	mu sync.RWMutex

	Players  map[string]*fish.Player
	Food     map[uint64]*fish.Food
	Powerups map[uint64]*fish.Powerup

	foodIDs    idgen.Counter
	powerupIDs idgen.Counter
	rng        *rand.Rand

	tree *quadtree.QuadTree

	Inputs chan InputMsg
}

// NewWorld creates an empty world and spawns its initial food/powerups.
func NewWorld() *World {
	w := &World{
		Players:  make(map[string]*fish.Player),
		Food:     make(map[uint64]*fish.Food),
		Powerups: make(map[uint64]*fish.Powerup),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		Inputs:   make(chan InputMsg, InputQueueSize),
	}
	w.tree = quadtree.New(geom.Rect{X: 0, Y: 0, W: WorldW, H: WorldH})
	for len(w.Food) < MaxFoodCount {
		f := w.newFood()
		w.Food[f.ID] = f
	}
	for len(w.Powerups) < MaxPowerupCount {
		p := w.newPowerup()
		w.Powerups[p.ID] = p
	}
	return w
}

// RandomInteriorPos returns a uniformly random point inside the world rect,
// staying SpawnMargin px from every edge (respawn rule).
func (w *World) RandomInteriorPos() geom.Vec2 {
	return geom.Vec2{
		X: SpawnMargin + w.rng.Float64()*(WorldW-2*SpawnMargin),
		Y: SpawnMargin + w.rng.Float64()*(WorldH-2*SpawnMargin),
	}
}

func (w *World) newFood() *fish.Food {
	return &fish.Food{
		ID:     w.foodIDs.Next(),
		Pos:    w.RandomInteriorPos(),
		Radius: MinFoodRadius + w.rng.Float64()*(MaxFoodRadius-MinFoodRadius),
	}
}

func (w *World) newPowerup() *fish.Powerup {
	return &fish.Powerup{
		ID:     w.powerupIDs.Next(),
		Pos:    w.RandomInteriorPos(),
		Radius: PowerupRadius,
	}
}

// AddPlayer registers a new or respawned player. Caller must hold w.mu.
func (w *World) AddPlayer(p *fish.Player) {
	w.Players[p.ID] = p
}

// RemovePlayer deletes a player entirely (on disconnect). Caller must hold
// w.mu.
func (w *World) RemovePlayer(id string) {
	delete(w.Players, id)
}

// EnqueueInput offers an input non-blockingly: a saturated queue drops the
// input rather than suspending the producer.
func (w *World) EnqueueInput(msg InputMsg) bool {
	select {
	case w.Inputs <- msg:
		return true
	default:
		return false
	}
}

// rebuildTree rebuilds the quadtree from the current alive-players, food,
// and powerup maps. Caller must hold w.mu.
func (w *World) rebuildTree() {
	w.tree = quadtree.New(geom.Rect{X: 0, Y: 0, W: WorldW, H: WorldH})
	entries := make([]quadtree.Entry, 0, len(w.Players)+len(w.Food)+len(w.Powerups))
	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		entries = append(entries, quadtree.Entry{Pos: p.Pos, Radius: 0, Data: p})
	}
	for _, f := range w.Food {
		entries = append(entries, quadtree.Entry{Pos: f.Pos, Radius: f.Radius, Data: f})
	}
	for _, p := range w.Powerups {
		entries = append(entries, quadtree.Entry{Pos: p.Pos, Radius: p.Radius, Data: p})
	}
	w.tree.InsertAll(entries)
}

// Leaderboard returns the top-10 players by score, alive or dead.
func (w *World) Leaderboard() []*fish.Player {
	w.mu.RLock()
	defer w.mu.RUnlock()
	list := make([]*fish.Player, 0, len(w.Players))
	for _, p := range w.Players {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Score > list[j].Score })
	if len(list) > 10 {
		list = list[:10]
	}
	return list
}
