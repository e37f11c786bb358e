package ocean

import (
	"math/rand"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tathan08/fishy-business/internal/fish"
	"github.com/tathan08/fishy-business/internal/geom"
)

// newTestWorld builds an empty world (no initial food/powerups) so tests can
// place exactly the entities a scenario needs.
func newTestWorld() *World {
	w := &World{
		Players:  make(map[string]*fish.Player),
		Food:     make(map[uint64]*fish.Food),
		Powerups: make(map[uint64]*fish.Powerup),
		Inputs:   make(chan InputMsg, InputQueueSize),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	return w
}

func addPlayer(w *World, id, name string, species fish.Species, pos geom.Vec2, size float64) *fish.Player {
	p := fish.NewPlayer(id, name, species, pos, size)
	p.Rotation = 0
	w.Players[id] = p
	return p
}

// TestEatChain is scenario S1: a larger swordfish eats a smaller one whose
// body OBB overlaps the eater's mouth circle.
func TestEatChain(t *testing.T) {
	Convey("Given a larger swordfish facing a smaller one within mouth range", t, func() {
		w := newTestWorld()
		p1 := addPlayer(w, "p1", "p1", fish.Swordfish, geom.Vec2{X: 500, Y: 500}, 30)
		p2 := addPlayer(w, "p2", "p2", fish.Swordfish, geom.Vec2{X: 520, Y: 500}, 25)
		sim := NewSimulator(w)

		Convey("One tick resolves the eat", func() {
			w.rebuildTree()
			sim.eatingPass()

			So(p2.Alive, ShouldBeFalse)
			So(p2.KilledBy, ShouldEqual, "p1")
			So(p2.RespawnIn, ShouldEqual, RespawnDelay)
			So(p1.Size, ShouldBeGreaterThanOrEqualTo, 42.5)
			So(p1.Score, ShouldEqual, 100)
		})
	})
}

// TestBounceNotEat is scenario S2: two equal-size sharks bounce apart instead
// of eating each other, and neither dies.
func TestBounceNotEat(t *testing.T) {
	Convey("Given two same-size sharks overlapping", t, func() {
		w := newTestWorld()
		a := addPlayer(w, "a", "a", fish.Shark, geom.Vec2{X: 500, Y: 500}, 40)
		b := addPlayer(w, "b", "b", fish.Shark, geom.Vec2{X: 530, Y: 500}, 40)
		sim := NewSimulator(w)

		Convey("Bouncing applies opposing impulses and neither fish dies", func() {
			distBefore := geom.Distance(a.Pos, b.Pos)
			for i := 0; i < 5; i++ {
				w.rebuildTree()
				sim.eatingPass()
				sim.bouncePass()
				sim.physics(1.0 / 30)
			}
			So(a.Alive, ShouldBeTrue)
			So(b.Alive, ShouldBeTrue)
			So(geom.Distance(a.Pos, b.Pos), ShouldBeGreaterThan, distBefore)
		})
	})
}

// TestBlobfishInvulnerable covers invariant 5: a blobfish with an active
// powerup can't be eaten even by a much larger player.
func TestBlobfishInvulnerable(t *testing.T) {
	Convey("Given a blobfish with an active powerup facing a much larger eater", t, func() {
		w := newTestWorld()
		eater := addPlayer(w, "eater", "eater", fish.Swordfish, geom.Vec2{X: 500, Y: 500}, 100)
		victim := addPlayer(w, "victim", "victim", fish.Blobfish, geom.Vec2{X: 550, Y: 500}, 20)
		victim.Powerup.Active = true
		sim := NewSimulator(w)

		Convey("The eating pass skips the kill", func() {
			w.rebuildTree()
			sim.eatingPass()
			So(victim.Alive, ShouldBeTrue)
		})
	})
}

// TestPufferfishPowerupRoundTrip is scenario S3: pickup inflates size, expiry
// restores the saved base size.
func TestPufferfishPowerupRoundTrip(t *testing.T) {
	Convey("Given a pufferfish that picks up a powerup", t, func() {
		w := newTestWorld()
		p := addPlayer(w, "p", "p", fish.Pufferfish, geom.Vec2{X: 0, Y: 0}, 50)
		sim := NewSimulator(w)

		sim.applyPowerup(p)
		Convey("Size inflates by 1.5x and the base size is saved", func() {
			So(p.Size, ShouldEqual, 75)
			So(p.Powerup.BaseSize, ShouldEqual, 50)
			So(p.Powerup.Active, ShouldBeTrue)
			So(p.Powerup.Remaining, ShouldEqual, PowerupDuration)
		})

		Convey("Once the timer expires, size and base size revert", func() {
			p.Powerup.Remaining = 0.001
			sim.powerupTimers(0.01)
			So(p.Powerup.Active, ShouldBeFalse)
			So(p.Size, ShouldEqual, 50)
			So(p.Powerup.BaseSize, ShouldEqual, 0)
		})
	})
}

func TestPufferfishSizeCapsAtMaxSize(t *testing.T) {
	Convey("Given a pufferfish near MaxSize that picks up a powerup", t, func() {
		w := newTestWorld()
		p := addPlayer(w, "p", "p", fish.Pufferfish, geom.Vec2{X: 0, Y: 0}, 150)
		sim := NewSimulator(w)
		sim.applyPowerup(p)

		Convey("Size is clamped at MaxSize, not 1.5x", func() {
			So(p.Size, ShouldEqual, MaxSize)
		})
	})
}

func TestPlayerEatsFood(t *testing.T) {
	Convey("Given a player whose mouth overlaps a food item", t, func() {
		w := newTestWorld()
		p := addPlayer(w, "p", "p", fish.Swordfish, geom.Vec2{X: 0, Y: 0}, 20)
		f := &fish.Food{ID: 1, Pos: geom.Vec2{X: 10, Y: 0}, Radius: 5}
		w.Food[f.ID] = f
		sim := NewSimulator(w)

		Convey("The food is consumed and size/score increase", func() {
			startSize := p.Size
			w.rebuildTree()
			sim.eatingPass()
			_, stillThere := w.Food[f.ID]
			So(stillThere, ShouldBeFalse)
			So(p.Size, ShouldEqual, startSize+FoodValue)
			So(p.Score, ShouldEqual, 1)
		})
	})
}

func TestPositionClampedToWorldBounds(t *testing.T) {
	Convey("Given a player moving past the world edge", t, func() {
		w := newTestWorld()
		p := addPlayer(w, "p", "p", fish.Swordfish, geom.Vec2{X: WorldW - 1, Y: 100}, 20)
		p.Input.Dir = geom.Vec2{X: 1, Y: 0}
		sim := NewSimulator(w)

		Convey("After enough ticks, X clamps to WorldW and velocity.X zeroes", func() {
			for i := 0; i < 200; i++ {
				sim.physics(1.0 / 30)
			}
			So(p.Pos.X, ShouldEqual, WorldW)
			So(p.Vel.X, ShouldEqual, 0)
		})
	})
}

func TestBoostDrainsSize(t *testing.T) {
	Convey("Given a boosting player above MinSize", t, func() {
		w := newTestWorld()
		p := addPlayer(w, "p", "p", fish.Swordfish, geom.Vec2{X: 1000, Y: 1000}, 50)
		p.Input.Dir = geom.Vec2{X: 1, Y: 0}
		p.Input.Boost = true
		p.Vel = geom.Vec2{X: PlayerSpeed * 2, Y: 0} // already above the 1.5x threshold
		sim := NewSimulator(w)

		Convey("Size decreases monotonically while boosting", func() {
			prev := p.Size
			for i := 0; i < 10; i++ {
				sim.physics(1.0 / 30)
				So(p.Size, ShouldBeLessThanOrEqualTo, prev)
				prev = p.Size
			}
		})

		Convey("Size never drops below MinSize", func() {
			p.Size = MinSize + 0.001
			for i := 0; i < 100; i++ {
				sim.physics(1.0 / 30)
			}
			So(p.Size, ShouldEqual, MinSize)
		})
	})
}

func TestRespawnAfterDelay(t *testing.T) {
	Convey("Given a dead player whose respawn timer has elapsed", t, func() {
		w := newTestWorld()
		w.tree = nil
		p := addPlayer(w, "p", "p", fish.Swordfish, geom.Vec2{X: 0, Y: 0}, 10)
		p.Alive = false
		p.RespawnIn = 0.01
		p.KilledBy = "someone"
		sim := NewSimulator(w)

		Convey("The next tick's respawn pass revives it", func() {
			sim.respawnPass(0.02)
			So(p.Alive, ShouldBeTrue)
			So(p.Size, ShouldEqual, InitialSize)
			So(p.KilledBy, ShouldEqual, "")
			So(p.Rotation, ShouldEqual, 0)
		})
	})
}

func TestSpawnersRespectCaps(t *testing.T) {
	Convey("Given a freshly constructed world", t, func() {
		w := NewWorld()
		sim := NewSimulator(w)

		Convey("Food and powerups never exceed their caps after spawning", func() {
			for id := range w.Food {
				delete(w.Food, id)
			}
			sim.spawners()
			So(len(w.Food), ShouldBeLessThanOrEqualTo, MaxFoodCount)
			So(len(w.Powerups), ShouldBeLessThanOrEqualTo, MaxPowerupCount)

			sim.Tick()
			So(len(w.Food), ShouldBeLessThanOrEqualTo, MaxFoodCount)
			So(len(w.Powerups), ShouldBeLessThanOrEqualTo, MaxPowerupCount)
		})
	})
}
