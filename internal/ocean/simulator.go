package ocean

import (
	"log"
	"math"
	"time"

	"github.com/tathan08/fishy-business/internal/fish"
	"github.com/tathan08/fishy-business/internal/geom"
)

// Simulator owns the ocean's fixed-rate tick loop. Exactly one goroutine
// runs Run; all other mutation arrives through World.Inputs or the
// join/disconnect hooks the HTTP entrypoint wires in, grounded directly on
// the original GameLoop (game_loop.go).
type Simulator struct {
	world *World
}

// NewSimulator binds a simulator to a world.
func NewSimulator(w *World) *Simulator {
	return &Simulator{world: w}
}

// Run blocks, ticking at TickRate until the process exits.
func (s *Simulator) Run() {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	log.Printf("ocean: simulator started at %d ticks/sec", TickRate)
	for range ticker.C {
		s.Tick()
	}
}

// Tick executes one fixed-rate update in a fixed order: drain inputs ->
// physics -> rebuild index -> eating -> bouncing -> respawn/powerup ->
// spawn. The whole sequence runs under the world write lock.
func (s *Simulator) Tick() {
	w := s.world
	dt := 1.0 / float64(TickRate)

	w.mu.Lock()
	defer w.mu.Unlock()

	s.drainInputs()
	s.physics(dt)
	w.rebuildTree()
	s.eatingPass()
	s.bouncePass()
	s.respawnPass(dt)
	s.powerupTimers(dt)
	s.spawners()
}

func (s *Simulator) drainInputs() {
	w := s.world
	for {
		select {
		case msg := <-w.Inputs:
			p, ok := w.Players[msg.PlayerID]
			if !ok || !p.Alive {
				continue
			}
			p.Input = fish.Input{Dir: geom.Normalize(msg.Dir), Boost: msg.Boost, Seq: msg.Seq}
			p.LastSeq = msg.Seq
		default:
			return
		}
	}
}

func (s *Simulator) physics(dt float64) {
	w := s.world
	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		speed := PlayerSpeed
		if p.Input.Boost {
			speed *= BoostMultiplier
		}
		target := geom.Mul(p.Input.Dir, speed)
		p.Vel = geom.Lerp(p.Vel, target, VelocityLerp)

		p.Pos.X += p.Vel.X * dt
		p.Pos.Y += p.Vel.Y * dt

		if p.Pos.X < 0 {
			p.Pos.X = 0
			p.Vel.X = 0
		} else if p.Pos.X > WorldW {
			p.Pos.X = WorldW
			p.Vel.X = 0
		}
		if p.Pos.Y < 0 {
			p.Pos.Y = 0
			p.Vel.Y = 0
		} else if p.Pos.Y > WorldH {
			p.Pos.Y = WorldH
			p.Vel.Y = 0
		}

		speedNow := geom.Length(p.Vel)
		if speedNow > 0.1 {
			p.Rotation = math.Atan2(p.Vel.Y, p.Vel.X) + math.Pi
		}
		if speedNow > 1.5*PlayerSpeed && p.Size > MinSize {
			p.Size -= BoostCostPerSec * dt
			if p.Size < MinSize {
				p.Size = MinSize
			}
		}
	}
}

// eatingPass resolves player-eats-player, player-eats-food, and
// player-collects-powerup for every alive player against the quadtree.
func (s *Simulator) eatingPass() {
	w := s.world
	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		mouth := p.MouthCircle()
		candidates := w.tree.QueryCircle(p.Pos, ViewDistance)
		for _, c := range candidates {
			switch victim := c.Data.(type) {
			case *fish.Player:
				if victim.ID == p.ID || !victim.Alive {
					continue
				}
				if !geom.CircleOBB(mouth, victim.BodyOBB()) {
					continue
				}
				if p.Size < victim.Size*SizeMultiplier {
					continue
				}
				if victim.Species == fish.Blobfish && victim.Powerup.Active {
					continue // invulnerable
				}
				s.resolveEatPlayer(p, victim)
			case *fish.Food:
				if !foodHit(mouth, p.BodyOBB(), victim.Pos, victim.Radius) {
					continue
				}
				if _, stillThere := w.Food[victim.ID]; !stillThere {
					continue
				}
				delete(w.Food, victim.ID)
				p.Size = math.Min(p.Size+FoodValue, MaxSize)
				p.Score++
			case *fish.Powerup:
				if !foodHit(mouth, p.BodyOBB(), victim.Pos, victim.Radius) {
					continue
				}
				if _, stillThere := w.Powerups[victim.ID]; !stillThere {
					continue
				}
				if p.Powerup.Active {
					continue // only one active powerup at a time
				}
				delete(w.Powerups, victim.ID)
				s.applyPowerup(p)
			}
		}
	}
}

// foodHit tests a circular entity (food/powerup) against either the
// player's mouth circle or body OBB.
func foodHit(mouth geom.Circle, body geom.OBB, pos geom.Vec2, radius float64) bool {
	c := geom.Circle{Center: pos, Radius: radius}
	return geom.CircleCircle(mouth, c) || geom.CircleOBB(c, body)
}

func (s *Simulator) resolveEatPlayer(eater, victim *fish.Player) {
	eater.Size = math.Min(eater.Size+victim.Size*0.5, MaxSize)
	eater.Score += victim.Score + 100
	victim.Alive = false
	victim.KilledBy = eater.Name
	victim.RespawnIn = RespawnDelay
	victim.Vel = geom.Vec2{}
}

// applyPowerup sets the active flag and dispatches the species-specific
// effect.
func (s *Simulator) applyPowerup(p *fish.Player) {
	p.Powerup.Active = true
	p.Powerup.Remaining = PowerupDuration
	switch p.Species {
	case fish.Pufferfish:
		p.Powerup.BaseSize = p.Size
		p.Powerup.HasBaseSize = true
		p.Size = math.Min(p.Size*1.5, MaxSize)
	case fish.Swordfish, fish.Blobfish, fish.Shark, fish.Sacabambaspis:
		// swordfish: mouth scaling handled in MouthCircle while Active.
		// blobfish: invulnerability handled in eatingPass.
		// shark: unlocks the shark-vision stream (handled by the broadcaster).
		// sacabambaspis: cosmetic only, no simulation effect.
	}
}

// bouncePass pushes apart every unordered pair of alive players whose body
// OBBs overlap but where neither can eat the other.
func (s *Simulator) bouncePass() {
	w := s.world
	alive := make([]*fish.Player, 0, len(w.Players))
	for _, p := range w.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	for i := 0; i < len(alive); i++ {
		for j := i + 1; j < len(alive); j++ {
			a, b := alive[i], alive[j]
			collides, sep := geom.OBBOBB(a.BodyOBB(), b.BodyOBB())
			if !collides {
				continue
			}
			aEats := a.Size >= b.Size*SizeMultiplier
			bEats := b.Size >= a.Size*SizeMultiplier
			if aEats || bEats {
				continue // let the eating pass resolve this tick or next
			}
			a.Vel = geom.Sub(a.Vel, geom.Mul(sep, BounceStrength*0.016))
			b.Vel = geom.Add(b.Vel, geom.Mul(sep, BounceStrength*0.016))
		}
	}
}

func (s *Simulator) respawnPass(dt float64) {
	w := s.world
	for _, p := range w.Players {
		if p.Alive {
			continue
		}
		p.RespawnIn -= dt
		if p.RespawnIn > 0 {
			continue
		}
		p.Pos = w.RandomInteriorPos()
		p.Vel = geom.Vec2{}
		p.Rotation = 0
		p.Size = InitialSize
		p.Alive = true
		p.KilledBy = ""
		p.RespawnIn = 0
		p.Powerup = fish.PowerupState{}
	}
}

func (s *Simulator) powerupTimers(dt float64) {
	for _, p := range s.world.Players {
		if !p.Powerup.Active {
			continue
		}
		p.Powerup.Remaining -= dt
		if p.Powerup.Remaining > 0 {
			continue
		}
		p.Powerup.Active = false
		p.Powerup.Remaining = 0
		if p.Species == fish.Pufferfish && p.Powerup.HasBaseSize {
			p.Size = p.Powerup.BaseSize
		}
		p.Powerup.BaseSize = 0
		p.Powerup.HasBaseSize = false
	}
}

func (s *Simulator) spawners() {
	w := s.world
	spawned := 0
	for len(w.Food) < MaxFoodCount && spawned < FoodSpawnRate {
		f := w.newFood()
		w.Food[f.ID] = f
		spawned++
	}
	for len(w.Powerups) < MaxPowerupCount {
		p := w.newPowerup()
		w.Powerups[p.ID] = p
	}
}
