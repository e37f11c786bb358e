package fish

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tathan08/fishy-business/internal/geom"
)

func TestNormalize(t *testing.T) {
	Convey("Given a raw client-supplied species string", t, func() {
		Convey("A recognized species passes through unchanged", func() {
			So(Normalize("shark"), ShouldEqual, Shark)
		})

		Convey("An unrecognized or empty species falls back to the default", func() {
			So(Normalize("eel"), ShouldEqual, DefaultSpecies)
			So(Normalize(""), ShouldEqual, DefaultSpecies)
		})
	})
}

func TestHitboxFor(t *testing.T) {
	Convey("Given a species with a table entry", t, func() {
		h := HitboxFor(Shark)
		So(h, ShouldResemble, hitboxTable[Shark])
	})

	Convey("Given an unrecognized species", t, func() {
		h := HitboxFor(Species("not-a-fish"))
		So(h, ShouldResemble, defaultHitbox)
	})
}

func TestPlayerHitboxes(t *testing.T) {
	Convey("Given a freshly joined player", t, func() {
		p := NewPlayer("id1", "Nemo", Swordfish, geom.Vec2{X: 100, Y: 100}, 20.0)

		Convey("BodyOBB scales with size and the species's body ratios", func() {
			obb := p.BodyOBB()
			h := HitboxFor(Swordfish)
			So(obb.Center, ShouldResemble, p.Pos)
			So(obb.HalfExtents.X, ShouldEqual, p.Size*h.BodyW/2)
			So(obb.HalfExtents.Y, ShouldEqual, p.Size*h.BodyH/2)
		})

		Convey("BodyOBB caps its scale at MaxSize even if Size exceeds it", func() {
			p.Size = MaxSize * 2
			obb := p.BodyOBB()
			h := HitboxFor(Swordfish)
			So(obb.HalfExtents.X, ShouldEqual, MaxSize*h.BodyW/2)
		})

		Convey("MouthCircle sits offset from the player's position along its rotation", func() {
			p.Rotation = 0
			mouth := p.MouthCircle()
			h := HitboxFor(Swordfish)
			So(mouth.Center.X, ShouldAlmostEqual, p.Pos.X+p.Size*h.MouthOffset, 1e-9)
			So(mouth.Center.Y, ShouldAlmostEqual, p.Pos.Y, 1e-9)
			So(mouth.Radius, ShouldEqual, p.Size*h.MouthR)
		})

		Convey("An active powerup doubles a swordfish's mouth radius and widens its offset", func() {
			base := p.MouthCircle()
			p.Powerup.Active = true
			boosted := p.MouthCircle()
			So(boosted.Radius, ShouldAlmostEqual, base.Radius*2, 1e-9)
			So(boosted.Center.X-p.Pos.X, ShouldAlmostEqual, (base.Center.X-p.Pos.X)*1.5, 1e-9)
		})

		Convey("A non-swordfish species is unaffected by the powerup mouth boost", func() {
			p.Species = Blobfish
			base := p.MouthCircle()
			p.Powerup.Active = true
			boosted := p.MouthCircle()
			So(boosted.Radius, ShouldAlmostEqual, base.Radius, 1e-9)
		})
	})
}

func TestMouthCircleRotation(t *testing.T) {
	Convey("Given a player facing straight up", t, func() {
		p := NewPlayer("id2", "Dory", Shark, geom.Vec2{}, 50.0)
		p.Rotation = math.Pi / 2
		mouth := p.MouthCircle()
		h := HitboxFor(Shark)
		So(mouth.Center.X, ShouldAlmostEqual, 0, 1e-6)
		So(mouth.Center.Y, ShouldAlmostEqual, p.Size*h.MouthOffset, 1e-6)
	})
}
