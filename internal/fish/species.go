package fish

// Species is a tagged variant identifying a player's fish kind. Species
// differences are a data table plus a small powerup-effect switch, never
// inheritance.
type Species string

const (
	Swordfish     Species = "swordfish"
	Blobfish      Species = "blobfish"
	Pufferfish    Species = "pufferfish"
	Shark         Species = "shark"
	Sacabambaspis Species = "sacabambaspis"
)

// DefaultSpecies is assigned to a join that omits or misspells a species tag.
const DefaultSpecies = Swordfish

// Hitbox holds the unit-less per-species ratios applied to a fish's current
// size to derive its body and mouth dimensions.
type Hitbox struct {
	BodyW       float64
	BodyH       float64
	MouthR      float64
	MouthOffset float64
}

// hitboxTable is the canonical data table of per-species hitbox ratios. The
// "default" row is used for any species string not recognized below.
var hitboxTable = map[Species]Hitbox{
	Swordfish:     {BodyW: 1.3, BodyH: 0.6, MouthR: 0.25, MouthOffset: 0.6},
	Blobfish:      {BodyW: 1.3, BodyH: 1.3, MouthR: 0.35, MouthOffset: 0.6},
	Pufferfish:    {BodyW: 1.2, BodyH: 1.2, MouthR: 0.40, MouthOffset: 0.6},
	Shark:         {BodyW: 1.8, BodyH: 0.9, MouthR: 0.35, MouthOffset: 0.9},
	Sacabambaspis: {BodyW: 2.0, BodyH: 1.0, MouthR: 0.40, MouthOffset: 0.9},
}

var defaultHitbox = Hitbox{BodyW: 2.5, BodyH: 1.0, MouthR: 0.30, MouthOffset: 1.2}

// HitboxFor returns the hitbox ratios for a species, falling back to the
// default row for anything unrecognized.
func HitboxFor(s Species) Hitbox {
	if h, ok := hitboxTable[s]; ok {
		return h
	}
	return defaultHitbox
}

// Normalize maps an arbitrary client-supplied species string onto a known
// Species, defaulting to swordfish (join handling).
func Normalize(raw string) Species {
	switch Species(raw) {
	case Swordfish, Blobfish, Pufferfish, Shark, Sacabambaspis:
		return Species(raw)
	default:
		return DefaultSpecies
	}
}
