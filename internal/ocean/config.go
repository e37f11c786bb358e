package ocean

import "time"

// Canonical ocean constants. Mirrors the original config.go single const
// block.
const (
	WorldW = 4000.0
	WorldH = 4000.0

	TickRate      = 30 // Hz
	BroadcastRate = 15 // Hz — older clients assumed 20Hz; 15Hz is
	// the value this server actually runs at.
	LeaderboardRate = 1 // Hz
	SharkVisionRate = 2 // Hz

	InitialSize = 20.0
	MinSize     = 10.0
	MaxSize     = 200.0

	PlayerSpeed      = 200.0 // px/sec
	BoostMultiplier  = 2.0
	BoostCostPerSec  = 3.0
	ViewDistance     = 600.0
	VelocityLerp     = 0.1
	BounceStrength   = 150.0
	SizeMultiplier   = 1.1 // eat threshold: eater.size >= victim.size * this
	SpawnMargin      = 100.0

	MaxFoodCount    = 300
	FoodValue       = 2.0
	MinFoodRadius   = 3.0
	MaxFoodRadius   = 10.0
	FoodSpawnRate   = 10 // items spawned per tick while under MaxFoodCount

	MaxPowerupCount  = 8
	PowerupDuration  = 5.0 // seconds
	PowerupRadius    = 12.0

	RespawnDelay = 3.0 // seconds

	InputQueueSize = 256
)

const (
	TickInterval        = time.Second / TickRate
	BroadcastInterval   = time.Second / BroadcastRate
	LeaderboardInterval = time.Second / LeaderboardRate
	SharkVisionInterval = time.Second / SharkVisionRate
)
