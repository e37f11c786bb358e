package racing

import "time"

// Canonical racing constants.
const (
	MaxPlayers = 8

	LobbyWaitTime = 10 * time.Second // nominal timeRemaining value shown during Lobby
	CountdownTime = 3 * time.Second

	CyclesPerRace = 50
	CycleProgress = 1.0 / CyclesPerRace // progress = min(1, cycles * CycleProgress)

	TickInterval = 100 * time.Millisecond

	// StallTimeout is how long a player near the finish line can go
	// without a state update before the tick loop force-finishes them.
	StallTimeout     = 3 * time.Second
	StallProgressMin = 0.96
)
