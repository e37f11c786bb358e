package racing

import (
	"sync"

	"github.com/google/uuid"
)

// RacingWorld holds every in-flight race plus the one distinguished waiting
// lobby new joiners land in.
type RacingWorld struct {
	mu           sync.RWMutex
	races        map[string]*Race
	waitingLobby *Race
}

// NewRacingWorld creates a world with one empty waiting lobby.
func NewRacingWorld() *RacingWorld {
	w := &RacingWorld{races: make(map[string]*Race)}
	lobby := newRace(uuid.NewString(), w)
	w.races[lobby.ID] = lobby
	w.waitingLobby = lobby
	return w
}

// Join places a new player into the current waiting lobby and returns the
// player, the race it landed in, and whether the join succeeded. The join
// fails while the waiting lobby already holds MaxPlayers; a fresh lobby
// replaces it only once it enters Countdown.
func (w *RacingWorld) Join(id, name, species string, conn Sender) (*RacingPlayer, *Race, bool) {
	w.mu.RLock()
	lobby := w.waitingLobby
	w.mu.RUnlock()
	p, ok := lobby.Join(id, name, species, conn)
	return p, lobby, ok
}

// replaceWaitingLobby atomically swaps in a fresh empty lobby once old
// transitions out of Lobby state.
func (w *RacingWorld) replaceWaitingLobby(old *Race) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.waitingLobby != old {
		return
	}
	fresh := newRace(uuid.NewString(), w)
	w.races[fresh.ID] = fresh
	w.waitingLobby = fresh
}

// RaceByID looks up a race by id.
func (w *RacingWorld) RaceByID(id string) (*Race, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.races[id]
	return r, ok
}

// RemoveIfDone drops race from the world map once it is Finished and empty;
// a depleted waiting lobby is left in place so new joiners can replenish it.
func (w *RacingWorld) RemoveIfDone(r *Race) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.waitingLobby == r {
		return
	}
	if r.State() == StateFinished && r.PlayerCount() == 0 {
		delete(w.races, r.ID)
	}
}
