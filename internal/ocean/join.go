package ocean

import (
	"strings"

	"github.com/tathan08/fishy-business/internal/fish"
	"github.com/tathan08/fishy-business/internal/geom"
)

// MaxNameLen caps a display name's length.
const MaxNameLen = 20

// SanitizeName truncates name to MaxNameLen and falls back to "Fish" when
// empty.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Fish"
	}
	if len(name) > MaxNameLen {
		return name[:MaxNameLen]
	}
	return name
}

// Join constructs a new player at a random interior position and registers
// it in the world. Caller must not hold w.mu; Join acquires it.
func (w *World) Join(id, rawName, rawSpecies string, conn fish.Sender) *fish.Player {
	species := fish.Normalize(rawSpecies)
	name := SanitizeName(rawName)
	p := fish.NewPlayer(id, name, species, geom.Vec2{}, InitialSize)
	p.Conn = conn

	w.mu.Lock()
	defer w.mu.Unlock()
	p.Pos = w.RandomInteriorPos()
	w.AddPlayer(p)
	return p
}

// Disconnect removes a player from the world entirely.
func (w *World) Disconnect(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.RemovePlayer(id)
}
