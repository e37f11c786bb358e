// Command server runs the fish game backend: the persistent ocean arena and
// the racing lobby manager, sharing one process and one HTTP listener.
// Wiring here is grounded on the original main.go (upgrade, IP rate
// limiting, join/disconnect closures), generalized to three endpoints and
// supervised with golang.org/x/sync/errgroup instead of a bare
// http.ListenAndServe call.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/tathan08/fishy-business/internal/geom"
	"github.com/tathan08/fishy-business/internal/netconn"
	"github.com/tathan08/fishy-business/internal/ocean"
	"github.com/tathan08/fishy-business/internal/racewire"
	"github.com/tathan08/fishy-business/internal/racing"
	"github.com/tathan08/fishy-business/internal/wire"
)

const (
	listenAddr    = ":8080"
	ipCooldownSec = 2
	maxPlayers    = 2000
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// ipRateLimiter tracks last connection time per IP and rejects a reconnect
// attempt within the cooldown window.
type ipRateLimiter struct {
	mu    sync.Mutex
	times map[string]time.Time
}

func newIPRateLimiter() *ipRateLimiter {
	return &ipRateLimiter{times: make(map[string]time.Time)}
}

func (rl *ipRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if last, ok := rl.times[ip]; ok {
		if time.Since(last) < ipCooldownSec*time.Second {
			return false
		}
	}
	rl.times[ip] = time.Now()
	return true
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	ip, _, _ := net.SplitHostPort(r.RemoteAddr)
	return ip
}

type server struct {
	oceanWorld *ocean.World
	oceanSim   *ocean.Simulator
	oceanConns *netconn.Manager

	racingWorld *racing.RacingWorld
	racingConns *netconn.Manager
	// playerRace tracks which race each racing connection joined, so a
	// disconnect can find its race without scanning every race.
	mu         sync.Mutex
	playerRace map[string]*racing.Race

	rateLimiter *ipRateLimiter
}

func newServer() *server {
	w := ocean.NewWorld()
	return &server{
		oceanWorld:  w,
		oceanSim:    ocean.NewSimulator(w),
		oceanConns:  netconn.NewManager(),
		racingWorld: racing.NewRacingWorld(),
		racingConns: netconn.NewManager(),
		playerRace:  make(map[string]*racing.Race),
		rateLimiter: newIPRateLimiter(),
	}
}

func main() {
	srv := newServer()

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleLiveness)
	mux.HandleFunc("/ws", srv.handleOceanWS)
	mux.HandleFunc("/ws/meta", srv.handleOceanMetaWS)
	mux.HandleFunc("/ws/racing", srv.handleRacingWS)

	httpServer := &http.Server{Addr: listenAddr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		go srv.oceanSim.Run()
		<-gctx.Done()
		return nil
	})
	g.Go(func() error {
		ocean.NewBroadcaster(srv.oceanWorld).Run()
		<-gctx.Done()
		return nil
	})
	g.Go(func() error {
		log.Printf("fishy-business listening on %s", listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		srv.closeAllConns()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// closeAllConns closes every live ocean and racing connection on shutdown,
// iterating a manager snapshot so the manager lock is not held while each
// connection closes (a closing connection's read loop removes itself from
// the manager).
func (s *server) closeAllConns() {
	for _, c := range s.oceanConns.Snapshot() {
		c.Close()
	}
	for _, c := range s.racingConns.Snapshot() {
		c.Close()
	}
}

func (s *server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// handleOceanWS upgrades /ws, joins the client into the ocean world, and
// runs its read loop until disconnect.
func (s *server) handleOceanWS(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ocean ws upgrade error: %v", err)
		return
	}
	if s.oceanConns.Count() >= maxPlayers {
		sendJSONError(ws, "server full")
		return
	}
	if !s.rateLimiter.allow(ip) {
		sendJSONError(ws, "too many connections, wait a moment")
		return
	}

	id := uuid.NewString()
	conn := netconn.New(id, ws, wire.Codec{})
	s.oceanConns.Add(conn)

	var joined bool
	var mu sync.Mutex

	onMessage := func(raw interface{}) {
		msg, ok := raw.(wire.ClientMessage)
		if !ok {
			return
		}
		switch msg.Type {
		case wire.ClientJoin:
			mu.Lock()
			if joined {
				mu.Unlock()
				return
			}
			joined = true
			mu.Unlock()
			p := s.oceanWorld.Join(id, msg.Name, msg.Model, conn)
			_ = conn.Enqueue(wire.WelcomeFrame{
				ID: id, Name: p.Name, Model: string(p.Species),
				WorldW: ocean.WorldW, WorldH: ocean.WorldH,
			})
		case wire.ClientInput:
			s.oceanWorld.EnqueueInput(ocean.InputMsg{
				PlayerID: id,
				Dir:      geom.Vec2{X: msg.DirX, Y: msg.DirY},
				Boost:    msg.Boost,
				Seq:      msg.Seq,
			})
		case wire.ClientPing:
			_ = conn.Enqueue(wire.PongFrame{})
		}
	}

	onClose := func() {
		s.oceanConns.Remove(id)
		s.oceanWorld.Disconnect(id)
		log.Printf("ocean: player disconnected: %s", id)
	}

	go conn.WriteLoop(r.Context())
	conn.ReadLoop(onMessage, onClose)
}

// handleOceanMetaWS upgrades /ws/meta?id=<clientId> and attaches it as the
// already-joined client's secondary low-rate metadata channel.
func (s *server) handleOceanMetaWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	conn, ok := s.oceanConns.Get(id)
	if !ok {
		http.Error(w, "unknown client id", http.StatusBadRequest)
		return
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ocean meta ws upgrade error: %v", err)
		return
	}
	conn.AttachMeta(ws)
}

// handleRacingWS upgrades /ws/racing and runs the racing read loop.
func (s *server) handleRacingWS(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("racing ws upgrade error: %v", err)
		return
	}
	if !s.rateLimiter.allow(ip) {
		sendJSONError(ws, "too many connections, wait a moment")
		return
	}

	id := uuid.NewString()
	codec := netconn.JSONCodec{NewInbound: func() interface{} { return &racewire.ClientMessage{} }}
	conn := netconn.New(id, ws, codec)
	s.racingConns.Add(conn)

	onMessage := func(raw interface{}) {
		msg, ok := raw.(*racewire.ClientMessage)
		if !ok {
			return
		}
		switch msg.Type {
		case racewire.ClientJoin:
			_, race, ok := s.racingWorld.Join(id, msg.Name, msg.Model, conn)
			if !ok {
				_ = conn.Enqueue(racewire.ErrorMsg{Type: racewire.ServerError, Message: "lobby full"})
				return
			}
			s.mu.Lock()
			s.playerRace[id] = race
			s.mu.Unlock()
			_ = conn.Enqueue(racewire.WelcomeMsg{
				Type: racewire.ServerWelcome, PlayerID: id, RaceID: race.ID,
				Name: msg.Name, Model: msg.Model, RaceState: string(race.State()),
			})
			race.BroadcastLobbyState()
		case racewire.ClientReady:
			if race := s.raceFor(id); race != nil {
				if !race.Ready(id) {
					race.BroadcastLobbyState()
				}
			}
		case racewire.ClientMouthInput:
			// mouthInput alone does not affect progress (open question).
		case racewire.ClientMouthCycle:
			if race := s.raceFor(id); race != nil {
				race.HandleMouthCycle(id)
			}
		case racewire.ClientStateUpdate:
			if race := s.raceFor(id); race != nil && msg.FishState != nil {
				race.HandleStateUpdate(id, msg.FishState.MouthCycles)
			}
		case racewire.ClientPing:
			_ = conn.Enqueue(racewire.PongMsg{Type: racewire.ServerPong})
		}
	}

	onClose := func() {
		s.racingConns.Remove(id)
		if race := s.raceFor(id); race != nil {
			removeFromWorld := race.Disconnect(id)
			if removeFromWorld {
				s.racingWorld.RemoveIfDone(race)
			}
		}
		s.mu.Lock()
		delete(s.playerRace, id)
		s.mu.Unlock()
		log.Printf("racing: player disconnected: %s", id)
	}

	go conn.WriteLoop(r.Context())
	conn.ReadLoop(onMessage, onClose)
}

func (s *server) raceFor(id string) *racing.Race {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerRace[id]
}

func sendJSONError(ws *websocket.Conn, msg string) {
	data, _ := json.Marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{Type: "error", Message: msg})
	_ = ws.WriteMessage(websocket.TextMessage, data)
	ws.Close()
}
