package battleship

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

// Game binds a snapshot to the engine that advances it. A game is driven
// by exactly one session goroutine, so it carries no lock of its own.
type Game struct {
	uuid      string
	engine    *Engine
	state     State
	createdAt time.Time
}

func newGame(gameUuid string, rng Randomizer) *Game {
	return &Game{
		uuid:      gameUuid,
		engine:    NewEngine(rng),
		state:     NewState(),
		createdAt: time.Now(),
	}
}

func (g *Game) Uuid() string {
	return g.uuid
}

func (g *Game) State() State {
	return g.state
}

func (g *Game) CreatedAt() time.Time {
	return g.createdAt
}

// Apply advances the game only when the engine accepts the action.
func (g *Game) Apply(action Action) (State, error) {
	next, err := g.engine.Apply(g.state, action)
	if err != nil {
		return g.state, err
	}
	g.state = next
	return next, nil
}

type GameManager interface {
	CreateGame() *Game
	GetGame(gameUuid string) (*Game, error)
	TerminateGame(gameUuid string)
	CountGames() int
}

type BattleshipGameManager struct {
	games map[string]*Game
	seeds *rand.Rand
	mu    sync.RWMutex
}

var _ GameManager = (*BattleshipGameManager)(nil)

// Every game gets its own random source derived from seed, so a fixed
// seed makes the sequence of created games reproducible.
func NewBattleshipGameManager(seed uint64) *BattleshipGameManager {
	return &BattleshipGameManager{
		games: make(map[string]*Game, 10),
		seeds: NewRandomizer(seed),
	}
}

func (bgm *BattleshipGameManager) CreateGame() *Game {
	bgm.mu.Lock()
	defer bgm.mu.Unlock()

	gameUuid := uuid.NewString()[:8]
	game := newGame(gameUuid, NewRandomizer(bgm.seeds.Uint64()))
	bgm.games[gameUuid] = game

	return game
}

func (bgm *BattleshipGameManager) GetGame(gameUuid string) (*Game, error) {
	bgm.mu.RLock()
	game, prs := bgm.games[gameUuid]
	bgm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrGameNotExist(gameUuid)
	}

	return game, nil
}

func (bgm *BattleshipGameManager) TerminateGame(gameUuid string) {
	bgm.mu.Lock()
	delete(bgm.games, gameUuid)
	bgm.mu.Unlock()
}

func (bgm *BattleshipGameManager) CountGames() int {
	bgm.mu.RLock()
	defer bgm.mu.RUnlock()
	return len(bgm.games)
}
