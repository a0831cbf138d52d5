package api

import (
	"fmt"
	"log"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sqlc-dev/pqtype"

	"github.com/saeidalz13/battleship-solo/db/sqlc"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

const (
	StageProd = "prod"
	StageDev  = "dev"
)

const (
	defaultPort             = 8000
	defaultOpponentDelayMin = time.Second
	defaultOpponentDelayMax = time.Second * 2
)

var upgrader = websocket.Upgrader{
	// good average time since this is not a high-latency operation such as video streaming
	HandshakeTimeout: time.Second * 5,

	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type RequestProcessor struct {
	port  int
	stage string
	seed  *uint64

	opponentDelayMin time.Duration
	opponentDelayMax time.Duration

	sessionManager mc.SessionManager
	gameManager    mb.GameManager

	// nil when the server runs without a database
	analytics *sqlc.AnalyticsManager

	registry *prometheus.Registry
	metrics  *Metrics
}

type Option func(*RequestProcessor) error

func NewRequestProcessor(optFuncs ...Option) *RequestProcessor {
	rp := RequestProcessor{
		port:             defaultPort,
		stage:            StageDev,
		opponentDelayMin: defaultOpponentDelayMin,
		opponentDelayMax: defaultOpponentDelayMax,
	}

	for _, opt := range optFuncs {
		if err := opt(&rp); err != nil {
			panic(err)
		}
	}

	seed := rand.Uint64()
	if rp.seed != nil {
		seed = *rp.seed
	}

	if rp.registry == nil {
		rp.registry = prometheus.NewRegistry()
	}

	rp.metrics = NewMetrics(rp.registry)
	rp.sessionManager = mc.NewBattleshipSessionManager()
	rp.gameManager = mb.NewBattleshipGameManager(seed)

	return &rp
}

func WithPort(port int) Option {
	return func(rp *RequestProcessor) error {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid port: %d", port)
		}
		rp.port = port
		return nil
	}
}

func WithStage(stage string) Option {
	return func(rp *RequestProcessor) error {
		if stage != StageProd && stage != StageDev {
			return fmt.Errorf("invalid type of development stage: %s", stage)
		}
		rp.stage = stage
		return nil
	}
}

// Analytics counters are skipped entirely when q is nil.
func WithQuerier(q sqlc.Querier) Option {
	return func(rp *RequestProcessor) error {
		if q != nil {
			rp.analytics = sqlc.NewDbManager(q).Analytics
		}
		return nil
	}
}

// The opponent answers each player shot after a uniformly random delay in
// [min, max].
func WithOpponentDelay(min, max time.Duration) Option {
	return func(rp *RequestProcessor) error {
		if min < 0 || max < min {
			return fmt.Errorf("invalid opponent delay range: [%s, %s]", min, max)
		}
		rp.opponentDelayMin = min
		rp.opponentDelayMax = max
		return nil
	}
}

// Seeds the game manager so the sequence of created games is reproducible.
func WithSeed(seed uint64) Option {
	return func(rp *RequestProcessor) error {
		rp.seed = &seed
		return nil
	}
}

func WithMetrics(registry *prometheus.Registry) Option {
	return func(rp *RequestProcessor) error {
		if registry == nil {
			return fmt.Errorf("metrics registry must not be nil")
		}
		rp.registry = registry
		return nil
	}
}

func (rp *RequestProcessor) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", rp.port)
}

func (rp *RequestProcessor) Stage() string {
	return rp.stage
}

func (rp *RequestProcessor) SessionManager() mc.SessionManager {
	return rp.sessionManager
}

func (rp *RequestProcessor) GameManager() mb.GameManager {
	return rp.gameManager
}

func (rp *RequestProcessor) Metrics() *Metrics {
	return rp.metrics
}

func (rp *RequestProcessor) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /battleship", rp)
	mux.Handle("GET /metrics", promhttp.HandlerFor(rp.registry, promhttp.HandlerOpts{}))
	return mux
}

func (rp *RequestProcessor) opponentDelay() time.Duration {
	spread := rp.opponentDelayMax - rp.opponentDelayMin
	if spread <= 0 {
		return rp.opponentDelayMin
	}
	return rp.opponentDelayMin + time.Duration(rand.Int64N(int64(spread)+1))
}

func getServerIpNet(localAddr net.Addr) (net.IPNet, error) {
	host, _, err := net.SplitHostPort(localAddr.String())
	if err != nil {
		return net.IPNet{}, err
	}

	parsedIP := net.ParseIP(host)
	if parsedIP == nil {
		return net.IPNet{}, fmt.Errorf("invalid server ip: %s", host)
	}

	if ipv4 := parsedIP.To4(); ipv4 != nil {
		return net.IPNet{IP: ipv4, Mask: net.CIDRMask(32, 32)}, nil
	}
	return net.IPNet{IP: parsedIP, Mask: net.CIDRMask(128, 128)}, nil
}

func (rp *RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	serverIpNet, err := getServerIpNet(conn.LocalAddr())
	if err != nil {
		log.Println("failed to extract server ip:", err)
		_ = conn.Close()
		return
	}

	log.Println("a new connection established\tRemote Addr: ", conn.RemoteAddr().String())

	rp.metrics.ActiveSessions.Inc()
	defer rp.metrics.ActiveSessions.Dec()

	loop := newSessionLoop(rp, rp.sessionManager.GenerateNewSession(conn), pqtype.Inet{IPNet: serverIpNet, Valid: true})
	loop.run()
}
