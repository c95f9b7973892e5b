// Package server wires the HTTP surface: public simulation endpoints, account
// endpoints and the authenticated engineering tools.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"StructFlow/internal/auth"
	"StructFlow/internal/calc/flow"
	"StructFlow/internal/calc/loads"
	"StructFlow/internal/calc/premium/autodesign"
	"StructFlow/internal/calc/premium/batch"
	"StructFlow/internal/calc/premium/importer"
	"StructFlow/internal/calc/premium/recommend"
	"StructFlow/internal/calc/report"
	"StructFlow/internal/calc/stress"
	"StructFlow/internal/history"
	"StructFlow/internal/intake"
	"StructFlow/internal/notify"
	"StructFlow/internal/repo"
	"StructFlow/internal/sim"
)

type Deps struct {
	Log        *zap.Logger
	Repo       repo.Repository
	Publisher  notify.Publisher
	TokenKey   []byte
	RatePerSec float64
	Burst      int
	CORSOrigin string
	// SecureCookie should be set when serving TLS.
	SecureCookie bool
	Now          func() time.Time
}

func (d *Deps) defaults() {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Publisher == nil {
		d.Publisher = notify.Nop{}
	}
	if d.RatePerSec <= 0 {
		d.RatePerSec = 1
	}
	if d.Burst <= 0 {
		d.Burst = 3
	}
	if d.CORSOrigin == "" {
		d.CORSOrigin = "*"
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// NewRouter builds the full handler chain. Repo must be set.
func NewRouter(d Deps) http.Handler {
	d.defaults()
	r := mux.NewRouter()
	HandleList(r, d)
	return Chain(r,
		Recover(d.Log),
		AccessLog(d.Log),
		OTel("structflow"),
		CORS(d.CORSOrigin),
	)
}

func HandleList(r *mux.Router, d Deps) {
	engine := sim.New(sim.WithClock(d.Now))
	a := &handlers{
		log:      d.Log,
		parser:   intake.NewParser(nil),
		sim:      engine,
		recorder: &history.Recorder{Repo: d.Repo, Publisher: d.Publisher, Log: d.Log},
		now:      d.Now,
	}
	if p, ok := d.Repo.(pinger); ok {
		a.db = p
	}
	authEnv := &auth.Authenv{JWTkey: d.TokenKey, Repo: d.Repo, Log: d.Log, SecureCookie: d.SecureCookie}
	limiter := auth.NewIPRateLimiter(rate.Limit(d.RatePerSec), d.Burst)
	runner := &batch.Runner{Parser: a.parser, Simulator: engine, Now: d.Now}

	r.HandleFunc("/", a.index).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/health", a.health).Methods("GET")
	api.HandleFunc("/validate", a.validateDoc).Methods("POST")
	api.HandleFunc("/simulate", a.simulate).Methods("POST")
	api.HandleFunc("/intake", a.intake).Methods("POST")
	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/simulate", a.simulate).Methods("POST")
	secureApi.HandleFunc("/intake", a.intake).Methods("POST")

	flowH := &flow.Handler{}
	stressH := &stress.Handler{}
	loadsH := &loads.Handler{}
	reportH := &report.Handler{Runner: runner}
	secureApi.HandleFunc("/tools/flow/calc", flowH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/stress/calc", stressH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/loads/calc", loadsH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/report/pdf", reportH.Generate).Methods("POST")

	batchH := &batch.Handler{Runner: runner}
	importH := &importer.Handler{Runner: runner}
	autoH := &autodesign.Handler{}
	recommendH := &recommend.Handler{}
	secureApi.HandleFunc("/premium/batch", batchH.Simulate).Methods("POST")
	secureApi.HandleFunc("/premium/import", importH.Import).Methods("POST")
	secureApi.HandleFunc("/premium/autodesign", autoH.Pipe).Methods("POST")
	secureApi.HandleFunc("/premium/recommend/slope", recommendH.Slope).Methods("POST")

	historyH := &history.Handler{Repo: d.Repo}
	secureApi.HandleFunc("/runs", historyH.List).Methods("GET")
	secureApi.HandleFunc("/runs/{id}", historyH.Get).Methods("GET")
}
