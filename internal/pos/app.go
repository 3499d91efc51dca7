// Package pos assembles the POS service: public dashboard routes over the
// catalog and the ledger, token-protected sale entry, operator auth, and
// the shared middleware/metrics plumbing.
package pos

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"MiniPOS/internal/catalog"
	"MiniPOS/internal/ledger"
	"MiniPOS/internal/operator"
	"MiniPOS/internal/sales"
	"MiniPOS/pkg/kit"
)

type Deps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	Catalog   catalog.Store
	Ledger    ledger.Store
	Operators operator.Store
	JWT       *operator.TokenMaker

	LoginLimiter *kit.IPRateLimiter

	// Now is overridable in tests; nil means time.Now.
	Now func() time.Time
}

func NewHandler(deps Deps) http.Handler {
	var salesMetrics *sales.Metrics
	if deps.Registry != nil {
		salesMetrics = sales.NewMetrics(deps.Registry)
	}

	recorder := &sales.Recorder{
		Catalog: deps.Catalog,
		Ledger:  deps.Ledger,
		Drafts:  sales.NewDraftBook(),
		Log:     deps.Log,
		Metrics: salesMetrics,
		Now:     deps.Now,
	}

	catalogSrv := &catalog.Server{Store: deps.Catalog, Log: deps.Log}
	ledgerSrv := &ledger.Server{Store: deps.Ledger, Log: deps.Log, Now: deps.Now}
	salesSrv := &sales.Server{Recorder: recorder, Log: deps.Log}

	var operatorSrv *operator.Server
	if deps.Operators != nil {
		operatorSrv = &operator.Server{Log: deps.Log, Store: deps.Operators, JWT: deps.JWT}
		if deps.LoginLimiter != nil {
			operatorSrv.LoginLimit = deps.LoginLimiter.Middleware
		}
	}

	r := chi.NewRouter()
	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", readyz(deps))

	catalogSrv.Register(r)
	ledgerSrv.Register(r)

	if operatorSrv != nil {
		operatorSrv.Register(r)

		r.Group(func(pr chi.Router) {
			pr.Use(operator.RequireOperator(deps.JWT))
			salesSrv.Register(pr)
		})
	} else {
		salesSrv.Register(r)
	}

	return r
}

func setupMiddleware(r *chi.Mux, deps Deps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	if deps.Log != nil {
		r.Use(kit.Logging(deps.Log))
	}
}

func setupMetrics(r *chi.Mux, deps Deps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func readyz(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := deps.Catalog.Ping(ctx); err != nil {
			notReady(w, r, deps.Log, "catalog", err)
			return
		}
		if err := deps.Ledger.Ping(ctx); err != nil {
			notReady(w, r, deps.Log, "ledger", err)
			return
		}
		if deps.Operators != nil {
			if err := deps.Operators.Ping(ctx); err != nil {
				notReady(w, r, deps.Log, "operators", err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

func notReady(w http.ResponseWriter, r *http.Request, log *zap.Logger, store string, err error) {
	if log != nil {
		log.Warn("readyz failed", zap.String("store", store), zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", map[string]any{"store": store})
}
