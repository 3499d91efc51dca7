package ledger

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniPOS/pkg/kit"
)

const defaultTopLimit = 5

type Server struct {
	Store Store
	Log   *zap.Logger

	// Now is overridable in tests; nil means time.Now.
	Now func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) Register(r chi.Router) {
	r.Get("/sales", s.list)
	r.Get("/sales/summary", s.summary)
	r.Get("/sales/top-products", s.topProducts)
	r.Get("/sales/daily-revenue", s.dailyRevenue)
	r.Get("/sales/export", s.export)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if s.Log != nil {
		s.Log.Error(msg, zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

// list renders the sale history, most recent append first. Storage order is
// append order; the reversal here is presentation only.
func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	var (
		recs []SaleRecord
		err  error
	)

	q := r.URL.Query()
	switch {
	case q.Get("day") != "":
		day := q.Get("day")
		if _, perr := time.Parse(DayLayout, day); perr != nil {
			kit.WriteError(w, r, http.StatusBadRequest, "bad day", map[string]any{"want": DayLayout})
			return
		}
		recs, err = s.Store.ByDay(r.Context(), day)
	case q.Get("period") != "":
		period := q.Get("period")
		if _, perr := time.Parse(PeriodLayout, period); perr != nil {
			kit.WriteError(w, r, http.StatusBadRequest, "bad period", map[string]any{"want": PeriodLayout})
			return
		}
		recs, err = s.Store.ByPeriod(r.Context(), period)
	default:
		recs, err = s.Store.List(r.Context())
	}
	if err != nil {
		s.serverError(w, r, "list sales failed", err)
		return
	}

	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	kit.WriteJSON(w, http.StatusOK, recs)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	t, err := s.Store.Summary(r.Context(), s.now().Format(DayLayout))
	if err != nil {
		s.serverError(w, r, "sales summary failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, t)
}

func (s *Server) topProducts(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			kit.WriteError(w, r, http.StatusBadRequest, "bad limit", nil)
			return
		}
		limit = n
	}

	totals, err := s.Store.TopProducts(r.Context())
	if err != nil {
		s.serverError(w, r, "top products failed", err)
		return
	}
	if len(totals) > limit {
		totals = totals[:limit]
	}
	kit.WriteJSON(w, http.StatusOK, totals)
}

func (s *Server) dailyRevenue(w http.ResponseWriter, r *http.Request) {
	m, err := time.Parse(PeriodLayout, r.URL.Query().Get("month"))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad month", map[string]any{"want": PeriodLayout})
		return
	}

	days, err := s.Store.RevenueByDay(r.Context(), m.Year(), m.Month())
	if err != nil {
		s.serverError(w, r, "daily revenue failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, days)
}

// export serves one day of the ledger as a CSV download named after the
// day, e.g. sales_report_2024-07-15.csv.
func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	if _, err := time.Parse(DayLayout, day); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad day", map[string]any{"want": DayLayout})
		return
	}

	recs, err := s.Store.ByDay(r.Context(), day)
	if err != nil {
		s.serverError(w, r, "export failed", err)
		return
	}

	header := Header()
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, Row(rec, header))
	}

	filename := fmt.Sprintf("sales_report_%s.csv", day)
	if err := kit.WriteCSV(w, filename, header, rows); err != nil && s.Log != nil {
		s.Log.Error("export write failed", zap.Error(err), zap.String("day", day))
	}
}
