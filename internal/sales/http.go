package sales

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniPOS/internal/catalog"
	"MiniPOS/internal/ledger"
	"MiniPOS/internal/operator"
	"MiniPOS/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Recorder *Recorder
	Log      *zap.Logger
}

func (s *Server) Register(r chi.Router) {
	r.Post("/sales/drafts", s.createDraft)
	r.Get("/sales/drafts/{id}", s.getDraft)
	r.Post("/sales/drafts/{id}/confirm", s.confirm)
	r.Post("/sales/drafts/{id}/commit", s.commit)
}

type draftReq struct {
	ProductName   string `json:"product_name"`
	Quantity      int    `json:"quantity"`
	Period        string `json:"period"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

func (s *Server) createDraft(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req draftReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	d, err := s.Recorder.CreateDraft(r.Context(), DraftInput{
		ProductName:   req.ProductName,
		Quantity:      req.Quantity,
		Period:        req.Period,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		s.writeSaleError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, d)
}

func (s *Server) getDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, ok := s.Recorder.Draft(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "draft not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, d)
}

func (s *Server) confirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := s.Recorder.Confirm(id)
	if err != nil {
		s.writeSaleError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, d)
}

type commitResp struct {
	Record ledger.SaleRecord `json:"record"`
	Stock  int               `json:"stock_remaining"`
}

func (s *Server) commit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, stock, err := s.Recorder.Commit(r.Context(), id)
	if err != nil {
		s.writeSaleError(w, r, err)
		return
	}

	if sess, ok := operator.FromContext(r.Context()); ok && s.Log != nil {
		s.Log.Info("sale committed",
			zap.String("operator", sess.Email),
			zap.String("product", rec.ProductName),
			zap.Int("quantity", rec.QuantitySold),
			zap.String("total", rec.TotalAmount.String()),
		)
	}

	kit.WriteJSON(w, http.StatusCreated, commitResp{Record: rec, Stock: stock})
}

func (s *Server) writeSaleError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *PersistError

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "product not found", nil)
	case errors.Is(err, catalog.ErrInvalidQuantity):
		kit.WriteError(w, r, http.StatusBadRequest, "invalid quantity", nil)
	case errors.Is(err, catalog.ErrInsufficientStock):
		kit.WriteError(w, r, http.StatusConflict, "insufficient stock", nil)
	case errors.Is(err, ErrBadPeriod):
		kit.WriteError(w, r, http.StatusBadRequest, "bad period", map[string]any{"want": ledger.PeriodLayout})
	case errors.Is(err, ErrDraftNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "draft not found", nil)
	case errors.Is(err, ErrNotConfirmed):
		kit.WriteError(w, r, http.StatusConflict, "draft not confirmed", nil)
	case errors.Is(err, ErrAlreadyConfirmed):
		kit.WriteError(w, r, http.StatusConflict, "draft already confirmed", nil)
	case errors.Is(err, ErrCommitInFlight):
		kit.WriteError(w, r, http.StatusConflict, "commit already in flight", nil)
	case errors.Is(err, ErrDraftFinished):
		kit.WriteError(w, r, http.StatusConflict, "draft already finished", nil)
	case errors.As(err, &pe):
		if s.Log != nil {
			s.Log.Error("persist failure", zap.Error(err), zap.String("stage", pe.Stage))
		}
		kit.WriteError(w, r, http.StatusBadGateway, "persist failure", map[string]any{"stage": pe.Stage})
	default:
		if s.Log != nil {
			s.Log.Error("sale failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
