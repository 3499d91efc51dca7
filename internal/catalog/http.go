package catalog

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"MiniPOS/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Register(r chi.Router) {
	r.Get("/products", s.list)
	r.Get("/products/{name}", s.get)
	r.Get("/inventory", s.inventory)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.List(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("list products failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	if q := r.URL.Query().Get("q"); q != "" {
		products = Search(products, q)
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if un, err := url.PathUnescape(name); err == nil {
		name = un
	}

	p, ok, err := s.Store.Lookup(r.Context(), name)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("lookup product failed", zap.Error(err), zap.String("name", name))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"name": name})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

type inventoryRow struct {
	Product
	Status string `json:"status"`
}

type inventoryResp struct {
	Items      []inventoryRow  `json:"items"`
	TotalUnits int             `json:"total_units"`
	StockValue decimal.Decimal `json:"stock_value"`
}

// inventory is the dashboard view: every product with its stock status,
// plus total units on hand and the value of the stock at current prices.
func (s *Server) inventory(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.List(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("inventory failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	resp := inventoryResp{Items: make([]inventoryRow, 0, len(products))}
	for _, p := range products {
		resp.Items = append(resp.Items, inventoryRow{Product: p, Status: StockStatus(p)})
		resp.TotalUnits += p.QuantityInStock
		resp.StockValue = resp.StockValue.Add(p.PricePerUnit.Mul(decimal.NewFromInt(int64(p.QuantityInStock))))
	}

	kit.WriteJSON(w, http.StatusOK, resp)
}
