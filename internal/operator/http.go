package operator

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"MiniPOS/pkg/kit"
)

const (
	maxBodyBytes = 1 << 20
	tokenTTL     = 8 * time.Hour // one shift
	minPassword  = 8
)

type Server struct {
	Log   *zap.Logger
	Store Store
	JWT   *TokenMaker

	// LoginLimit, when set, wraps the login route (brute-force guard).
	LoginLimit func(http.Handler) http.Handler
}

func (s *Server) Register(r chi.Router) {
	r.Post("/auth/register", s.handleRegister)
	if s.LoginLimit != nil {
		r.With(s.LoginLimit).Post("/auth/login", s.handleLogin)
	} else {
		r.Post("/auth/login", s.handleLogin)
	}
	r.Get("/auth/whoami", s.handleWhoAmI)
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsReq, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req credentialsReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return credentialsReq{}, false
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Password = strings.TrimSpace(req.Password)

	if req.Email == "" || req.Password == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "email/password required", nil)
		return credentialsReq{}, false
	}
	return req, true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	if len(req.Password) < minPassword {
		kit.WriteError(w, r, http.StatusBadRequest, "password too short", map[string]any{"min_len": minPassword})
		return
	}

	id := "op_" + uuid.NewString()

	if err := s.Store.Create(r.Context(), req.Email, req.Password, "operator", id); err != nil {
		if err == ErrEmailExists {
			kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
			return
		}
		if s.Log != nil {
			s.Log.Error("operator create failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

type loginResp struct {
	AccessToken string `json:"access_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	op, err := s.Store.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	tok, err := s.JWT.New(op.ID, op.Email, op.Role, tokenTTL)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("token issue", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, loginResp{AccessToken: tok})
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	claims, ok := bearerClaims(r, s.JWT)
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"operator_id": claims.OperatorID,
		"email":       claims.Email,
		"role":        claims.Role,
	})
}

type ctxKey string

const sessionKey ctxKey = "operator"

type Session struct {
	ID    string
	Email string
	Role  string
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

func bearerClaims(r *http.Request, jwt *TokenMaker) (Claims, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return Claims{}, false
	}
	claims, err := jwt.Parse(strings.TrimPrefix(authz, "Bearer "))
	if err != nil || claims.OperatorID == "" {
		return Claims{}, false
	}
	return claims, true
}

// RequireOperator guards sale-entry routes: a valid bearer token puts the
// operator session on the request context.
func RequireOperator(jwt *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := bearerClaims(r, jwt)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing or invalid token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, Session{
				ID:    claims.OperatorID,
				Email: claims.Email,
				Role:  claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
