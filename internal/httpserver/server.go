// internal/httpserver/server.go
//
// HTTP wiring for the fishbowl game server.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Room lifecycle: POST /rooms, GET /rooms/{code}, DELETE /rooms/{code}.
//   - Joining: POST /rooms/{code}/join (optional bcrypt passcode).
//   - Turn operations: start-turn, guess, skip, end-turn, advance, continue.
//   - Host token (HS256 JWT) minted at creation; host-only routes verify it.
//   - Join QR code PNG.
//   - WebSocket change feed (ws.go).
//
// Notes:
//   - Mutating routes carry the acting playerId. The single-actor
//     convention is application-level: a mutation from a player other than
//     the active explainer or host is logged, not rejected.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"github.com/fishbowlhq/go-server/internal/game"
	"github.com/fishbowlhq/go-server/internal/session"
	"github.com/fishbowlhq/go-server/internal/store"
	"github.com/fishbowlhq/go-server/internal/words"
)

const defaultQuickStartWords = 30

// Server bundles the router and the replicated session controller.
type Server struct {
	r    *chi.Mux
	ctrl *session.Controller
}

// New constructs a Server, installs middleware, and registers routes.
func New(ctrl *session.Controller) *Server {
	s := &Server{r: chi.NewRouter(), ctrl: ctrl}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(corsFromEnv)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"fishbowl-go","endpoints":["/health","POST /rooms","GET /rooms/{code}","GET /rooms/{code}/ws"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Route("/rooms", func(r chi.Router) {
		r.Post("/", s.handleCreateRoom)
		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", s.handleGetRoom)
			r.Post("/join", s.handleJoin)
			r.Get("/qr", s.handleQR)
			r.Get("/ws", s.handleFeed)

			r.Post("/start-turn", s.mutation("start_turn", func(r *http.Request, code string, body opReq) (*game.Session, error) {
				return s.ctrl.StartTurn(r.Context(), code)
			}))
			r.Post("/guess", s.mutation("guess", func(r *http.Request, code string, body opReq) (*game.Session, error) {
				return s.ctrl.MarkWordGuessed(r.Context(), code, body.WordID)
			}))
			r.Post("/skip", s.mutation("skip", func(r *http.Request, code string, body opReq) (*game.Session, error) {
				return s.ctrl.SkipWord(r.Context(), code)
			}))
			r.Post("/end-turn", s.mutation("end_turn", func(r *http.Request, code string, body opReq) (*game.Session, error) {
				return s.ctrl.EndTurn(r.Context(), code, body.GuessedWordIDs)
			}))
			r.Post("/advance", s.mutation("advance", func(r *http.Request, code string, body opReq) (*game.Session, error) {
				return s.ctrl.AdvanceToNextTurnOrRound(r.Context(), code)
			}))
			r.Post("/continue", s.mutation("continue", func(r *http.Request, code string, body opReq) (*game.Session, error) {
				return s.ctrl.ContinueFromRoundResults(r.Context(), code)
			}))

			r.With(s.requireHost()).Post("/explainer", s.handleSetExplainer)
			r.With(s.requireHost()).Delete("/", s.handleDeleteRoom)
		})
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables CORS for a single origin (CLIENT_ORIGIN env var).
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ rooms --------------------------------------

type createRoomReq struct {
	HostID       string              `json:"hostId"`
	Teams        []session.TeamSetup `json:"teams"`
	Words        []string            `json:"words"`
	WordCount    int                 `json:"wordCount"`
	RoundSeconds int                 `json:"roundSeconds"`
	Passcode     string              `json:"passcode"`
}

type createRoomRes struct {
	Room      *game.Session `json:"room"`
	HostToken string        `json:"hostToken"`
}

// handleCreateRoom builds the initial session document. Rooms created
// without player-contributed words draw a quick-start sample from the
// built-in pool.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.HostID == "" {
		req.HostID = uuid.NewString()
	}
	if req.RoundSeconds <= 0 {
		req.RoundSeconds = 60
	}
	if len(req.Words) == 0 {
		n := req.WordCount
		if n <= 0 {
			n = defaultQuickStartWords
		}
		req.Words = words.Sample(n)
	}

	passcodeHash := ""
	if req.Passcode != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(req.Passcode), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, `{"error":"passcode_hash_failed"}`, http.StatusInternalServerError)
			return
		}
		passcodeHash = string(h)
	}

	room, err := s.ctrl.Initialize(r.Context(), req.HostID, req.Teams, req.Words, req.RoundSeconds, passcodeHash)
	if err != nil {
		writeOpError(w, err)
		return
	}

	tok, err := signHostToken(room.Code, req.HostID)
	if err != nil {
		log.Error().Err(err).Str("room", room.Code).Msg("sign host token")
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(createRoomRes{Room: room, HostToken: tok})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.ctrl.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(room)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		writeOpError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

type joinReq struct {
	Passcode string `json:"passcode"`
}

type joinRes struct {
	PlayerID string        `json:"playerId"`
	Room     *game.Session `json:"room"`
}

// handleJoin checks the room passcode (when set) and mints an identity for
// the joining device.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	room, err := s.ctrl.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	if room.PasscodeHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(room.PasscodeHash), []byte(req.Passcode)) != nil {
			http.Error(w, `{"error":"wrong_passcode"}`, http.StatusForbidden)
			return
		}
	}
	_ = json.NewEncoder(w).Encode(joinRes{PlayerID: uuid.NewString(), Room: room})
}

// handleQR renders the room join link as a PNG QR code.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	base := os.Getenv("PUBLIC_BASE_URL")
	if base == "" {
		base = "http://" + r.Host
	}
	png, err := qrcode.Encode(strings.TrimSuffix(base, "/")+"/rooms/"+code, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, `{"error":"qr_failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// ---------------------------- turn operations ------------------------------

// opReq is the shared payload of the mutation routes.
type opReq struct {
	PlayerID       string   `json:"playerId"`
	WordID         string   `json:"wordId"`
	GuessedWordIDs []string `json:"guessedWordIds"`
}

// mutation wraps a controller operation: decodes the payload, logs actors
// breaking the single-actor convention, runs the op, and encodes the new
// document.
func (s *Server) mutation(name string, run func(r *http.Request, code string, body opReq) (*game.Session, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		var body opReq
		_ = json.NewDecoder(r.Body).Decode(&body)

		if before, err := s.ctrl.Get(r.Context(), code); err == nil {
			if body.PlayerID != "" && body.PlayerID != before.ActivePlayerID && body.PlayerID != before.HostID {
				log.Warn().Str("room", code).Str("op", name).Str("player", body.PlayerID).
					Str("active", before.ActivePlayerID).Msg("mutation from non-active player")
			}
		}

		room, err := run(r, code, body)
		if err != nil {
			writeOpError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(room)
	}
}

func (s *Server) handleSetExplainer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TeamID   string `json:"teamId"`
		PlayerID string `json:"playerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	room, err := s.ctrl.SetFirstExplainer(r.Context(), chi.URLParam(r, "code"), body.TeamID, body.PlayerID)
	if err != nil {
		writeOpError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(room)
}

// ---------------------------- error mapping --------------------------------

// writeOpError translates controller/store errors into HTTP statuses.
// Not-found is distinct from a timeout so clients can navigate away rather
// than retry; illegal transitions are conflicts, not server faults.
func writeOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	case errors.Is(err, game.ErrIllegalTransition), errors.Is(err, game.ErrRoleLocked):
		http.Error(w, `{"error":"conflict"}`, http.StatusConflict)
	case errors.Is(err, game.ErrNoTeams), errors.Is(err, game.ErrNoWords),
		errors.Is(err, game.ErrEmptyTeam), errors.Is(err, game.ErrNoTeam), errors.Is(err, game.ErrNoMember):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, `{"error":"timeout"}`, http.StatusGatewayTimeout)
	default:
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	}
}

// ------------------------------ host token ---------------------------------

// signHostToken creates an HS256 JWT naming the room's host.
func signHostToken(code, hostID string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"room": code,
		"host": hostID,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	})
	return t.SignedString([]byte(jwtSecret()))
}

// requireHost enforces a valid host token for the room in the URL.
func (s *Server) requireHost() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret()), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
				return
			}
			room, _ := claims["room"].(string)
			if room == "" || room != chi.URLParam(r, "code") {
				http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts a bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

func jwtSecret() string {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		return v
	}
	return "dev_secret_change_me"
}
