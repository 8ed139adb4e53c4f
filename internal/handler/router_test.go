package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pudaweed/clubman/internal/metrics"
	"github.com/pudaweed/clubman/internal/middleware"
	"github.com/pudaweed/clubman/internal/model"
	"github.com/pudaweed/clubman/internal/payment"
	"github.com/pudaweed/clubman/internal/user"
)

type staticSessionFinder struct {
	sessions map[string]*model.Session
}

func (f *staticSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return f.sessions[id], nil
}

type staticUserFinder struct {
	users map[string]*model.User
}

func (f *staticUserFinder) FindByID(ctx context.Context, id string) (*model.User, error) {
	return f.users[id], nil
}

// newTestRouter は選手セッションと管理者セッションを仕込んだルーターを構築する。
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	playerSession := &model.Session{ID: "player-session", UserID: "player-uid", ExpiresAt: time.Now().Add(time.Hour)}
	adminSession := &model.Session{ID: "admin-session", UserID: "admin-uid", ExpiresAt: time.Now().Add(time.Hour)}

	sessionFinder := &staticSessionFinder{sessions: map[string]*model.Session{
		playerSession.ID: playerSession,
		adminSession.ID:  adminSession,
	}}
	userFinder := &staticUserFinder{users: map[string]*model.User{
		"player-uid": {ID: "player-uid", Email: "ana@example.com", Name: "Ana", Role: model.RolePlayer, Allowed: true},
		"admin-uid":  {ID: "admin-uid", Email: "dt@example.com", Name: "DT", Role: model.RoleAdmin, Allowed: true},
	}}

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rateLimiter.Stop)

	paymentService := &mockPaymentService{
		dashboardForFunc: func(ctx context.Context, playerID string) (*payment.Dashboard, error) {
			return &payment.Dashboard{}, nil
		},
		historyForFunc: func(ctx context.Context, playerID string, filter payment.HistoryFilter, cursor time.Time) (*payment.History, error) {
			return &payment.History{}, nil
		},
		adminListFunc: func(ctx context.Context, opts payment.AdminListOptions) ([]model.Payment, error) {
			return nil, nil
		},
	}
	playerService := &mockPlayerService{
		listPlayersFunc: func(ctx context.Context, filter user.PlayerFilter) ([]model.User, error) {
			return nil, nil
		},
	}

	return NewRouter(&RouterDeps{
		SessionFinder:     sessionFinder,
		UserFinder:        userFinder,
		CORSAllowedOrigin: "http://localhost:5173",
		RateLimiter:       rateLimiter,
		Collector:         metrics.Nop{},
		AuthService: &mockAuthService{
			getLoginURLFunc: func(state string) string { return "https://accounts.google.com/?state=" + state },
		},
		AuthConfig:     testAuthConfig(),
		PaymentService: paymentService,
		PlayerService:  playerService,
	})
}

func routerRequest(t *testing.T, router http.Handler, method, path, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sessionID})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthWithoutSession(t *testing.T) {
	router := newTestRouter(t)

	rec := routerRequest(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_DashboardRequiresSession(t *testing.T) {
	router := newTestRouter(t)

	rec := routerRequest(t, router, http.MethodGet, "/api/dashboard", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Redirect != "/login" {
		t.Errorf("expected redirect to /login, got %s", body.Redirect)
	}
}

func TestRouter_PlayerCanAccessOwnViews(t *testing.T) {
	router := newTestRouter(t)

	if rec := routerRequest(t, router, http.MethodGet, "/api/dashboard", "player-session"); rec.Code != http.StatusOK {
		t.Errorf("dashboard: expected 200, got %d", rec.Code)
	}
	if rec := routerRequest(t, router, http.MethodGet, "/api/payments/history", "player-session"); rec.Code != http.StatusOK {
		t.Errorf("history: expected 200, got %d", rec.Code)
	}
}

func TestRouter_PlayerCannotAccessAdminRoutes(t *testing.T) {
	router := newTestRouter(t)

	rec := routerRequest(t, router, http.MethodGet, "/api/players", "player-session")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Redirect != "/dashboard" {
		t.Errorf("expected redirect to /dashboard, got %s", body.Redirect)
	}
}

func TestRouter_AdminCanAccessAdminRoutes(t *testing.T) {
	router := newTestRouter(t)

	if rec := routerRequest(t, router, http.MethodGet, "/api/players", "admin-session"); rec.Code != http.StatusOK {
		t.Errorf("players: expected 200, got %d", rec.Code)
	}
	if rec := routerRequest(t, router, http.MethodGet, "/api/payments", "admin-session"); rec.Code != http.StatusOK {
		t.Errorf("payments: expected 200, got %d", rec.Code)
	}
}

func TestRouter_ExpiredSessionCookie(t *testing.T) {
	router := newTestRouter(t)

	rec := routerRequest(t, router, http.MethodGet, "/api/dashboard", "stale-session")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown session, got %d", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	rec := routerRequest(t, router, http.MethodOptions, "/api/dashboard", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "http://localhost:5173" {
		t.Errorf("unexpected allow origin: %s", origin)
	}
}

func TestRouter_LoginRedirectsToProvider(t *testing.T) {
	router := newTestRouter(t)

	rec := routerRequest(t, router, http.MethodGet, "/auth/google/login", "")
	if rec.Code != http.StatusTemporaryRedirect {
		t.Errorf("expected 307, got %d", rec.Code)
	}
}
