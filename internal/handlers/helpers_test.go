package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ieum/internal/auth"
	"ieum/internal/config"
	"ieum/internal/handlers"
	"ieum/internal/model"
	"ieum/internal/repo"
	"ieum/internal/service"
	"ieum/internal/storage"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// noQueue keeps recommendations PENDING; the processor has its own tests.
type noQueue struct{}

func (noQueue) Enqueue(uuid.UUID) bool { return true }

type rejectAll struct{}

func (rejectAll) Verify(context.Context, string) (*auth.GoogleIdentity, error) {
	return nil, context.DeadlineExceeded
}

type testAPI struct {
	t      *testing.T
	router http.Handler
	tokens *auth.TokenManager
	users  repo.UserRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))

	logger := zap.NewNop().Sugar()
	d := service.Deps{
		Tx:      repo.NewTransactor(db),
		Users:   repo.NewUserRepository(db),
		Couples: repo.NewCoupleRepository(db),
		Logger:  logger,
	}
	tokens := auth.NewTokenManager("handler-test-secret", time.Hour)
	events := repo.NewEventRepository(db)
	svcs := handlers.Services{
		Auth:            service.NewAuthService(d, rejectAll{}, tokens),
		Users:           service.NewUserService(d),
		Couples:         service.NewCoupleService(d),
		Chat:            service.NewChatService(d, repo.NewChatRepository(db)),
		Events:          service.NewEventService(d, events),
		Buckets:         service.NewBucketService(d, repo.NewBucketRepository(db)),
		Finance:         service.NewFinanceService(d, repo.NewExpenseRepository(db), repo.NewBudgetRepository(db)),
		Memories:        service.NewMemoryService(d, repo.NewMemoryRepository(db)),
		Recommendations: service.NewRecommendationService(d, repo.NewRecommendationRepository(db), events, noQueue{}),
		Mbti:            service.NewMbtiService(d),
		Ddays:           service.NewDdayService(d, events),
		Files:           service.NewFileService(d, repo.NewFileRepository(db), storage.Placeholder{BaseURL: "http://files.test"}, "http://files.test"),
	}
	cfg := &config.Config{
		AllowedOrigins: []string{"*"},
		RateLimitRPM:   10000,
		MetricsEnabled: true,
	}
	h := handlers.NewHandler(svcs, nil, tokens, logger, cfg)
	return &testAPI{t: t, router: h.Router, tokens: tokens, users: d.Users}
}

// login creates a user and returns a bearer token for it.
func (a *testAPI) login(email string) (uuid.UUID, string) {
	a.t.Helper()
	u, err := a.users.CreateUser(context.Background(), &model.User{Email: email, Name: email, IsActive: true})
	require.NoError(a.t, err)
	tok, err := a.tokens.Generate(u.ID, u.Email)
	require.NoError(a.t, err)
	return u.ID, tok
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// pair returns tokens for two users joined into one couple.
func (a *testAPI) pair() (aliceTok, bobTok string, coupleID uuid.UUID) {
	a.t.Helper()
	_, aliceTok = a.login("alice@ieum.app")
	_, bobTok = a.login("bob@ieum.app")

	rr := a.do(http.MethodPost, "/api/couples/invite", aliceTok, nil)
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	invite := decode[service.InviteResponse](a.t, rr)

	rr = a.do(http.MethodPost, "/api/couples/join", bobTok, map[string]string{"inviteCode": invite.InviteCode})
	require.Equal(a.t, http.StatusOK, rr.Code, rr.Body.String())
	return aliceTok, bobTok, decode[service.CoupleResponse](a.t, rr).ID
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(a *testAPI, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, r)
	return rr
}
