package handlers_test

import (
	"net/http"
	"testing"

	"ieum/internal/handlers"
	"ieum/internal/model"
	"ieum/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthGuard(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", "Authorization header is required"},
		{"wrong scheme", "Basic abc", "Invalid authorization header format"},
		{"bad token", "Bearer not-a-jwt", "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRequest(http.MethodGet, "/api/users/me")
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rr := serve(api, r)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			body := decode[handlers.ErrorResponse](t, rr)
			assert.Equal(t, 401, body.Status)
			assert.Equal(t, tt.want, body.Message)
		})
	}
}

func TestExemptRoutes(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "UP", decode[map[string]string](t, rr)["status"])

	rr = api.do(http.MethodGet, "/api/mbti/questions", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(http.MethodPost, "/api/auth/google", "", map[string]string{"idToken": "forged"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid Google ID token", decode[handlers.ErrorResponse](t, rr).Message)
}

func TestRegister(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]string{"email": "new@ieum.app", "name": "New"}

	rr := api.do(http.MethodPost, "/api/users", "", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "new@ieum.app", decode[service.UserResponse](t, rr).Email)

	rr = api.do(http.MethodPost, "/api/users", "", body)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Email already exists", decode[handlers.ErrorResponse](t, rr).Message)

	rr = api.do(http.MethodPost, "/api/users", "", map[string]string{"email": "broken"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUserIDHeaderIgnoredOnProtectedRoutes(t *testing.T) {
	api := newTestAPI(t)
	victim, _ := api.login("victim@ieum.app")

	r := newRequest(http.MethodGet, "/api/users/me")
	r.Header.Set("X-User-Id", victim.String())
	rr := serve(api, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// with a token, the token identity wins
	me, tok := api.login("me@ieum.app")
	r = newRequest(http.MethodGet, "/api/users/me")
	r.Header.Set("Authorization", "Bearer "+tok)
	r.Header.Set("X-User-Id", victim.String())
	rr = serve(api, r)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, me, decode[service.UserResponse](t, rr).ID)
}

func TestCouplePairingFlow(t *testing.T) {
	api := newTestAPI(t)
	aliceTok, bobTok, coupleID := api.pair()

	rr := api.do(http.MethodGet, "/api/couples/me", aliceTok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	c := decode[service.CoupleResponse](t, rr)
	assert.Equal(t, coupleID, c.ID)
	require.NotNil(t, c.Partner)
	assert.Equal(t, "bob@ieum.app", c.Partner.Email)

	rr = api.do(http.MethodPost, "/api/couples/invite", bobTok, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "User already has a couple", decode[handlers.ErrorResponse](t, rr).Message)

	rr = api.do(http.MethodDelete, "/api/couples/me", bobTok, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = api.do(http.MethodGet, "/api/couples/me", aliceTok, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Couple not found", decode[handlers.ErrorResponse](t, rr).Message)
}

func TestJoinUnknownCode(t *testing.T) {
	api := newTestAPI(t)
	_, tok := api.login("solo@ieum.app")

	rr := api.do(http.MethodPost, "/api/couples/join", tok, map[string]string{"inviteCode": "ZZZZZZ"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Invalid invite code", decode[handlers.ErrorResponse](t, rr).Message)
}

func TestChatOverREST(t *testing.T) {
	api := newTestAPI(t)
	aliceTok, bobTok, coupleID := api.pair()
	room := "/api/chat/rooms/" + coupleID.String()

	rr := api.do(http.MethodPost, room+"/messages", aliceTok, map[string]any{"content": "hi", "type": "TEXT"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	sent := decode[service.MessageResponse](t, rr)
	assert.False(t, sent.IsRead)

	rr = api.do(http.MethodGet, "/api/chat/room", bobTok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(1), decode[service.ChatRoomResponse](t, rr).UnreadCount)

	rr = api.do(http.MethodGet, room+"/messages?page=0&size=10", bobTok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[service.MessageListResponse](t, rr)
	assert.Equal(t, int64(1), list.TotalCount)
	assert.Equal(t, 10, list.Size)

	rr = api.do(http.MethodGet, "/api/chat/room", bobTok, nil)
	assert.Equal(t, int64(0), decode[service.ChatRoomResponse](t, rr).UnreadCount)

	rr = api.do(http.MethodGet, "/api/chat/rooms/"+uuid.NewString()+"/messages", bobTok, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Chat room not found", decode[handlers.ErrorResponse](t, rr).Message)

	rr = api.do(http.MethodGet, "/api/chat/rooms/not-a-uuid/messages", bobTok, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBudgetFlow(t *testing.T) {
	api := newTestAPI(t)
	aliceTok, bobTok, _ := api.pair()

	rr := api.do(http.MethodGet, "/api/budgets/2024-05", aliceTok, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Budget not found for 2024-05", decode[handlers.ErrorResponse](t, rr).Message)

	rr = api.do(http.MethodPut, "/api/budgets/2024-05", aliceTok, map[string]any{
		"totalBudget":     500000,
		"categoryBudgets": map[string]int64{"FOOD": 200000},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	for _, amount := range []int64{30000, 12000} {
		rr = api.do(http.MethodPost, "/api/expenses", bobTok, map[string]any{
			"amount": amount, "category": "FOOD", "date": "2024-05-03", "paidBy": "ME",
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}
	// outside the month
	rr = api.do(http.MethodPost, "/api/expenses", bobTok, map[string]any{
		"amount": 99000, "category": "CAFE", "date": "2024-06-01", "paidBy": "TOGETHER",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = api.do(http.MethodGet, "/api/budgets/2024-05", aliceTok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	b := decode[service.BudgetResponse](t, rr)
	assert.Equal(t, int64(42000), b.TotalSpent)
	assert.Equal(t, int64(458000), b.RemainingBudget)
	assert.Equal(t, int64(42000), b.CategorySpent["FOOD"])

	rr = api.do(http.MethodGet, "/api/expenses?yearMonth=2024-05", aliceTok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[service.ExpenseListResponse](t, rr)
	assert.Len(t, list.Expenses, 2)
	assert.Equal(t, int64(42000), list.TotalAmount)

	rr = api.do(http.MethodGet, "/api/budgets/2024-13", aliceTok, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestIncompleteCoupleIsRejected(t *testing.T) {
	api := newTestAPI(t)
	_, tok := api.login("waiting@ieum.app")
	rr := api.do(http.MethodPost, "/api/couples/invite", tok, nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = api.do(http.MethodGet, "/api/buckets", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Couple is not complete", decode[handlers.ErrorResponse](t, rr).Message)

	rr = api.do(http.MethodGet, "/api/chat/room", tok, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRecommendationCreateIsPending(t *testing.T) {
	api := newTestAPI(t)
	aliceTok, _, _ := api.pair()

	rr := api.do(http.MethodPost, "/api/recommendations", aliceTok, map[string]any{"locationAddress": "Mapo-gu"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rec := decode[service.RecommendationResponse](t, rr)
	assert.Equal(t, model.RecommendationPending, rec.Status)

	rr = api.do(http.MethodPost, "/api/recommendations/"+rec.ID.String()+"/feedback", aliceTok, map[string]any{"rating": 5})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFilePresign(t *testing.T) {
	api := newTestAPI(t)
	_, tok := api.login("files@ieum.app")

	rr := api.do(http.MethodPost, "/api/files/presign", tok, map[string]string{"filename": "a.png", "contentType": "image/png"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	p := decode[service.PresignResponse](t, rr)
	assert.Contains(t, p.UploadURL, "http://files.test/")

	rr = api.do(http.MethodGet, "/api/files/"+p.FileID.String(), tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "a.png", decode[service.FileResponse](t, rr).Filename)

	rr = api.do(http.MethodGet, "/api/files/"+uuid.NewString(), tok, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.do(http.MethodGet, "/api/health", "", nil)

	rr := api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ieum_http_requests_total")
}

func TestMemoryCRUD(t *testing.T) {
	api := newTestAPI(t)
	aliceTok, bobTok, _ := api.pair()

	for _, date := range []string{"2024-03-01", "2024-04-20"} {
		rr := api.do(http.MethodPost, "/api/memories", aliceTok, map[string]any{
			"title": "trip " + date, "date": date, "images": []string{"http://files.test/a.png"},
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr := api.do(http.MethodGet, "/api/memories?size=1", bobTok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[service.MemoryListResponse](t, rr)
	require.Len(t, list.Memories, 1)
	assert.Equal(t, "2024-04-20", list.Memories[0].Date)
	assert.Equal(t, int64(2), list.TotalCount)

	id := list.Memories[0].ID.String()
	rr = api.do(http.MethodPatch, "/api/memories/"+id, bobTok, map[string]any{"title": "renamed"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "renamed", decode[service.MemoryResponse](t, rr).Title)

	rr = api.do(http.MethodDelete, "/api/memories/"+id, aliceTok, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = api.do(http.MethodGet, "/api/memories/"+id, aliceTok, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
