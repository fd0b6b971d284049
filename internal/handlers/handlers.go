package handlers

import (
	"net/http"
	"time"

	"ieum/internal/config"
	"ieum/internal/middleware"
	"ieum/internal/realtime"
	"ieum/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Google sign-in is the only unauthenticated write that reaches an external service.
const authRateLimit = 20

type Handler struct {
	Router chi.Router
}

// Services bundles the feature services the REST surface is built on.
type Services struct {
	Auth            *service.AuthService
	Users           *service.UserService
	Couples         *service.CoupleService
	Chat            *service.ChatService
	Events          *service.EventService
	Buckets         *service.BucketService
	Finance         *service.FinanceService
	Memories        *service.MemoryService
	Recommendations *service.RecommendationService
	Mbti            *service.MbtiService
	Ddays           *service.DdayService
	Files           *service.FileService
}

// base carries what every feature handler needs to report failures.
type base struct {
	Logger *zap.SugaredLogger
}

func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, b.Logger, r, err)
}

// NewHandler wires middlewares, REST routes, the streaming endpoints and /metrics.
// stream may be nil when realtime is disabled.
func NewHandler(
	svcs Services,
	stream *realtime.Server,
	tokens middleware.TokenParser,
	logger *zap.SugaredLogger,
	cfg *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithLogging)
	r.Use(middleware.WithMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-User-Id"},
		AllowCredentials: true,
		MaxAge:           3600,
	}))
	r.Use(httprate.LimitByIP(cfg.RateLimitRPM, time.Minute))
	r.Use(middleware.WithAuth(tokens))

	b := base{Logger: logger}
	authH := &AuthHandler{base: b, Auth: svcs.Auth, Users: svcs.Users}
	userH := &UserHandler{base: b, Users: svcs.Users}
	coupleH := &CoupleHandler{base: b, Couples: svcs.Couples}
	chatH := &ChatHandler{base: b, Chat: svcs.Chat}
	eventH := &EventHandler{base: b, Events: svcs.Events}
	bucketH := &BucketHandler{base: b, Buckets: svcs.Buckets}
	financeH := &FinanceHandler{base: b, Finance: svcs.Finance}
	memoryH := &MemoryHandler{base: b, Memories: svcs.Memories}
	recH := &RecommendationHandler{base: b, Recommendations: svcs.Recommendations}
	mbtiH := &MbtiHandler{base: b, Mbti: svcs.Mbti}
	ddayH := &DdayHandler{base: b, Ddays: svcs.Ddays}
	fileH := &FileHandler{base: b, Files: svcs.Files}

	// Streaming endpoints stay outside the compressing group.
	if stream != nil {
		r.Get("/ws/stomp", stream.ServeStomp)
		r.Get("/ws/chat/info", stream.SockJSInfo)
		r.Get("/ws/chat/{server}/{session}/websocket", stream.ServeSockJS)
	}
	if cfg.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.WithGzip)

		r.Get("/health", authH.Health)

		r.Route("/auth", func(r chi.Router) {
			r.With(httprate.LimitByIP(authRateLimit, time.Minute)).Post("/google", authH.GoogleLogin)
			r.Get("/me", authH.Me)
			r.Post("/logout", authH.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userH.Register)
			r.Get("/me", userH.Me)
			r.Patch("/me", userH.UpdateMe)
			r.Put("/me/public-key", userH.SetPublicKey)
			r.Get("/me/public-key", userH.MyPublicKey)
			r.Get("/partner/public-key", userH.PartnerPublicKey)
			r.Get("/{userId}/public-key", userH.PublicKey)
		})

		r.Route("/couples", func(r chi.Router) {
			r.Post("/invite", coupleH.CreateInvite)
			r.Post("/join", coupleH.Join)
			r.Get("/me", coupleH.Me)
			r.Patch("/me", coupleH.Update)
			r.Delete("/me", coupleH.Delete)
			r.Post("/me/shared-key", coupleH.SetMySharedKey)
			r.Get("/me/shared-key", coupleH.MySharedKey)
			r.Post("/partner/shared-key", coupleH.SetPartnerSharedKey)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/room", chatH.Room)
			r.Post("/rooms/{roomId}/messages", chatH.Send)
			r.Get("/rooms/{roomId}/messages", chatH.List)
			r.Post("/rooms/{roomId}/read", chatH.MarkRead)
		})

		r.Route("/events", func(r chi.Router) {
			r.Post("/", eventH.Create)
			r.Get("/", eventH.List)
			r.Get("/{id}", eventH.Get)
			r.Put("/{id}", eventH.Update)
			r.Patch("/{id}", eventH.Update)
			r.Delete("/{id}", eventH.Delete)
		})

		r.Route("/buckets", func(r chi.Router) {
			r.Post("/", bucketH.Create)
			r.Get("/", bucketH.List)
			r.Get("/{id}", bucketH.Get)
			r.Put("/{id}", bucketH.Update)
			r.Patch("/{id}", bucketH.Update)
			r.Delete("/{id}", bucketH.Delete)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", financeH.CreateExpense)
			r.Get("/", financeH.ListExpenses)
			r.Get("/{id}", financeH.GetExpense)
			r.Put("/{id}", financeH.UpdateExpense)
			r.Patch("/{id}", financeH.UpdateExpense)
			r.Delete("/{id}", financeH.DeleteExpense)
		})
		r.Put("/budgets/{yearMonth}", financeH.SetBudget)
		r.Get("/budgets/{yearMonth}", financeH.GetBudget)

		r.Route("/memories", func(r chi.Router) {
			r.Post("/", memoryH.Create)
			r.Get("/", memoryH.List)
			r.Get("/{id}", memoryH.Get)
			r.Put("/{id}", memoryH.Update)
			r.Patch("/{id}", memoryH.Update)
			r.Delete("/{id}", memoryH.Delete)
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Post("/", recH.Create)
			r.Get("/", recH.List)
			r.Get("/{id}", recH.Get)
			r.Post("/{id}/feedback", recH.Feedback)
		})

		r.Get("/mbti/questions", mbtiH.Questions)
		r.Post("/mbti/submit", mbtiH.Submit)
		r.Get("/mbti/couple-result", mbtiH.CoupleResult)

		r.Get("/ddays", ddayH.List)

		r.Post("/files/presign", fileH.Presign)
		r.Get("/files/{fileId}", fileH.Get)
	})

	return &Handler{Router: r}
}
