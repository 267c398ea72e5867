package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/service"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/httpx"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	startTime time.Time
	logger    *slog.Logger

	store            store.Store
	ReceiptService   *service.ReceiptService
	OTPService       *service.OTPService
	ShortenerService *service.ShortenerService
	TokenService     *service.TokenService

	// AdminKey guards the read-only database views. Empty disables them.
	AdminKey string

	// Defaults for publicly shortened links when the caller omits them.
	LinkTTL     time.Duration
	LinkMaxUses int
}

func NewRouter(st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		startTime: time.Now(),
		store:     st,
		logger:    logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.RecoverMiddleware("/api/", "/tcrm/", "/admin/"),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerIssue()
	r.registerOTP()
	r.registerReceipts()
	r.registerShortener()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerIssue() {
	// Issue is the upstream billing surface; a per-IP ceiling still
	// applies in case the gateway in front falls over.
	r.Mux.Handle("POST /tcrm/issue",
		httpx.Chain(&IssueHandler{ReceiptService: r.ReceiptService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerOTP() {
	// OTP send carries SMS cost, so it gets the strict per-IP ceiling on
	// top of the durable per-token budget inside the service.
	r.Mux.Handle("POST /api/otp/send",
		httpx.Chain(&OTPSendHandler{OTPService: r.OTPService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/otp/verify",
		httpx.Chain(&OTPVerifyHandler{OTPService: r.OTPService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerReceipts() {
	r.Mux.Handle("GET /api/receipt/{id}",
		httpx.Chain(&ReceiptGetHandler{ReceiptService: r.ReceiptService},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerShortener() {
	r.Mux.Handle("POST /api/shorten",
		httpx.Chain(&ShortenHandler{
			ShortenerService: r.ShortenerService,
			DefaultTTL:       r.LinkTTL,
			DefaultMaxUses:   r.LinkMaxUses,
		},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /s/{code}",
		httpx.Chain(&RedirectHandler{ShortenerService: r.ShortenerService},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	admin := &AdminHandler{
		Store:    r.store,
		AdminKey: r.AdminKey,
	}
	r.Mux.Handle("GET /admin/db/receipts", admin.guard(admin.receipts))
	r.Mux.Handle("GET /admin/db/shortlinks", admin.guard(admin.shortLinks))
	r.Mux.Handle("GET /admin/db/otpcodes", admin.guard(admin.otpCodes))
	r.Mux.Handle("GET /admin/db/ratelimits", admin.guard(admin.rateLimits))

	rotate := &KeyRotationHandler{
		TokenService: r.TokenService,
		AdminKey:     r.AdminKey,
	}
	r.Mux.Handle("POST /admin/keys/rotate", rotate)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /health", HealthHandler(r.startTime, r.store))
}
