package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhinavece/matchpay-backend/api/controllers"
	paymentcontrollers "github.com/abhinavece/matchpay-backend/api/controllers/payments"
	playercontrollers "github.com/abhinavece/matchpay-backend/api/controllers/players"
	"github.com/abhinavece/matchpay-backend/api/middleware"
	"github.com/abhinavece/matchpay-backend/internal/audit"
	internalpayments "github.com/abhinavece/matchpay-backend/internal/payments"
	"github.com/abhinavece/matchpay-backend/internal/roster"
	"github.com/abhinavece/matchpay-backend/pkg/config"
	"github.com/abhinavece/matchpay-backend/pkg/logger"
	pkgredis "github.com/abhinavece/matchpay-backend/pkg/redis"
)

// RouterDeps carries everything the HTTP surface needs. Evidence and Gatherer
// may be nil; the affected endpoints degrade instead of failing startup.
type RouterDeps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Cache    controllers.Pinger
	Idem     pkgredis.IdempotencyStore
	Payments internalpayments.Service
	Audit    audit.Service
	Roster   roster.Client
	Evidence paymentcontrollers.EvidenceSigner
	Gatherer prometheus.Gatherer
}

func NewRouter(deps RouterDeps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Cache, logg))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Idem, logg))

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", paymentcontrollers.Create(deps.Payments, logg))
			r.Get("/", paymentcontrollers.List(deps.Payments, logg))

			r.Route("/{paymentID}", func(r chi.Router) {
				r.Get("/", paymentcontrollers.Detail(deps.Payments, logg))
				r.Delete("/", paymentcontrollers.Delete(deps.Payments, logg))
				r.Put("/total", paymentcontrollers.UpdateTotal(deps.Payments, logg))
				r.Post("/send-requests", paymentcontrollers.SendRequests(deps.Payments, logg))
				r.Get("/history", paymentcontrollers.History(deps.Audit, logg))

				r.Post("/members", paymentcontrollers.AddMember(deps.Payments, logg))
				r.Route("/members/{memberID}", func(r chi.Router) {
					r.Delete("/", paymentcontrollers.RemoveMember(deps.Payments, logg))
					r.Put("/pin", paymentcontrollers.PinMember(deps.Payments, logg))
					r.Post("/payments", paymentcontrollers.RecordPayment(deps.Payments, logg))
					r.Post("/unpaid", paymentcontrollers.MarkUnpaid(deps.Payments, logg))
					r.Post("/settle", paymentcontrollers.Settle(deps.Payments, logg))
					r.Post("/screenshot-url", paymentcontrollers.ScreenshotUploadURL(deps.Payments, deps.Evidence, logg))
					r.Get("/screenshot-url", paymentcontrollers.ScreenshotDownloadURL(deps.Payments, deps.Evidence, logg))
					r.Post("/screenshot", paymentcontrollers.ScreenshotReceived(deps.Payments, logg))
				})
			})
		})

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/payments", paymentcontrollers.ListByMatch(deps.Payments, logg))
			r.Get("/squad", playercontrollers.LoadSquad(deps.Roster, logg))
		})

		r.Route("/players", func(r chi.Router) {
			r.Get("/search", playercontrollers.Search(deps.Roster, logg))
			r.Post("/", playercontrollers.Create(deps.Roster, logg))
		})
	})

	return r
}
