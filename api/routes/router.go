package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pasturelink/marketplace-backend/api/controllers"
	"github.com/pasturelink/marketplace-backend/api/middleware"
	"github.com/pasturelink/marketplace-backend/internal/onboarding"
	"github.com/pasturelink/marketplace-backend/internal/partnerships"
	"github.com/pasturelink/marketplace-backend/pkg/config"
	"github.com/pasturelink/marketplace-backend/pkg/db"
	"github.com/pasturelink/marketplace-backend/pkg/logger"
	"github.com/pasturelink/marketplace-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	wizardService *onboarding.Service,
	partnershipService partnerships.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(logg))

		r.Route("/onboarding/session", func(r chi.Router) {
			r.Post("/", controllers.WizardStart(wizardService, logg))
			r.Delete("/draft", controllers.WizardDiscardDraft(wizardService, logg))

			r.Put("/basics", controllers.WizardApplyBasics(wizardService, logg))
			r.Put("/location", controllers.WizardApplyLocation(wizardService, logg))
			r.Put("/hours", controllers.WizardApplyHours(wizardService, logg))
			r.Put("/branding", controllers.WizardApplyBranding(wizardService, logg))
			r.Put("/policies", controllers.WizardAgreeToTerms(wizardService, logg))
			r.Put("/partners", controllers.WizardApplyPartnerSelection(wizardService, logg))
			r.Get("/partners/search", controllers.WizardSearchPartners(wizardService, logg))

			r.Post("/advance", controllers.WizardAdvance(wizardService, logg))
			r.Post("/retreat", controllers.WizardRetreat(wizardService, logg))
			r.Post("/jump", controllers.WizardJump(wizardService, logg))
			r.Post("/submit", controllers.WizardSubmit(wizardService, logg))
			r.Post("/exit", controllers.WizardExit(wizardService, logg))
		})

		r.Route("/stores/{storeId}/partnerships", func(r chi.Router) {
			r.Get("/", controllers.PartnershipList(partnershipService, logg))
		})
		r.Route("/partnerships", func(r chi.Router) {
			r.Post("/{partnershipId}/terminate", controllers.PartnershipTerminate(partnershipService, logg))
		})
	})

	return r
}
