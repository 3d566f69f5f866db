// Package httpapi is Tessera's thin HTTP transport layer: chi routing,
// the authentication/authorization/rate-limit middleware chain, request
// validation, and the uniform response envelope of spec.md §6. Business
// logic lives in internal/publication, internal/proposal, internal/impact,
// and the internal/store interfaces; handlers here only translate HTTP
// in and out of those calls.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tessera-contracts/tessera/internal/auth"
	"github.com/tessera-contracts/tessera/internal/cache"
	"github.com/tessera-contracts/tessera/internal/config"
	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/impact"
	"github.com/tessera-contracts/tessera/internal/metrics"
	"github.com/tessera-contracts/tessera/internal/proposal"
	"github.com/tessera-contracts/tessera/internal/publication"
	"github.com/tessera-contracts/tessera/internal/ratelimit"
	"github.com/tessera-contracts/tessera/internal/store"
)

// Deps bundles everything the router needs to construct handlers. Built
// once in cmd/tessera-api and passed to NewRouter.
type Deps struct {
	Store         store.Store
	Cache         *cache.Cache
	Publication   *publication.Service
	Proposal      *proposal.Service
	Impact        *impact.Service
	Authenticator *auth.Authenticator
	Sessions      *sessionCodec
	Limiter       *ratelimit.Limiter
	Metrics       *metrics.Registry
	MetricsHandler http.Handler // set to promhttp.HandlerFor(reg, ...) by cmd/tessera-api; nil disables /metrics
	Logger        *zap.Logger
	Pagination    config.PaginationConfig
	BootstrapEnv  string // env tag embedded in minted API keys, e.g. "production"
}

// NewSessionCodec exposes sessionCodec construction to cmd/tessera-api
// without making the type itself exported (it only needs to flow through
// Deps, never be implemented elsewhere).
func NewSessionCodec(signingKey string) *sessionCodec {
	return newSessionCodec(signingKey)
}

// NewRouter builds the full chi.Mux: public health/metrics endpoints, then
// the authenticated /api/v1 surface with every endpoint in spec.md §6's
// table.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(deps.Logger))
	r.Use(corsMiddleware())
	r.Use(metricsMiddleware(deps.Metrics))

	r.Get("/healthz", handleHealth(deps.Store))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	h := &handlers{deps: deps}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(authMiddleware(deps.Authenticator, deps.Sessions, deps.Store))
		api.Use(rateLimitMiddleware(deps.Limiter))

		api.Post("/teams", requireScope(domain.ScopeAdmin, h.createTeam))
		api.Get("/teams", requireScope(domain.ScopeRead, h.listTeams))
		api.Get("/teams/{id}", requireScope(domain.ScopeRead, h.getTeam))

		api.Post("/assets", requireScope(domain.ScopeWrite, h.createAsset))
		api.Get("/assets/{id}", requireScope(domain.ScopeRead, h.getAsset))
		api.Patch("/assets/{id}", requireScope(domain.ScopeWrite, h.updateAsset))
		api.Delete("/assets/{id}", requireScope(domain.ScopeWrite, h.deleteAsset))
		api.Get("/teams/{id}/assets", requireScope(domain.ScopeRead, h.listAssetsByTeam))

		api.Post("/assets/{id}/contracts", requireScope(domain.ScopeWrite, h.publishContract))
		api.Get("/assets/{id}/contracts", requireScope(domain.ScopeRead, h.listContracts))
		api.Post("/contracts/compare", requireScope(domain.ScopeRead, h.compareContracts))

		api.Post("/assets/{id}/impact", requireScope(domain.ScopeRead, h.analyzeImpact))
		api.Get("/assets/{id}/lineage", requireScope(domain.ScopeRead, h.getLineage))
		api.Post("/assets/{id}/dependencies", requireScope(domain.ScopeWrite, h.createDependency))
		api.Delete("/dependencies/{id}", requireScope(domain.ScopeWrite, h.deleteDependency))

		api.Post("/registrations", requireScope(domain.ScopeWrite, h.createRegistration))
		api.Get("/registrations/{id}", requireScope(domain.ScopeRead, h.getRegistration))
		api.Patch("/registrations/{id}", requireScope(domain.ScopeWrite, h.updateRegistration))
		api.Delete("/registrations/{id}", requireScope(domain.ScopeWrite, h.deleteRegistration))
		api.Get("/teams/{id}/registrations", requireScope(domain.ScopeRead, h.listRegistrationsByConsumer))

		api.Post("/proposals/{id}/acknowledge", requireScope(domain.ScopeWrite, h.acknowledgeProposal))
		api.Post("/proposals/{id}/withdraw", requireScope(domain.ScopeWrite, h.withdrawProposal))
		api.Post("/proposals/{id}/force", requireScope(domain.ScopeAdmin, h.forceApproveProposal))
		api.Get("/proposals/{id}", requireScope(domain.ScopeRead, h.getProposal))
		api.Get("/assets/{id}/proposals", requireScope(domain.ScopeRead, h.listProposalsByAsset))

		api.Get("/audit/events", requireScope(domain.ScopeRead, h.listAuditEvents))

		api.Post("/api-keys", requireScope(domain.ScopeAdmin, h.createAPIKey))
		api.Get("/teams/{id}/api-keys", requireScope(domain.ScopeAdmin, h.listAPIKeys))
		api.Delete("/api-keys/{id}", requireScope(domain.ScopeAdmin, h.revokeAPIKey))

		api.Get("/search", requireScope(domain.ScopeRead, h.searchAssets))
	})

	return r
}

type handlers struct {
	deps Deps
}

func handleHealth(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
