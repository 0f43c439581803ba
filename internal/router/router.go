package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/comanda-pos/api/internal/config"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/handler"
	"github.com/comanda-pos/api/internal/menu"
	"github.com/comanda-pos/api/internal/metrics"
	mw "github.com/comanda-pos/api/internal/middleware"
	"github.com/comanda-pos/api/internal/state"
	"github.com/comanda-pos/api/internal/store"
	"github.com/comanda-pos/api/internal/user"
	"github.com/comanda-pos/api/internal/ws"
)

// Deps bundles the shared singletons the router wires together.
type Deps struct {
	Config    *config.Config
	Container *state.Container
	Catalog   *menu.Catalog
	Users     *user.Store
	Outbox    *store.Outbox
	Hub       *ws.Hub
	Metrics   *metrics.Registry
}

// New creates a Chi router with all application routes wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	authHandler := handler.NewAuthHandler(d.Users, d.Config.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query params)
	r.Get("/ws/{topic}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(d.Hub, d.Config.JWTSecret, w, r)
	})

	obs := &registryObserver{m: d.Metrics}
	productHandler := handler.NewProductHandler(d.Catalog)
	tableHandler := handler.NewTableHandler(d.Container, d.Catalog, obs)
	paymentHandler := handler.NewPaymentHandler(d.Container, d.Hub, obs)
	kitchenHandler := handler.NewKitchenHandler(d.Container, d.Hub, obs)

	// Menu reads are public: the QR client needs them before any auth.
	r.Get("/menu", productHandler.List)
	r.Get("/drink-options", productHandler.GetDrinkOptions)

	// Table routes: staff token or matching client mode
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthenticateOrClientMode(d.Config.JWTSecret))

		r.Route("/tables/{table}", func(r chi.Router) {
			r.Use(mw.RequireTableAccess)
			tableHandler.RegisterRoutes(r)
			paymentHandler.RegisterRoutes(r)
			r.Route("/kitchen", kitchenHandler.RegisterRoutes)
		})
	})

	// Staff-only routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(d.Config.JWTSecret))
		r.Get("/tables", tableHandler.ListOccupied)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(d.Config.JWTSecret))
		r.Use(mw.RequireRole(enum.UserRoleAdmin))

		r.Route("/products", productHandler.RegisterRoutes)
		r.Put("/drink-options", productHandler.SetDrinkOptions)

		syncHandler := handler.NewSyncHandler(d.Outbox, allSections())
		syncHandler.RegisterRoutes(r)
	})

	return r
}

func allSections() []string {
	return append(state.Sections(),
		enum.SectionMenuItems,
		enum.SectionDrinkOptions,
		enum.SectionUsers,
		enum.SectionAppSettings,
	)
}

// registryObserver adapts the metrics registry to the handler observer
// interfaces.
type registryObserver struct {
	m *metrics.Registry
}

func (o *registryObserver) LineAdded() { o.m.LinesAdded.Inc() }

func (o *registryObserver) LineRemoved() { o.m.LinesRemoved.Inc() }

func (o *registryObserver) TablesOccupied(n int) { o.m.OccupiedTables.Set(float64(n)) }

func (o *registryObserver) PaymentRecorded() { o.m.Payments.Inc() }

func (o *registryObserver) KitchenSent() { o.m.KitchenSends.Inc() }
