package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/yerassyl04/rhythm-duel/handlers"
	"github.com/yerassyl04/rhythm-duel/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	authHandler *handlers.AuthHandler,
	teamHandler *handlers.TeamHandler,
	songHandler *handlers.SongHandler,
	scheduleHandler *handlers.ScheduleHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
	jwtSecret string,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))
	staffOnly := middleware.Authorize("staff", "admin")
	adminOnly := middleware.Authorize("admin")

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Post("/auth/login", authHandler.Login)
	// Staff accounts are provisioned by an admin, never self-registered.
	router.With(authenticate, adminOnly).Post("/auth/register", authHandler.Register)

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.List)
		r.Get("/{teamID}", teamHandler.GetByID)
		r.Get("/{teamID}/players", teamHandler.ListRoster)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(staffOnly)

			r.Post("/", teamHandler.Create)
			r.Put("/{teamID}", teamHandler.Update)
			r.Delete("/{teamID}", teamHandler.Delete)
			r.Post("/{teamID}/logo", teamHandler.UploadLogo)
			r.Delete("/{teamID}/logo", teamHandler.RemoveLogo)
			r.Post("/{teamID}/players/import", teamHandler.ImportRoster)
		})
	})

	router.Route("/songs", func(r chi.Router) {
		r.Get("/", songHandler.List)
		r.Get("/{songID}", songHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(staffOnly)

			r.Post("/", songHandler.Create)
			r.Delete("/{songID}", songHandler.Delete)
			r.Post("/{songID}/jacket", songHandler.UploadJacket)
			r.Delete("/{songID}/jacket", songHandler.RemoveJacket)
		})
	})

	router.Route("/schedules", func(r chi.Router) {
		r.Get("/", scheduleHandler.List)
		r.Get("/{matchID}", scheduleHandler.GetByMatchID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(staffOnly)

			r.Post("/", scheduleHandler.Create)
			r.Delete("/{matchID}", scheduleHandler.Delete)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		// Snapshots and history are public: overlays and spectators poll
		// or subscribe.
		r.Get("/{matchID}", matchHandler.GetState)
		r.Get("/{matchID}/history", matchHandler.History)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(staffOnly)

			r.Post("/{matchID}/initialize", matchHandler.Initialize)
			r.Post("/{matchID}/turn", matchHandler.SubmitTurn)
			r.Post("/{matchID}/advance", matchHandler.AdvanceToNextSong)
			r.Post("/{matchID}/draw", matchHandler.ResolveDraw)
			r.Post("/{matchID}/tiebreaker", matchHandler.SelectTiebreakerSong)
			r.Post("/{matchID}/archive", matchHandler.Archive)
		})
	})

	router.Get("/ws/matches/{matchID}", webSocketHandler.ServeWs)
}
