package routes

import (
	"net/http"

	"github.com/Dosada05/rps-arena/handlers"
	"github.com/Dosada05/rps-arena/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Points     *handlers.PointsHandler
	Tournament *handlers.TournamentHandler
	Room       *handlers.RoomHandler
	Giveaway   *handlers.GiveawayHandler
	WebSocket  *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, jwtSecret []byte) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("rps-arena API running"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)

		r.Route("/points", func(r chi.Router) {
			r.Post("/ensure", h.Points.EnsureUser)
			r.Get("/{userID}", h.Points.GetPoints)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(jwtSecret))
				r.Use(middleware.RequireAdmin)
				r.Post("/add", h.Points.AddPoints)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.List)
			r.Get("/{tournamentID}", h.Tournament.Get)
			r.Post("/{tournamentID}/register", h.Tournament.Register)
			r.Get("/{tournamentID}/next-match", h.Tournament.NextMatch)
			r.Post("/{tournamentID}/matches/{matchID}/move", h.Tournament.SubmitMove)
			r.Get("/{tournamentID}/rounds/{roundNumber}/standings", h.Tournament.RoundStandings)

			// Административные операции над турнирами
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(jwtSecret))
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.Tournament.Create)
				r.Post("/{tournamentID}/deactivate", h.Tournament.Deactivate)
				r.Post("/{tournamentID}/rounds", h.Tournament.CreateRound)
			})
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Post("/join", h.Room.Join)
			r.Get("/{roomID}", h.Room.GetState)
			r.Post("/{roomID}/move", h.Room.SubmitMove)
		})

		r.Route("/giveaways", func(r chi.Router) {
			r.Get("/", h.Giveaway.ListActive)
			r.Get("/joined", h.Giveaway.ListJoined)
			r.Post("/{giveawayID}/join", h.Giveaway.Join)
		})
	})

	router.Get("/ws/rooms/{roomID}", h.WebSocket.ServeRoom)
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeTournament)

	return router
}
