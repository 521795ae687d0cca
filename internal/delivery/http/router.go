package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventlive/internal/delivery/http/controllers"
	"eventlive/internal/delivery/http/middleware"
	"eventlive/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Public browse routes pass through OptionalAuth so a logged-in viewer gets
// viewer-specific fields; everything under /manage, /my-tickets, and
// /tickets requires a valid token.
func NewRouter(
	eventController *controllers.EventController,
	ticketController *controllers.TicketController,
	manageController *controllers.ManageController,
	authController *controllers.AuthController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)

	// Public browse
	mux.HandleFunc("GET /home", eventController.Home)
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/{slug}", optionalAuth(eventController.ShowEvent))
	mux.HandleFunc("GET /categories", eventController.ListCategories)
	mux.HandleFunc("GET /categories/{slug}", eventController.ListByCategory)

	// Registration
	mux.HandleFunc("POST /events/{eventID}/tickets", requireAuth(ticketController.Register))
	mux.HandleFunc("GET /my-tickets", requireAuth(ticketController.ListMyTickets))
	mux.HandleFunc("PUT /tickets/{ticketID}/cancel", requireAuth(ticketController.Cancel))
	mux.HandleFunc("DELETE /tickets/{ticketID}", requireAuth(ticketController.Withdraw))

	// Organizer dashboard
	mux.HandleFunc("GET /manage/events", requireAuth(manageController.ListOrganized))
	mux.HandleFunc("POST /manage/events", requireAuth(manageController.CreateEvent))
	mux.HandleFunc("POST /manage/events/cover", requireAuth(manageController.UploadCover))
	mux.HandleFunc("GET /manage/events/drafts", requireAuth(manageController.ListDrafts))
	mux.HandleFunc("GET /manage/events/registrations", requireAuth(manageController.ListRegistrations))
	mux.HandleFunc("GET /manage/events/{eventID}", requireAuth(manageController.GetEventForEdit))
	mux.HandleFunc("PUT /manage/events/{eventID}", requireAuth(manageController.UpdateEvent))
	mux.HandleFunc("DELETE /manage/events/{eventID}", requireAuth(manageController.DeleteEvent))
	mux.HandleFunc("GET /manage/events/{eventID}/attendees", requireAuth(manageController.ListAttendees))

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
