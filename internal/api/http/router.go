package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/goonthug/sport-kursach/internal/logger"
	"github.com/goonthug/sport-kursach/internal/security"
	"github.com/goonthug/sport-kursach/internal/service"
)

// NewRouter wires all HTTP and websocket endpoints. Every route sits
// behind bearer-token auth; websocket routes also accept the token via
// the "token" query parameter because browsers cannot set headers on
// websocket upgrades.
func NewRouter(
	tokens security.TokenManager,
	identitySvc service.IdentityService,
	rentalHandler *RentalHandler,
	chatHandler *ChatHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(authMiddleware(tokens, identitySvc))

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rentals", rentalHandler.Create).Methods("POST")
	api.HandleFunc("/rentals", rentalHandler.List).Methods("GET")
	api.HandleFunc("/rentals/{rental_id}", rentalHandler.Get).Methods("GET")
	api.HandleFunc("/rentals/{rental_id}/pay", rentalHandler.Pay).Methods("POST")
	api.HandleFunc("/rentals/{rental_id}/confirm", rentalHandler.Confirm).Methods("POST")
	api.HandleFunc("/rentals/{rental_id}/reject", rentalHandler.Reject).Methods("POST")
	api.HandleFunc("/rentals/{rental_id}/cancel", rentalHandler.Cancel).Methods("POST")
	api.HandleFunc("/rentals/{rental_id}/complete", rentalHandler.Complete).Methods("POST")
	api.HandleFunc("/rentals/{rental_id}/extend", rentalHandler.Extend).Methods("POST")

	api.HandleFunc("/chat/threads", chatHandler.Threads).Methods("GET")
	api.HandleFunc("/chat/{rental_id}/messages", chatHandler.History).Methods("GET")
	api.HandleFunc("/inventory/{inventory_id}/inquiry", chatHandler.StartInquiry).Methods("POST")

	router.HandleFunc("/ws/chat/{rental_id}", chatHandler.ServeChat).Methods("GET")
	router.HandleFunc("/ws/notifications", chatHandler.ServeNotifications).Methods("GET")

	return router
}

func authMiddleware(tokens security.TokenManager, identitySvc service.IdentityService) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing credentials"})
				return
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
				return
			}

			identity, err := identitySvc.Resolve(r.Context(), claims.UserID)
			if err != nil {
				logger.Warn("identity resolution failed", "user_id", claims.UserID, "error", err)
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
