package server

import (
	"net/http"

	"github.com/keyfort/keyfort/internal/apperr"
	"github.com/keyfort/keyfort/internal/services/identity"
)

// HandleRegister creates a new user account from a username, email, and
// password. Responds 201 with the public user projection.
func HandleRegister(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			apperr.WriteJSON(w, r, err)
			return
		}

		user, err := svc.Register(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			apperr.WriteJSON(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, newUserResponse(user))
	}
}

// HandleLogin verifies credentials and responds with a bearer token pair.
// All credential failures look identical to the caller.
func HandleLogin(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			apperr.WriteJSON(w, r, err)
			return
		}

		pair, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			apperr.WriteJSON(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, pair)
	}
}
