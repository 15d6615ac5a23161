package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/keyfort/keyfort/internal/apperr"
	"github.com/keyfort/keyfort/internal/auth"
	"github.com/keyfort/keyfort/internal/db/models"
	"github.com/keyfort/keyfort/internal/services/identity"
)

// HandleMe returns the profile of the authenticated caller, resolved from
// the token subject.
func HandleMe(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			apperr.WriteJSON(w, r, apperr.Unauthorized("authentication required"))
			return
		}

		user, err := svc.GetUser(r.Context(), claims.Subject)
		if err != nil {
			apperr.WriteJSON(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, newUserResponse(user))
	}
}

// HandleGetUser returns a single user by id.
func HandleGetUser(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			apperr.WriteJSON(w, r, apperr.Validation("user id is required"))
			return
		}

		user, err := svc.GetUser(r.Context(), id)
		if err != nil {
			apperr.WriteJSON(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, newUserResponse(user))
	}
}

// HandleListUsers returns a page of users. Accepts ?page and ?per_page
// query parameters; non-numeric values fall back to defaults.
func HandleListUsers(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		if page < 1 {
			page = 1
		}
		if perPage < 1 {
			perPage = 20
		}

		users, total, err := svc.ListUsers(r.Context(), page, perPage)
		if err != nil {
			apperr.WriteJSON(w, r, err)
			return
		}

		resp := UserListResponse{
			Users:   make([]UserResponse, 0, len(users)),
			Total:   total,
			Page:    page,
			PerPage: perPage,
		}
		for i := range users {
			resp.Users = append(resp.Users, newUserResponse(&users[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleAdminListUsers is the admin view of the user listing. It includes
// each user's roles, which the plain listing omits.
func HandleAdminListUsers(svc *identity.Service) http.HandlerFunc {
	type adminUserResponse struct {
		UserResponse
		Roles []string `json:"roles"`
	}
	type adminListResponse struct {
		Users   []adminUserResponse `json:"users"`
		Total   int                 `json:"total"`
		Page    int                 `json:"page"`
		PerPage int                 `json:"per_page"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		if page < 1 {
			page = 1
		}
		if perPage < 1 {
			perPage = 20
		}

		users, total, err := svc.ListUsers(r.Context(), page, perPage)
		if err != nil {
			apperr.WriteJSON(w, r, err)
			return
		}

		resp := adminListResponse{
			Users:   make([]adminUserResponse, 0, len(users)),
			Total:   total,
			Page:    page,
			PerPage: perPage,
		}
		for i := range users {
			roles := []string(users[i].Roles)
			if roles == nil {
				roles = []string{models.DefaultRole}
			}
			resp.Users = append(resp.Users, adminUserResponse{
				UserResponse: newUserResponse(&users[i]),
				Roles:        roles,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
