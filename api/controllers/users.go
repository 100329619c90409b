package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/usermanagement/api/responses"
	"github.com/angelmondragon/usermanagement/api/validators"
	"github.com/angelmondragon/usermanagement/internal/users"
	pkgerrors "github.com/angelmondragon/usermanagement/pkg/errors"
	"github.com/angelmondragon/usermanagement/pkg/logger"
)

const maxNotificationLength = 32

type registerUserRequest struct {
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Country string `json:"country"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// RegisterUser creates a user from the JSON body; the optional notification
// query parameter picks the preferred channel.
func RegisterUser(svc users.Service, defaultNotification string, logg *logger.Logger) http.HandlerFunc {
	if defaultNotification == "" {
		defaultNotification = users.DefaultNotificationPreference
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		var body registerUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notification, err := validators.ParseQueryString(r, "notification", defaultNotification, maxNotificationLength)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), users.RegistrationInput{
			Name:                   body.Name,
			Age:                    body.Age,
			Country:                body.Country,
			Email:                  body.Email,
			Phone:                  body.Phone,
			NotificationPreference: notification,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, user)
	}
}

func GetUserByID(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		user, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}
