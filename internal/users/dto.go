package users

import (
	"strings"
	"time"

	"github.com/angelmondragon/usermanagement/pkg/db/models"
)

// RegistrationInput is the candidate payload handed to the registration workflow.
type RegistrationInput struct {
	Name                   string
	Age                    int
	Country                string
	Email                  string
	Phone                  string
	NotificationPreference string
}

func (in RegistrationInput) normalized() RegistrationInput {
	return RegistrationInput{
		Name:                   strings.TrimSpace(in.Name),
		Age:                    in.Age,
		Country:                strings.TrimSpace(in.Country),
		Email:                  strings.TrimSpace(in.Email),
		Phone:                  strings.TrimSpace(in.Phone),
		NotificationPreference: strings.TrimSpace(in.NotificationPreference),
	}
}

// UserDTO is the transport shape of a stored user.
type UserDTO struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Age                    int       `json:"age"`
	Country                string    `json:"country"`
	Email                  string    `json:"email"`
	Phone                  string    `json:"phone"`
	NotificationPreference string    `json:"notificationPreference"`
	RegistrationDate       time.Time `json:"registrationDate"`
}

// CreateUserDTO holds the data required by a store to persist a new user.
type CreateUserDTO struct {
	Name                   string
	Age                    int
	Country                string
	Email                  string
	Phone                  string
	NotificationPreference string
	RegistrationDate       time.Time
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:                     u.ID,
		Name:                   u.Name,
		Age:                    u.Age,
		Country:                u.Country,
		Email:                  u.Email,
		Phone:                  u.Phone,
		NotificationPreference: u.NotificationPreference,
		RegistrationDate:       u.RegistrationDate,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Name:                   c.Name,
		Age:                    c.Age,
		Country:                c.Country,
		Email:                  c.Email,
		Phone:                  c.Phone,
		NotificationPreference: c.NotificationPreference,
		RegistrationDate:       c.RegistrationDate,
	}
}
