package users

import (
	"context"
	"errors"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/usermanagement/pkg/errors"
	"github.com/angelmondragon/usermanagement/pkg/logger"
	"github.com/angelmondragon/usermanagement/pkg/metrics"
)

// DefaultNotificationPreference applies when the caller does not pick a channel.
const DefaultNotificationPreference = "email"

// registrationDatePrecision is the finest resolution every store keeps (BSON dates
// hold milliseconds), so the created record matches later lookups.
const registrationDatePrecision = time.Millisecond

// Service exposes the registration and lookup workflows.
type Service interface {
	Register(ctx context.Context, input RegistrationInput) (*UserDTO, error)
	GetByID(ctx context.Context, id string) (*UserDTO, error)
}

// RegistrationRecorder receives registration outcomes.
type RegistrationRecorder interface {
	IncRegistered(notification string)
	IncFailure(reason string)
}

// ServiceParams packages the dependencies for the user workflows.
type ServiceParams struct {
	Repo                Repository
	Policy              RegistrationPolicy
	DefaultNotification string
	Clock               func() time.Time
	Metrics             RegistrationRecorder
	Logger              *logger.Logger
}

type service struct {
	repo                Repository
	validator           *Validator
	defaultNotification string
	clock               func() time.Time
	metrics             RegistrationRecorder
	logg                *logger.Logger
}

// NewService builds the user service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository required")
	}
	v, err := NewValidator(params.Policy)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build registration validator")
	}

	notification := strings.TrimSpace(params.DefaultNotification)
	if notification == "" {
		notification = DefaultNotificationPreference
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	recorder := params.Metrics
	if recorder == nil {
		recorder = (*metrics.RegistrationMetrics)(nil)
	}

	return &service{
		repo:                params.Repo,
		validator:           v,
		defaultNotification: notification,
		clock:               clock,
		metrics:             recorder,
		logg:                params.Logger,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegistrationInput) (*UserDTO, error) {
	input = input.normalized()

	if violations := s.validator.Validate(input); len(violations) > 0 {
		s.metrics.IncFailure(metrics.ReasonValidation)
		return nil, ValidationError(violations)
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		s.metrics.IncFailure(metrics.ReasonDuplicate)
		return nil, DuplicateEmailError(input.Email)
	} else if !errors.Is(err, ErrRecordNotFound) {
		s.metrics.IncFailure(metrics.ReasonStore)
		return nil, StoreUnavailableError(err, "check user email")
	}

	notification := input.NotificationPreference
	if notification == "" {
		notification = s.defaultNotification
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		Name:                   input.Name,
		Age:                    input.Age,
		Country:                input.Country,
		Email:                  input.Email,
		Phone:                  input.Phone,
		NotificationPreference: notification,
		RegistrationDate:       s.clock().UTC().Truncate(registrationDatePrecision),
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			// lost the race against a concurrent registration for the same email
			s.metrics.IncFailure(metrics.ReasonDuplicate)
			return nil, DuplicateEmailError(input.Email)
		}
		s.metrics.IncFailure(metrics.ReasonStore)
		return nil, StoreUnavailableError(err, "create user")
	}

	s.metrics.IncRegistered(notification)
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"user_id":      user.ID,
			"notification": notification,
		}), "user.registered")
	}
	return FromModel(user), nil
}

func (s *service) GetByID(ctx context.Context, id string) (*UserDTO, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, NotFoundError(id)
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, NotFoundError(id)
		}
		return nil, StoreUnavailableError(err, "load user")
	}
	return FromModel(user), nil
}
