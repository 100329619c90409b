package users

import (
	"context"
	"errors"

	"github.com/angelmondragon/usermanagement/pkg/db"
	"github.com/angelmondragon/usermanagement/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the user store consumed by the workflows.
type Repository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// GormRepository persists users in a relational table through GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository constructs a users repo bound to the provided GORM DB.
func NewGormRepository(conn *gorm.DB) *GormRepository {
	return &GormRepository{db: conn}
}

// Create inserts a new user and returns the persisted model with its id.
func (r *GormRepository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user whose email matches exactly.
func (r *GormRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

// FindByID loads a user by UUID; anything that is not a UUID cannot exist.
func (r *GormRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrRecordNotFound
	}
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", parsed.String()).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func translateGormError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}
