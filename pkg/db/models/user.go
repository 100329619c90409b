package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the persisted registration record. The same shape is stored as a
// row (gorm) or embedded in a document (bson) depending on the configured backend.
type User struct {
	ID                     string    `gorm:"column:id;type:uuid;primaryKey" bson:"-"`
	Name                   string    `gorm:"column:name;not null" bson:"name"`
	Age                    int       `gorm:"column:age;not null" bson:"age"`
	Country                string    `gorm:"column:country;not null" bson:"country"`
	Email                  string    `gorm:"column:email;not null;uniqueIndex:idx_users_email" bson:"email"`
	Phone                  string    `gorm:"column:phone;not null" bson:"phone"`
	NotificationPreference string    `gorm:"column:notification_preference;not null;default:email" bson:"notification_preference"`
	RegistrationDate       time.Time `gorm:"column:registration_date;not null" bson:"registration_date"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns the identifier; ids are never supplied by callers.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
