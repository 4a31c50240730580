package models

import (
	"time"

	"swimops/src/types"

	"github.com/google/uuid"
)

type Profile struct {
	ID         uuid.UUID  `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Email      string     `gorm:"uniqueIndex" json:"email,omitempty"`
	FullName   string     `json:"full_name,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	LastActive *time.Time `json:"last_active,omitempty"`

	Roles    []UserRole `gorm:"foreignKey:user_id" json:"roles,omitempty"`
	Swimmers []Swimmer  `gorm:"foreignKey:parent_id" json:"swimmers,omitempty"`

	types.Timestamps
}

type UserRole struct {
	ID     uint      `gorm:"primarykey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Role   string    `json:"role"`

	User Profile `gorm:"foreignKey:user_id" json:"-"`

	types.Timestamps
}

// RoleNames flattens the association for claims and context values.
func (p *Profile) RoleNames() []string {
	names := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		names = append(names, r.Role)
	}
	return names
}

// FirstName is used for batch titles and notification salutations.
func (p *Profile) FirstName() string {
	name := p.FullName
	for i, c := range name {
		if c == ' ' {
			return name[:i]
		}
	}
	return name
}
