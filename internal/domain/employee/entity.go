package employee

import (
	"time"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/user"
)

type Employee struct {
	ID             string
	OrganizationID string
	UserID         *string
	FullName       string
	Role           user.Role
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
