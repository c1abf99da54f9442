package members

import (
	"time"

	"github.com/google/uuid"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
	"github.com/aion-commerce/aion-backend/pkg/enums"
)

// MemberDTO is the member shape exposed over the API. The password hash
// never leaves the service layer.
type MemberDTO struct {
	ID        uuid.UUID        `json:"id"`
	Email     string           `json:"email"`
	Name      string           `json:"name"`
	Phone     *string          `json:"phone,omitempty"`
	Role      enums.MemberRole `json:"role"`
	CreatedAt time.Time        `json:"created_at"`
}

// FromModel converts a member row into its API shape.
func FromModel(member *models.Member) *MemberDTO {
	if member == nil {
		return nil
	}
	return &MemberDTO{
		ID:        member.ID,
		Email:     member.Email,
		Name:      member.Name,
		Phone:     member.Phone,
		Role:      member.Role,
		CreatedAt: member.CreatedAt,
	}
}
