package auth

import "go.mongodb.org/mongo-driver/bson/primitive"

// Roles carried in token claims and consumed by the route guard.
const (
	RoleHOD    = "hod"
	RoleMember = "member"
)

// User doubles as the per-user profile record: IsHOD is the privilege flag the
// role resolver reads. The flag itself is set out-of-band, never through this API.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	IsHOD        bool               `bson:"isHOD"`
}

func (u *User) Role() string {
	if u.IsHOD {
		return RoleHOD
	}
	return RoleMember
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
