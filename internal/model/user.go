package model

import "time"

// Role is the coarse permission class of an actor.
type Role string

const (
	RoleAdministrateur Role = "administrateur"
	RoleEtablissement  Role = "etablissement"
	RoleProfesseur     Role = "professeur"
)

// IsKnown checks if the role belongs to the closed role set
func (r Role) IsKnown() bool {
	switch r {
	case RoleAdministrateur, RoleEtablissement, RoleProfesseur:
		return true
	}
	return false
}

type User struct {
	ID              string    `json:"id"`
	Role            Role      `json:"role"`
	DisplayName     string    `json:"display_name"`
	EstablishmentID *string   `json:"establishment_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// IsProfesseur checks if the user may hold publication rights
func (u *User) IsProfesseur() bool {
	return u.Role == RoleProfesseur
}
