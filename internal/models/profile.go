package models

// Roles assignable to a profile.
const (
	RoleOwner  = "owner"
	RoleFinder = "finder"
	RoleAdmin  = "admin"
)

// Profile describes a platform user. The auth layer owns credentials; every
// other component treats the profile as a trusted, already-verified identity.
type Profile struct {
	BaseModel

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	FullName string `gorm:"not null" json:"full_name"`
	Phone    string `json:"phone"`

	Role       string `gorm:"type:varchar(32);default:'owner';index" json:"role"`
	IsVerified bool   `gorm:"default:false" json:"is_verified"`

	Items         []Item         `gorm:"foreignKey:UserID" json:"-"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"-"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
