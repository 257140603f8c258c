package models

// Custodian is a physical drop-off/pickup location acting as a trusted
// intermediary for item exchange.
type Custodian struct {
	BaseModel

	Name           string `gorm:"type:varchar(255);not null" json:"name"`
	Location       string `gorm:"type:varchar(255);not null" json:"location"`
	Address        string `gorm:"type:text" json:"address"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	OperatingHours string `json:"operating_hours"`

	IsActive bool `gorm:"default:true;index" json:"is_active"`
}
