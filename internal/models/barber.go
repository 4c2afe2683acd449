package models

type Barber struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name      string `gorm:"size:100;not null" json:"name"`
	Specialty string `gorm:"size:100" json:"specialty"`
	Phone     string `gorm:"size:20" json:"phone"`
	Email     string `gorm:"size:100" json:"email"`
	PhotoURL  string `gorm:"size:500" json:"photo_url"`
	Bio       string `gorm:"type:text" json:"bio"`
	Schedule  string `gorm:"size:255" json:"schedule"` // free text, e.g. "Tue-Sat 9h-18h"

	Active       bool `gorm:"not null" json:"active"`
	DisplayOrder int  `gorm:"default:0" json:"display_order"`

	Revision
}

func (b Barber) GetID() uint { return b.ID }
