package models

type GalleryImage struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Title       string `gorm:"size:100" json:"title"`
	Description string `gorm:"size:255" json:"description"`
	ImageURL    string `gorm:"size:500;not null" json:"image_url"`
	Category    string `gorm:"size:50" json:"category"`

	Active       bool `gorm:"not null" json:"active"`
	DisplayOrder int  `gorm:"default:0" json:"display_order"`

	Revision
}

func (g GalleryImage) GetID() uint { return g.ID }
