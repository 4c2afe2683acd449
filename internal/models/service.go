package models

import "github.com/shopspring/decimal"

type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `gorm:"size:255" json:"description"`
	DurationMin int             `json:"duration_min"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
	Category    string          `gorm:"size:50" json:"category"`

	Active       bool `gorm:"not null" json:"active"`
	DisplayOrder int  `gorm:"default:0" json:"display_order"`

	Revision
}

func (s Service) GetID() uint { return s.ID }
