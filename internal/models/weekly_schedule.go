package models

// WeeklySchedule holds opening hours for one weekday (0 = Sunday).
type WeeklySchedule struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Weekday int `gorm:"uniqueIndex" json:"weekday"`

	Active     bool   `json:"active"`
	OpenTime   string `gorm:"size:5" json:"open_time"`
	CloseTime  string `gorm:"size:5" json:"close_time"`
	BreakStart string `gorm:"size:5" json:"break_start"`
	BreakEnd   string `gorm:"size:5" json:"break_end"`

	Revision
}

func (w WeeklySchedule) GetID() uint { return w.ID }
