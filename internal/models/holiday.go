package models

// Holiday blocks bookings on Date. A recurring holiday matches the same
// month and day every year.
type Holiday struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Date        string `gorm:"size:10;index;not null" json:"date"` // YYYY-MM-DD
	Description string `gorm:"size:255" json:"description"`
	Recurring   bool   `json:"recurring"`

	Revision
}

func (h Holiday) GetID() uint { return h.ID }

// Blocks reports whether the holiday falls on date (YYYY-MM-DD).
func (h Holiday) Blocks(date string) bool {
	if h.Date == date {
		return true
	}
	return h.Recurring && len(h.Date) == 10 && len(date) == 10 && h.Date[5:] == date[5:]
}
