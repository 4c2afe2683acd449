package models

// Appointment references barber and service by name, not by id.
// Renaming a barber or service does not touch historical rows.
//
// A barber holds at most one live (not cancelled) appointment per date and
// time; idx_appointments_slot enforces it.
type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientName  string `gorm:"size:100;not null" json:"client_name"`
	ClientPhone string `gorm:"size:20;not null" json:"client_phone"`

	Date string `gorm:"size:10;index;not null;uniqueIndex:idx_appointments_slot,where:status <> 'cancelled'" json:"date"` // YYYY-MM-DD
	Time string `gorm:"size:5;not null;uniqueIndex:idx_appointments_slot" json:"time"`                                    // HH:MM

	Service string `gorm:"size:100" json:"service"`
	Barber  string `gorm:"size:100;index;uniqueIndex:idx_appointments_slot" json:"barber"`

	Status string `gorm:"size:20;default:'pending'" json:"status"`
	Notes  string `gorm:"size:255" json:"notes"`

	Revision
}

func (a Appointment) GetID() uint { return a.ID }

// Less orders appointments chronologically, then by id.
func (a Appointment) Less(b Appointment) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.ID < b.ID
}
