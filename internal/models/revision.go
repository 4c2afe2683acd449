package models

import "time"

// Revision is embedded by every synchronized row. Version starts at 1 and is
// incremented by each remote write, so replicas can tell an echo of a change
// they already hold from a newer one.
type Revision struct {
	Version   int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r Revision) GetVersion() int64 { return r.Version }

func (r *Revision) SetVersion(v int64) { r.Version = v }
