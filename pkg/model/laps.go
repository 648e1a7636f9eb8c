package model

import "github.com/samber/lo"

// LapRecord is one row of the lap-indexed analysis table: one entry
// per vehicle per lap. LapTime is only meaningful when HasTime is set;
// rows with unparseable time strings keep the sector data but carry no
// lap time.
type LapRecord struct {
	VehicleID string  `json:"vehicleId"`
	LapNo     int     `json:"lapNo"`
	LapTime   float64 `json:"lapTime"`
	HasTime   bool    `json:"hasTime"`
	S1        float64 `json:"s1"`
	S2        float64 `json:"s2"`
	S3        float64 `json:"s3"`
	AvgSpeed  float64 `json:"avgSpeed"` // km/h
	TopSpeed  float64 `json:"topSpeed"` // km/h
}

// Sector returns the sector time for idx (1..3).
func (r *LapRecord) Sector(idx int) float64 {
	switch idx {
	case 1:
		return r.S1
	case 2:
		return r.S2
	case 3:
		return r.S3
	}
	return 0
}

// VehicleLaps returns all laps of the given vehicle, preserving input order.
func VehicleLaps(laps []LapRecord, vehicleID string) []LapRecord {
	return lo.Filter(laps, func(l LapRecord, _ int) bool {
		return l.VehicleID == vehicleID
	})
}

// Vehicles returns the distinct vehicle ids in input order.
func Vehicles(laps []LapRecord) []string {
	return lo.Uniq(lo.Map(laps, func(l LapRecord, _ int) string {
		return l.VehicleID
	}))
}
