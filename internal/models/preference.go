package models

import "time"

// LightOnSunset is the user_light value that schedules the light at sunset.
const LightOnSunset = "sunset"

// Preference is the single stored settings record.
type Preference struct {
	ID                int       `json:"id"`
	TargetTemperature float64   `json:"user_temp"`
	LightOnSpec       string    `json:"user_light"`    // "HH:MM:SS" or "sunset"
	LightOnTime       string    `json:"light_time_on"` // resolved, "HH:MM:SS"
	LightOffTime      string    `json:"light_time_off"`
	UpdatedAt         time.Time `json:"updated_at"`
}
