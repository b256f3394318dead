package models

import "time"

// Car is the rentable resource. The booking core reads the daily rate for
// pricing and flips Available back on when an auto-cancellation frees it.
type Car struct {
	ID        string    `bson:"id" json:"id"`
	Brand     string    `bson:"brand" json:"brand"`
	Model     string    `bson:"model" json:"model"`
	Year      int       `bson:"year" json:"year"`
	DailyRate float64   `bson:"dailyRate" json:"dailyRate"`
	Available bool      `bson:"available" json:"available"`
	ImagePath string    `bson:"imagePath,omitempty" json:"imagePath,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
