package api

import "time"

// User is the logged in profile
type User struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Username          string `json:"username"`
	Email             string `json:"email,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	// FirstDayOfWeek follows time.Weekday numbering; nil when unset
	FirstDayOfWeek *int   `json:"first_day_of_week,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
}

// Activity is one recorded workout
type Activity struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Type        int       `json:"activity_type"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Timezone    string    `json:"timezone,omitempty"`
	DistanceM   float64   `json:"distance"`
	ElapsedSec  float64   `json:"total_elapsed_time"`
	Calories    float64   `json:"calories,omitempty"`
	ElevationUp float64   `json:"elevation_gain,omitempty"`
	GearID      *int64    `json:"gear_id,omitempty"`
}

// Page is a slice of results plus the total the server knows about
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// Gear is a bike, pair of shoes or other equipment
type Gear struct {
	ID        int64   `json:"id"`
	Nickname  string  `json:"nickname"`
	Brand     string  `json:"brand,omitempty"`
	Model     string  `json:"model,omitempty"`
	Type      int     `json:"gear_type"`
	Active    bool    `json:"is_active"`
	InitialKm float64 `json:"initial_kms,omitempty"`
}

// Weight is one body weight measurement
type Weight struct {
	ID     int64     `json:"id"`
	Date   string    `json:"date"`
	Weight float64   `json:"weight"`
	BMI    float64   `json:"bmi,omitempty"`
	At     time.Time `json:"created_at,omitzero"`
}

// Follower links two users
type Follower struct {
	FollowerID  int64 `json:"follower_id"`
	FollowingID int64 `json:"following_id"`
	Accepted    bool  `json:"is_accepted"`
}

// Summary aggregates activities over a calendar period
type Summary struct {
	Period     string    `json:"period"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Activities int       `json:"activity_count"`
	DistanceM  float64   `json:"total_distance"`
	DurationS  float64   `json:"total_duration"`
	Calories   float64   `json:"total_calories"`
	ElevationM float64   `json:"total_elevation_gain"`
}
