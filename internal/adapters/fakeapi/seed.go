package fakeapi

import (
	"time"

	"stridekit/internal/adapters/api"
)

// Demo credentials of the seeded accounts
const (
	DemoUser     = "demo"
	DemoPassword = "demo"
	DemoUserID   = 1

	OtherUser     = "other"
	OtherPassword = "other"
	OtherUserID   = 2
)

func ptr[T any](v T) *T { return &v }

// DemoAccounts are the accounts New seeds when Options.Accounts is empty
func DemoAccounts() []Account {
	return []Account{
		{
			User: api.User{
				ID: DemoUserID, Name: "Demo Runner", Username: DemoUser, Email: "demo@example.com",
				PreferredLanguage: "pt-PT", FirstDayOfWeek: ptr(1), Timezone: "Europe/Lisbon",
			},
			Password: DemoPassword,
		},
		{
			User: api.User{
				ID: OtherUserID, Name: "Other Rider", Username: OtherUser,
				PreferredLanguage: "en-US", FirstDayOfWeek: ptr(0), Timezone: "America/New_York",
			},
			Password: OtherPassword,
		},
	}
}

func (s *Server) seed(accounts []Account) {
	if len(accounts) == 0 {
		accounts = DemoAccounts()
	}
	for i := range accounts {
		acc := accounts[i]
		s.accounts[acc.Username] = &acc
		if acc.ID > s.nextID {
			s.nextID = acc.ID
		}
	}

	day := func(y int, m time.Month, d, h int) time.Time { return time.Date(y, m, d, h, 0, 0, 0, time.UTC) }
	demo := s.user(DemoUserID)

	s.nextID += 100
	bike := api.Gear{ID: s.nextID, Nickname: "Tarmac", Brand: "Specialized", Model: "SL7", Type: 1, Active: true}
	s.nextID++
	shoes := api.Gear{ID: s.nextID, Nickname: "Daily trainers", Brand: "Asics", Model: "Novablast", Type: 2, Active: true}
	demo.gear = []api.Gear{bike, shoes}

	runs := []struct {
		name  string
		start time.Time
		dist  float64
		secs  float64
		gear  int64
	}{
		{"Sunday long run", day(2025, time.March, 9, 8), 21100, 7200, shoes.ID},
		{"Easy run", day(2025, time.March, 10, 7), 8000, 2700, shoes.ID},
		{"Intervals", day(2025, time.March, 12, 18), 10000, 3000, shoes.ID},
		{"Commute", day(2025, time.March, 14, 8), 12500, 1800, bike.ID},
		{"Gran fondo", day(2025, time.March, 16, 7), 120000, 16200, bike.ID},
		{"Recovery jog", day(2025, time.April, 1, 19), 5000, 1800, shoes.ID},
	}
	for _, r := range runs {
		s.nextID++
		demo.activities = append(demo.activities, api.Activity{
			ID:          s.nextID,
			UserID:      DemoUserID,
			Name:        r.name,
			Type:        1,
			StartTime:   r.start,
			EndTime:     r.start.Add(time.Duration(r.secs) * time.Second),
			Timezone:    "Europe/Lisbon",
			DistanceM:   r.dist,
			ElapsedSec:  r.secs,
			Calories:    r.dist / 15,
			ElevationUp: r.dist / 100,
			GearID:      ptr(r.gear),
		})
	}

	demo.weights = []api.Weight{
		{ID: 1, Date: "2025-03-01", Weight: 71.4, BMI: 22.1},
		{ID: 2, Date: "2025-03-15", Weight: 70.9, BMI: 21.9},
		{ID: 3, Date: "2025-04-02", Weight: 70.2, BMI: 21.7},
	}
	demo.followers = []api.Follower{{FollowerID: OtherUserID, FollowingID: DemoUserID, Accepted: true}}

	other := s.user(OtherUserID)
	s.nextID++
	other.activities = []api.Activity{{
		ID: s.nextID, UserID: OtherUserID, Name: "Hudson loop", Type: 4,
		StartTime: day(2025, time.March, 11, 12), EndTime: day(2025, time.March, 11, 14),
		Timezone: "America/New_York", DistanceM: 40000, ElapsedSec: 7200,
	}}
}
