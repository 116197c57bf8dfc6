package model

import (
	"errors"

	"github.com/google/uuid"
)

// Period selects which workout count a leaderboard is ranked by.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod accepts the period names used by the app; empty means week.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodWeek:
		return PeriodWeek, nil
	case PeriodMonth:
		return PeriodMonth, nil
	case PeriodYear:
		return PeriodYear, nil
	}
	return "", ErrInvalidPeriod
}

// WorkoutStats is the read model returned by fetch_workout_stats.
type WorkoutStats struct {
	WeeklyCount  int `db:"weekly_count" json:"weekly_count"`
	MonthlyCount int `db:"monthly_count" json:"monthly_count"`
	YearlyCount  int `db:"yearly_count" json:"yearly_count"`
}

// Count returns the count for period p.
func (s WorkoutStats) Count(p Period) int {
	switch p {
	case PeriodMonth:
		return s.MonthlyCount
	case PeriodYear:
		return s.YearlyCount
	default:
		return s.WeeklyCount
	}
}

// LeaderboardEntry is computed per ranking request and never stored.
type LeaderboardEntry struct {
	AccountID uuid.UUID    `json:"account_id"`
	Rank      int          `json:"rank"`
	Count     int          `json:"count"`
	Stats     WorkoutStats `json:"stats"`
	Username  string       `json:"username,omitempty"`
	AvatarURL string       `json:"avatar_url,omitempty"`
}

type LeaderboardResponse struct {
	Period  Period             `json:"period"`
	Entries []LeaderboardEntry `json:"entries"`
}

var (
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrStatsUnavailable = errors.New("workout stats unavailable")
)
