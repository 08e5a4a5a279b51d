package domain

import (
	"math"
	"time"
)

type Farming struct {
	StartTime    time.Time
	EndTime      time.Time
	Balance      string
	EarningsRate string
}

type BalanceSnapshot struct {
	Available  string
	Farming    *Farming
	PlayPasses int
	// Timestamp is the server clock at the time of the response.
	Timestamp time.Time
}

func (b BalanceSnapshot) FarmingActive() bool {
	return b.Farming != nil
}

// FarmingRemaining is max(0, floor(end - now)) at second precision.
// A snapshot without farming data has nothing remaining.
func (b BalanceSnapshot) FarmingRemaining(now time.Time) time.Duration {
	if b.Farming == nil {
		return 0
	}

	seconds := math.Floor(float64(b.Farming.EndTime.UnixMilli())/1000 - float64(now.UnixMilli())/1000)
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func (b BalanceSnapshot) RemainingHoursMinutes(now time.Time) (int, int) {
	remaining := b.FarmingRemaining(now)
	hours := int(remaining / time.Hour)
	minutes := int((remaining % time.Hour) / time.Minute)
	return hours, minutes
}

// NextSleep is how long to wait for the current farming period to end, measured
// against the server timestamp. It falls back to minimum when nothing is farming.
func (b BalanceSnapshot) NextSleep(minimum time.Duration) time.Duration {
	if b.Farming == nil {
		return minimum
	}

	seconds := math.Round(float64(b.Farming.EndTime.UnixMilli()-b.Timestamp.UnixMilli()) / 1000)
	if seconds <= 0 {
		return minimum
	}
	return time.Duration(seconds) * time.Second
}

type FarmingClaim struct {
	AvailableBalance string
	PlayPasses       int
}
