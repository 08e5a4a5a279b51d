package domain

import "time"

type DailyRewardOutcome string

const (
	DailyRewardAlreadyClaimed DailyRewardOutcome = "already_claimed"
	DailyRewardClaimed        DailyRewardOutcome = "claimed"
	DailyRewardNothing        DailyRewardOutcome = "nothing"
)

type DailyRewardResult struct {
	Message string
}

func (r DailyRewardResult) Outcome() DailyRewardOutcome {
	return ClassifyDailyReward(r.Message)
}

func ClassifyDailyReward(message string) DailyRewardOutcome {
	switch message {
	case "same day":
		return DailyRewardAlreadyClaimed
	case "OK":
		return DailyRewardClaimed
	default:
		return DailyRewardNothing
	}
}

type ReferralBalance struct {
	CanClaim       bool
	AmountForClaim string
	// CanClaimAt is nil when the account has no referrals to wait for.
	CanClaimAt     *time.Time
	UsedInvitation int
	Limit          int
}

// NextClaimIn returns the whole hours and minutes until the referral balance can be
// claimed. ok is false when no eligibility time is known.
func (r ReferralBalance) NextClaimIn(now time.Time) (hours int, minutes int, ok bool) {
	if r.CanClaimAt == nil {
		return 0, 0, false
	}

	seconds := int(r.CanClaimAt.Sub(now) / time.Second)
	hours, rest := seconds/3600, seconds%3600
	return hours, rest / 60, true
}

type ReferralClaim struct {
	ClaimBalance string
	Claimed      bool
}
