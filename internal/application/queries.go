package application

import (
	"time"

	"github.com/bnema/blum-farm-cli/internal/domain"
)

// AccountStatus is one row of `bfarm status`. Err holds a per-account failure; the
// other fields are zero when it is set.
type AccountStatus struct {
	Account     domain.Account
	Balance     domain.BalanceSnapshot
	Referral    *domain.ReferralBalance
	TokenExpiry time.Time
	CapturedAt  time.Time
	Err         error
}

func (s AccountStatus) OK() bool {
	return s.Err == nil
}
