package application

import (
	"strings"

	"github.com/bnema/blum-farm-cli/internal/domain"
)

// AddAccountCommand carries the fields to set. Empty fields keep the stored value.
type AddAccountCommand struct {
	ID       domain.AccountID
	Name     string
	RefID    string
	Proxy    string
	InitData string
}

func (c AddAccountCommand) apply(account *domain.Account) {
	if name := strings.TrimSpace(c.Name); name != "" {
		account.Name = name
	}
	if refID := strings.TrimSpace(c.RefID); refID != "" {
		account.RefID = refID
	}
	if proxy := strings.TrimSpace(c.Proxy); proxy != "" {
		account.Proxy = proxy
	}
}

type ImportResult struct {
	Imported []domain.AccountID
	Failed   int
}
