// Package launch resolves the mini-app launch data for an account from the secret
// store. It replaces a live chat-platform client: the init data is captured once,
// stored with `bfarm account add`, and replayed on every login.
package launch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"

	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/bnema/blum-farm-cli/internal/ports"
	"go.uber.org/zap"
)

const webAppDataParam = "tgWebAppData"

var errNoSecretRef = errors.New("no init data stored for account")

type Referral struct {
	ID     string
	Weight float64
}

// Referrals pairs ids with weights. Missing weights default to 1.
func Referrals(ids []string, weights []float64) ([]Referral, error) {
	if len(weights) > len(ids) {
		return nil, fmt.Errorf("referral weights: %d weights for %d ids", len(weights), len(ids))
	}

	referrals := make([]Referral, 0, len(ids))
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("referral ids: entry %d is empty", i)
		}
		weight := 1.0
		if i < len(weights) {
			weight = weights[i]
		}
		if weight < 0 {
			return nil, fmt.Errorf("referral weights: entry %d is negative", i)
		}
		referrals = append(referrals, Referral{ID: id, Weight: weight})
	}

	return referrals, nil
}

type Options struct {
	Store     ports.SecretStore
	Referrals []Referral
	Logger    *zap.Logger
	// Float returns a value in [0, 1). Defaults to math/rand/v2.
	Float func() float64
}

type Provider struct {
	store     ports.SecretStore
	referrals []Referral
	total     float64
	logger    *zap.Logger
	float     func() float64
}

var _ ports.LaunchDataProvider = (*Provider)(nil)

func New(opts Options) *Provider {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	float := opts.Float
	if float == nil {
		float = rand.Float64
	}

	var total float64
	for _, r := range opts.Referrals {
		total += r.Weight
	}

	return &Provider{
		store:     opts.Store,
		referrals: opts.Referrals,
		total:     total,
		logger:    logger,
		float:     float,
	}
}

// Resolve reads the stored init data. An account whose secret is gone can never log
// in again, so that case is reported as an invalid session.
func (p *Provider) Resolve(ctx context.Context, account domain.Account) (domain.LaunchData, error) {
	if account.Auth.SecretRef == "" {
		return domain.LaunchData{}, domain.InvalidSession(account.ID, errNoSecretRef)
	}

	raw, err := p.store.Get(ctx, account.Auth.SecretRef)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return domain.LaunchData{}, domain.InvalidSession(account.ID, err)
		}
		return domain.LaunchData{}, fmt.Errorf("read init data: %w", err)
	}

	refID := account.RefID
	if refID == "" {
		refID = p.pickReferral()
	}

	return domain.LaunchData{
		RefID:    refID,
		InitData: NormalizeInitData(raw),
	}, nil
}

func (p *Provider) pickReferral() string {
	if len(p.referrals) == 0 || p.total <= 0 {
		return ""
	}

	target := p.float() * p.total
	for _, r := range p.referrals {
		if target < r.Weight {
			return r.ID
		}
		target -= r.Weight
	}
	return p.referrals[len(p.referrals)-1].ID
}

// NormalizeInitData accepts either the raw init data query or a full mini-app launch
// URL and returns the query string the login endpoint expects.
func NormalizeInitData(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	_, fragment, found := strings.Cut(raw, "#")
	if !found || !strings.Contains(fragment, webAppDataParam+"=") {
		return raw
	}

	values, err := url.ParseQuery(fragment)
	if err != nil {
		return raw
	}
	if data := values.Get(webAppDataParam); data != "" {
		return data
	}
	return raw
}
