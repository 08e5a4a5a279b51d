package blum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/blum-farm-cli/internal/domain"
)

const maxPlainMessageBytes = 256

// millis is a unix-millisecond timestamp the API sends either as a number or a string.
type millis struct {
	time.Time
	set bool
}

func (m *millis) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		return nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse millisecond timestamp %q: %w", raw, err)
	}
	m.Time = time.UnixMilli(int64(value))
	m.set = true
	return nil
}

func (m millis) ptr() *time.Time {
	if !m.set {
		return nil
	}
	t := m.Time
	return &t
}

// amount is a decimal the API sends either as a string or a number.
type amount string

func (a *amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	*a = amount(strings.Trim(raw, `"`))
	return nil
}

type loginRequest struct {
	Query string `json:"query"`
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type loginResponse struct {
	Token *tokenPair `json:"token"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type farmingPayload struct {
	StartTime    millis `json:"startTime"`
	EndTime      millis `json:"endTime"`
	Balance      amount `json:"balance"`
	EarningsRate amount `json:"earningsRate"`
}

func (p farmingPayload) toDomain() domain.Farming {
	return domain.Farming{
		StartTime:    p.StartTime.Time,
		EndTime:      p.EndTime.Time,
		Balance:      string(p.Balance),
		EarningsRate: string(p.EarningsRate),
	}
}

type balanceResponse struct {
	AvailableBalance amount          `json:"availableBalance"`
	PlayPasses       int             `json:"playPasses"`
	Timestamp        millis          `json:"timestamp"`
	Farming          *farmingPayload `json:"farming"`
}

func (r balanceResponse) toDomain() domain.BalanceSnapshot {
	snapshot := domain.BalanceSnapshot{
		Available:  string(r.AvailableBalance),
		PlayPasses: r.PlayPasses,
		Timestamp:  r.Timestamp.Time,
	}
	if r.Farming != nil {
		farming := r.Farming.toDomain()
		snapshot.Farming = &farming
	}
	return snapshot
}

type friendsBalanceResponse struct {
	CanClaim        bool   `json:"canClaim"`
	AmountForClaim  amount `json:"amountForClaim"`
	CanClaimAt      millis `json:"canClaimAt"`
	UsedInvitation  int    `json:"usedInvitation"`
	LimitInvitation int    `json:"limitInvitation"`
}

type friendsClaimResponse struct {
	ClaimBalance amount `json:"claimBalance"`
}

type gamePlayResponse struct {
	GameID string `json:"gameId"`
}

type gameClaimRequest struct {
	GameID string `json:"gameId"`
	Points int    `json:"points"`
}

type tasksRequest struct {
	LanguageCode string `json:"language_code"`
}

type taskRequest struct {
	TaskID string `json:"taskId"`
}

type taskPayload struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
	Reward amount `json:"reward"`
}

func (p taskPayload) toDomain() domain.Task {
	return domain.Task{
		ID:     p.ID,
		Title:  p.Title,
		Kind:   p.Kind,
		Status: domain.TaskStatus(p.Status),
		Reward: string(p.Reward),
	}
}

type originResponse struct {
	Origin string `json:"origin"`
}

type messagePayload struct {
	Message string `json:"message"`
}

// messageFromBody extracts the server message from a JSON object, a JSON string or a
// short plain-text body.
func messageFromBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	switch trimmed[0] {
	case '{':
		var payload messagePayload
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			return payload.Message
		}
		return ""
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err == nil {
			return text
		}
		return ""
	case '[':
		return ""
	}

	if len(trimmed) > maxPlainMessageBytes {
		return ""
	}
	return string(trimmed)
}
