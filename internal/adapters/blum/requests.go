package blum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const (
	loginPath          = "/auth/provider/PROVIDER_TELEGRAM_MINI_APP"
	refreshPath        = "/auth/refresh"
	balancePath        = "/user/balance"
	dailyRewardPath    = "/daily-reward?offset=-420"
	farmingClaimPath   = "/farming/claim"
	farmingStartPath   = "/farming/start"
	friendsBalancePath = "/friends/balance"
	friendsClaimPath   = "/friends/claim"
	gamePlayPath       = "/game/play"
	gameClaimPath      = "/game/claim"
	tasksListPath      = "/tasks/list"
	taskStartPath      = "/tasks/start"
	taskCheckPath      = "/tasks/check"
	taskClaimPath      = "/tasks/claim"

	tasksLanguage = "en"
)

func (c *Client) Login(ctx context.Context, initData string) (domain.Token, error) {
	if initData == "" {
		return domain.Token{}, errors.New("init data is required")
	}

	var payload loginResponse
	err := c.sendJSON(ctx, call{
		op:     "login",
		method: http.MethodPost,
		url:    c.userURL(loginPath),
		body:   loginRequest{Query: initData},
	}, &payload)
	if err != nil {
		return domain.Token{}, err
	}
	if payload.Token == nil || (payload.Token.Access == "" && payload.Token.Refresh == "") {
		return domain.Token{}, &domain.RequestError{Op: "login", Err: errors.New("response missing token")}
	}

	return tokenFromPair(*payload.Token), nil
}

func (c *Client) RefreshToken(ctx context.Context, refresh string) (domain.Token, error) {
	if refresh == "" {
		return domain.Token{}, errors.New("refresh token is required")
	}

	var payload tokenPair
	err := c.sendJSON(ctx, call{
		op:     "refresh token",
		method: http.MethodPost,
		url:    c.userURL(refreshPath),
		body:   refreshRequest{Refresh: refresh},
	}, &payload)
	if err != nil {
		return domain.Token{}, err
	}
	if payload.Access == "" && payload.Refresh == "" {
		return domain.Token{}, &domain.RequestError{Op: "refresh token", Err: errors.New("response missing token")}
	}
	if payload.Refresh == "" {
		payload.Refresh = refresh
	}

	return tokenFromPair(payload), nil
}

func tokenFromPair(pair tokenPair) domain.Token {
	token := domain.Token{Access: pair.Access, Refresh: pair.Refresh}
	raw := pair.Access
	if raw == "" {
		raw = pair.Refresh
	}
	token.ClaimsExpiry = claimsExpiry(raw)
	return token
}

// claimsExpiry reads the exp claim without verifying the signature. It is only shown
// to the user; the session relies on its own expiry.
func claimsExpiry(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func (c *Client) Balance(ctx context.Context) (domain.BalanceSnapshot, error) {
	var payload balanceResponse
	err := c.sendJSON(ctx, call{
		op:     "get balance",
		method: http.MethodGet,
		url:    c.gameURL(balancePath),
		auth:   true,
	}, &payload)
	if err != nil {
		return domain.BalanceSnapshot{}, err
	}
	return payload.toDomain(), nil
}

// DailyReward folds server refusals into the result so "same day" can be classified.
func (c *Client) DailyReward(ctx context.Context) (domain.DailyRewardResult, error) {
	body, err := c.send(ctx, call{
		op:     "claim daily reward",
		method: http.MethodGet,
		url:    c.gameURL(dailyRewardPath),
		auth:   true,
	})
	if err != nil {
		if message, ok := domain.ServerMessage(err); ok && message != "" {
			return domain.DailyRewardResult{Message: message}, nil
		}
		return domain.DailyRewardResult{}, c.fail(ctx, err)
	}
	return domain.DailyRewardResult{Message: messageFromBody(body)}, nil
}

func (c *Client) ClaimFarming(ctx context.Context) (domain.FarmingClaim, error) {
	var payload balanceResponse
	err := c.sendJSON(ctx, call{
		op:     "claim farming",
		method: http.MethodPost,
		url:    c.gameURL(farmingClaimPath),
		auth:   true,
	}, &payload)
	if err != nil {
		return domain.FarmingClaim{}, err
	}
	return domain.FarmingClaim{
		AvailableBalance: string(payload.AvailableBalance),
		PlayPasses:       payload.PlayPasses,
	}, nil
}

func (c *Client) StartFarming(ctx context.Context) (domain.Farming, error) {
	var payload farmingPayload
	err := c.sendJSON(ctx, call{
		op:     "start farming",
		method: http.MethodPost,
		url:    c.gameURL(farmingStartPath),
		auth:   true,
	}, &payload)
	if err != nil {
		return domain.Farming{}, err
	}
	return payload.toDomain(), nil
}

func (c *Client) FriendsBalance(ctx context.Context) (domain.ReferralBalance, error) {
	var payload friendsBalanceResponse
	err := c.sendJSON(ctx, call{
		op:     "get friends balance",
		method: http.MethodGet,
		url:    c.userURL(friendsBalancePath),
		auth:   true,
	}, &payload)
	if err != nil {
		return domain.ReferralBalance{}, err
	}
	return domain.ReferralBalance{
		CanClaim:       payload.CanClaim,
		AmountForClaim: string(payload.AmountForClaim),
		CanClaimAt:     payload.CanClaimAt.ptr(),
		UsedInvitation: payload.UsedInvitation,
		Limit:          payload.LimitInvitation,
	}, nil
}

func (c *Client) ClaimFriends(ctx context.Context) (domain.ReferralClaim, error) {
	var payload friendsClaimResponse
	err := c.sendJSON(ctx, call{
		op:     "claim friends balance",
		method: http.MethodPost,
		url:    c.userURL(friendsClaimPath),
		auth:   true,
	}, &payload)
	if err != nil {
		return domain.ReferralClaim{}, err
	}
	return domain.ReferralClaim{
		ClaimBalance: string(payload.ClaimBalance),
		Claimed:      payload.ClaimBalance != "",
	}, nil
}

// PlayGame starts a round. A response without a game id is returned as an empty session.
func (c *Client) PlayGame(ctx context.Context) (domain.GameSession, error) {
	var payload gamePlayResponse
	err := c.sendJSON(ctx, call{
		op:     "start game",
		method: http.MethodPost,
		url:    c.gameURL(gamePlayPath),
		auth:   true,
	}, &payload)
	if err != nil {
		return domain.GameSession{}, err
	}
	return domain.GameSession{ID: payload.GameID}, nil
}

// ClaimGame folds server refusals into the result. A plain 2xx body such as "OK" is the
// claim payload.
func (c *Client) ClaimGame(ctx context.Context, gameID string, points int) (domain.ClaimResult, error) {
	if gameID == "" {
		return domain.ClaimResult{}, domain.ErrNoGameID
	}

	body, err := c.send(ctx, call{
		op:     "claim game",
		method: http.MethodPost,
		url:    c.gameURL(gameClaimPath),
		body:   gameClaimRequest{GameID: gameID, Points: points},
		auth:   true,
	})
	if err != nil {
		if message, ok := domain.ServerMessage(err); ok && message != "" {
			return domain.ClaimResult{Message: message}, nil
		}
		return domain.ClaimResult{}, c.fail(ctx, err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var payload messagePayload
		if err := json.Unmarshal(trimmed, &payload); err == nil && payload.Message != "" {
			return domain.ClaimResult{Message: payload.Message}, nil
		}
	}
	return domain.ClaimResult{Payload: string(trimmed)}, nil
}

func (c *Client) Tasks(ctx context.Context) ([]domain.Task, error) {
	body, err := c.send(ctx, call{
		op:     "list tasks",
		method: http.MethodPost,
		url:    c.gameURL(tasksListPath),
		body:   tasksRequest{LanguageCode: tasksLanguage},
		auth:   true,
	})
	if err != nil {
		return nil, c.fail(ctx, err)
	}

	payloads, err := decodeTasks(body)
	if err != nil {
		return nil, c.fail(ctx, &domain.RequestError{Op: "list tasks", Err: err})
	}

	tasks := make([]domain.Task, 0, len(payloads))
	for _, payload := range payloads {
		tasks = append(tasks, payload.toDomain())
	}
	return tasks, nil
}

// decodeTasks accepts a bare array or an object wrapping it under "tasks".
func decodeTasks(body []byte) ([]taskPayload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tasks []taskPayload
		if err := json.Unmarshal(trimmed, &tasks); err != nil {
			return nil, fmt.Errorf("decode tasks: %w", err)
		}
		return tasks, nil
	}

	var wrapped struct {
		Tasks []taskPayload `json:"tasks"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return wrapped.Tasks, nil
}

func (c *Client) StartTask(ctx context.Context, taskID string) (domain.Task, error) {
	return c.taskAction(ctx, "start task", taskStartPath, taskID)
}

func (c *Client) CheckTask(ctx context.Context, taskID string) (domain.Task, error) {
	return c.taskAction(ctx, "check task", taskCheckPath, taskID)
}

func (c *Client) ClaimTask(ctx context.Context, taskID string) (domain.Task, error) {
	return c.taskAction(ctx, "claim task", taskClaimPath, taskID)
}

func (c *Client) taskAction(ctx context.Context, op string, path string, taskID string) (domain.Task, error) {
	if taskID == "" {
		return domain.Task{}, errors.New("task id is required")
	}

	var payload taskPayload
	err := c.sendJSON(ctx, call{
		op:     op,
		method: http.MethodPost,
		url:    c.gameURL(path),
		body:   taskRequest{TaskID: taskID},
		auth:   true,
	}, &payload)
	if err != nil {
		return domain.Task{}, err
	}
	if payload.ID == "" {
		payload.ID = taskID
	}
	return payload.toDomain(), nil
}

func (c *Client) ProxyIP(ctx context.Context) (string, error) {
	var payload originResponse
	err := c.sendJSON(ctx, call{
		op:      "check proxy",
		method:  http.MethodGet,
		url:     c.cfg.ProxyCheckURL,
		timeout: proxyCheckTimeout,
	}, &payload)
	if err != nil {
		return "", err
	}
	if payload.Origin == "" {
		return "", &domain.RequestError{Op: "check proxy", Err: errors.New("response missing origin")}
	}
	return payload.Origin, nil
}
