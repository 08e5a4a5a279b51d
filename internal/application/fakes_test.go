package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/bnema/blum-farm-cli/internal/ports"
)

var errNoScript = errors.New("no scripted response")

type playResult struct {
	game domain.GameSession
	err  error
}

type claimResult struct {
	result domain.ClaimResult
	err    error
}

// fakeGameAPI replays scripted responses. Queues are consumed in order; the last
// balance repeats once the queue is drained.
type fakeGameAPI struct {
	calls   []string
	bearers []string
	bearer  string
	closed  bool

	loginResults   []tokenResult
	refreshResults []tokenResult
	refreshedWith  []string

	balances   []domain.BalanceSnapshot
	balanceErr error

	daily    []domain.DailyRewardResult
	dailyErr error

	farmingClaimErr error
	farmingStartErr error

	friends      domain.ReferralBalance
	friendsErr   error
	friendsClaim domain.ReferralClaim

	plays  []playResult
	claims []claimResult

	tasks []domain.Task

	proxyIP string
}

type tokenResult struct {
	token domain.Token
	err   error
}

var _ ports.GameAPI = (*fakeGameAPI)(nil)

func (f *fakeGameAPI) record(name string) {
	f.calls = append(f.calls, name)
}

func (f *fakeGameAPI) authed(name string) {
	f.record(name)
	f.bearers = append(f.bearers, f.bearer)
}

func (f *fakeGameAPI) count(name string) int {
	n := 0
	for _, call := range f.calls {
		if call == name {
			n++
		}
	}
	return n
}

func (f *fakeGameAPI) Login(_ context.Context, initData string) (domain.Token, error) {
	f.record("login")
	if len(f.loginResults) == 0 {
		return domain.Token{Access: "access-" + initData, Refresh: "refresh-" + initData}, nil
	}
	next := f.loginResults[0]
	f.loginResults = f.loginResults[1:]
	return next.token, next.err
}

func (f *fakeGameAPI) RefreshToken(_ context.Context, refresh string) (domain.Token, error) {
	f.record("refresh")
	f.refreshedWith = append(f.refreshedWith, refresh)
	if len(f.refreshResults) == 0 {
		return domain.Token{Access: "access-refreshed", Refresh: "refresh-refreshed"}, nil
	}
	next := f.refreshResults[0]
	f.refreshResults = f.refreshResults[1:]
	return next.token, next.err
}

func (f *fakeGameAPI) SetBearer(token string) {
	f.bearer = token
}

func (f *fakeGameAPI) Balance(context.Context) (domain.BalanceSnapshot, error) {
	f.authed("balance")
	if f.balanceErr != nil {
		return domain.BalanceSnapshot{}, f.balanceErr
	}
	if len(f.balances) == 0 {
		return domain.BalanceSnapshot{}, errNoScript
	}
	next := f.balances[0]
	if len(f.balances) > 1 {
		f.balances = f.balances[1:]
	}
	return next, nil
}

func (f *fakeGameAPI) DailyReward(context.Context) (domain.DailyRewardResult, error) {
	f.authed("daily")
	if f.dailyErr != nil {
		return domain.DailyRewardResult{}, f.dailyErr
	}
	if len(f.daily) == 0 {
		return domain.DailyRewardResult{Message: "same day"}, nil
	}
	next := f.daily[0]
	f.daily = f.daily[1:]
	return next, nil
}

func (f *fakeGameAPI) ClaimFarming(context.Context) (domain.FarmingClaim, error) {
	f.authed("farming_claim")
	if f.farmingClaimErr != nil {
		return domain.FarmingClaim{}, f.farmingClaimErr
	}
	return domain.FarmingClaim{AvailableBalance: "100"}, nil
}

func (f *fakeGameAPI) StartFarming(context.Context) (domain.Farming, error) {
	f.authed("farming_start")
	if f.farmingStartErr != nil {
		return domain.Farming{}, f.farmingStartErr
	}
	return domain.Farming{}, nil
}

func (f *fakeGameAPI) FriendsBalance(context.Context) (domain.ReferralBalance, error) {
	f.authed("friends_balance")
	return f.friends, f.friendsErr
}

func (f *fakeGameAPI) ClaimFriends(context.Context) (domain.ReferralClaim, error) {
	f.authed("friends_claim")
	return f.friendsClaim, nil
}

func (f *fakeGameAPI) PlayGame(context.Context) (domain.GameSession, error) {
	f.authed("play")
	if len(f.plays) == 0 {
		return domain.GameSession{ID: fmt.Sprintf("game-%d", f.count("play"))}, nil
	}
	next := f.plays[0]
	f.plays = f.plays[1:]
	return next.game, next.err
}

func (f *fakeGameAPI) ClaimGame(_ context.Context, gameID string, points int) (domain.ClaimResult, error) {
	f.authed("claim")
	if points != domain.FixedGamePoints {
		return domain.ClaimResult{}, fmt.Errorf("unexpected points %d", points)
	}
	if len(f.claims) == 0 {
		return domain.ClaimResult{Payload: "OK"}, nil
	}
	next := f.claims[0]
	f.claims = f.claims[1:]
	return next.result, next.err
}

func (f *fakeGameAPI) Tasks(context.Context) ([]domain.Task, error) {
	f.authed("tasks")
	return f.tasks, nil
}

func (f *fakeGameAPI) StartTask(_ context.Context, taskID string) (domain.Task, error) {
	f.authed("task_start")
	return domain.Task{ID: taskID, Status: domain.TaskStarted}, nil
}

func (f *fakeGameAPI) CheckTask(_ context.Context, taskID string) (domain.Task, error) {
	f.authed("task_check")
	return domain.Task{ID: taskID, Status: domain.TaskReadyForClaim}, nil
}

func (f *fakeGameAPI) ClaimTask(_ context.Context, taskID string) (domain.Task, error) {
	f.authed("task_claim")
	return domain.Task{ID: taskID, Status: domain.TaskFinished}, nil
}

func (f *fakeGameAPI) ProxyIP(context.Context) (string, error) {
	f.record("proxy_ip")
	if f.proxyIP == "" {
		return "", errNoScript
	}
	return f.proxyIP, nil
}

func (f *fakeGameAPI) Close() error {
	f.record("close")
	f.closed = true
	return nil
}

func (f *fakeGameAPI) Closed() bool {
	return f.closed
}

// fakeFactory hands out the same scripted API, reopened, on every build.
type fakeFactory struct {
	api     *fakeGameAPI
	builds  int
	configs []ports.ClientConfig
	err     error
}

func (f *fakeFactory) NewClient(cfg ports.ClientConfig) (ports.GameAPI, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.builds++
	f.configs = append(f.configs, cfg)
	f.api.closed = false
	f.api.bearer = ""
	return f.api, nil
}

// fakeClock advances instantly on Sleep and records every requested duration.
type fakeClock struct {
	now     time.Time
	sleeps  []time.Duration
	onSleep func(n int, d time.Duration)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	if c.onSleep != nil {
		c.onSleep(len(c.sleeps), d)
	}
	return ctx.Err()
}

func (c *fakeClock) slept(d time.Duration) int {
	n := 0
	for _, s := range c.sleeps {
		if s == d {
			n++
		}
	}
	return n
}

// staticLaunch resolves every account to the same init data.
type staticLaunch struct {
	data domain.LaunchData
	err  error
}

func (s staticLaunch) Resolve(context.Context, domain.Account) (domain.LaunchData, error) {
	return s.data, s.err
}

func testSession(api *fakeGameAPI, clock *fakeClock) (*SessionDriver, *fakeFactory) {
	factory := &fakeFactory{api: api}
	session := NewSessionDriver(
		SessionConfig{Account: domain.Account{ID: "main"}},
		factory,
		staticLaunch{data: domain.LaunchData{InitData: "init"}},
		clock,
		nil,
	)
	return session, factory
}
