package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountAddThenList(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home,
		"account", "add",
		"--name", "Main Farm",
		"--init-data", "query_id=abc&user=%7B%7D",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "saved account main-farm")

	stdout, _, err = executeCLI(t, home, "account", "list")
	require.NoError(t, err)
	assert.Equal(t, "main-farm\tMain Farm\t-\n", stdout)

	secret, err := os.ReadFile(filepath.Join(home, ".bfarm", "secrets", "blum", "main-farm", "init_data"))
	require.NoError(t, err)
	assert.Equal(t, "query_id=abc&user=%7B%7D", strings.TrimSpace(string(secret)))
}

func TestAccountAddReadsInitDataFromStdin(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLIWithInput(t, home, "from-stdin\n",
		"account", "add", "--account", "main", "--init-data", "-",
	)
	require.NoError(t, err)

	secret, err := os.ReadFile(filepath.Join(home, ".bfarm", "secrets", "blum", "main", "init_data"))
	require.NoError(t, err)
	assert.Equal(t, "from-stdin", strings.TrimSpace(string(secret)))
}

func TestAccountAddWithoutInitDataFails(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "account", "add", "--account", "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init data is required")
}

func TestAccountRemoveDeletesAccountAndSecret(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeAccountsFixture(home))

	_, _, err := executeCLI(t, home, "account", "remove", "--account", "main")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "account", "list")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	_, err = os.Stat(filepath.Join(home, ".bfarm", "secrets", "blum", "main", "init_data"))
	assert.True(t, os.IsNotExist(err))
}

func TestAccountRemoveUnknownAccount(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "account", "remove", "--account", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account not found")
}

func TestAccountImportProfiles(t *testing.T) {
	home := t.TempDir()
	profiles := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(profiles, []byte(`profiles:
  - name: Alpha
    query: query-alpha
  - name: Beta
    query: query-beta
    proxy: 127.0.0.1:1080
  - name: Broken
`), 0o600))

	stdout, _, err := executeCLI(t, home, "account", "import", profiles)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `profile "Broken"`)
	assert.Contains(t, stdout, "imported 2 account(s), 1 failed")

	stdout, _, err = executeCLI(t, home, "account", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "alpha\tAlpha\t-")
	assert.Contains(t, stdout, "beta\tBeta\tproxy")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(stdout))
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"login\"")
}

func TestRunWithoutAccounts(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "run")
	require.ErrorIs(t, err, errNoAccounts)
}

func TestTasksRequiresAccountFlag(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "tasks", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"account\" not set")
}

func TestStatusJSONOutput(t *testing.T) {
	server := newFakeBlumServer(t)
	home := t.TempDir()
	require.NoError(t, writeAccountsFixture(home))

	stdout, _, err := executeCLI(t, home, "status", "--account", "main", "--json")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)), stdout)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 1)
	assert.NotContains(t, rows[0], "error")
	assert.Contains(t, stdout, `"Available": "1234.5"`)
	assert.Contains(t, stdout, `"PlayPasses": 3`)
	assert.Equal(t, "Bearer refresh-1", server.lastAuth())
}

func TestStatusRendersView(t *testing.T) {
	newFakeBlumServer(t)
	home := t.TempDir()
	require.NoError(t, writeAccountsFixture(home))

	stdout, _, err := executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Main (main)")
	assert.Contains(t, stdout, "balance: 1234.5")
}

func TestStatusShowsFetchingSpinnerMessage(t *testing.T) {
	server := newFakeBlumServer(t)
	server.delay = 200 * time.Millisecond
	home := t.TempDir()
	require.NoError(t, writeAccountsFixture(home))

	_, stderr, err := executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Fetching account status")
}

func TestStatusShowsLoginFailurePerAccount(t *testing.T) {
	server := newFakeBlumServer(t)
	server.loginStatus = http.StatusUnauthorized
	home := t.TempDir()
	require.NoError(t, writeAccountsFixture(home))

	stdout, _, err := executeCLI(t, home, "status", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"error"`)
}

func TestDailyClaimsReward(t *testing.T) {
	newFakeBlumServer(t)
	home := t.TempDir()
	require.NoError(t, writeAccountsFixture(home))

	stdout, _, err := executeCLI(t, home, "daily", "--account", "main")
	require.NoError(t, err)
	assert.Equal(t, "daily reward claimed\n", stdout)
}

func TestDailyUnknownAccount(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "daily", "--account", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account not found")
}

func TestTasksListAndClaimReady(t *testing.T) {
	server := newFakeBlumServer(t)
	home := t.TempDir()
	require.NoError(t, writeAccountsFixture(home))

	stdout, _, err := executeCLI(t, home, "tasks", "list", "--account", "main")
	require.NoError(t, err)
	assert.Contains(t, stdout, "t-1\tREADY_FOR_CLAIM\t50\tFollow channel\n")
	assert.Contains(t, stdout, "t-2\tNOT_STARTED\t-\tInvite a friend\n")

	stdout, _, err = executeCLI(t, home, "tasks", "claim", "--account", "main")
	require.NoError(t, err)
	assert.Contains(t, stdout, "t-1\tFINISHED")
	assert.Equal(t, []string{"t-1"}, server.claimedTasks())
}

func TestTasksStartRequiresTaskFlag(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "tasks", "start", "--account", "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"task\" not set")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIWithInput(t, home, "", args...)
}

func executeCLIWithInput(t *testing.T, home string, input string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("PASSWORD_STORE_DIR", filepath.Join(home, ".password-store"))
	t.Setenv("BFARM_USER_AGENT_RANDOMIZE", "false")
	t.Setenv("BFARM_API_MAX_RPS", "100")

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(strings.NewReader(input))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// writeAccountsFixture stores one account whose init data lives in the file backend.
func writeAccountsFixture(home string) error {
	configDir := filepath.Join(home, ".bfarm")
	secretDir := filepath.Join(configDir, "secrets", "blum", "main")
	if err := os.MkdirAll(secretDir, 0o700); err != nil {
		return err
	}

	accounts := `version = 1

[[accounts]]
id = "main"
name = "Main"

[accounts.auth]
secret_ref = "blum://main/init_data"
`
	if err := os.WriteFile(filepath.Join(configDir, "accounts.toml"), []byte(accounts), 0o600); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(secretDir, "init_data"), []byte("query_id=main\n"), 0o600)
}

type fakeBlumServer struct {
	loginStatus int
	delay       time.Duration

	mu      sync.Mutex
	auth    string
	claimed []string
}

// newFakeBlumServer serves both API domains and points the CLI at it.
func newFakeBlumServer(t *testing.T) *fakeBlumServer {
	t.Helper()

	fake := &fakeBlumServer{loginStatus: http.StatusOK}
	server := httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(server.Close)

	t.Setenv("BFARM_API_GAME_URL", server.URL)
	t.Setenv("BFARM_API_USER_URL", server.URL)
	return fake
}

func (f *fakeBlumServer) serve(w http.ResponseWriter, r *http.Request) {
	time.Sleep(f.delay)
	if auth := r.Header.Get("Authorization"); auth != "" {
		f.mu.Lock()
		f.auth = auth
		f.mu.Unlock()
	}

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/auth/provider/PROVIDER_TELEGRAM_MINI_APP":
		if f.loginStatus != http.StatusOK {
			w.WriteHeader(f.loginStatus)
			_, _ = fmt.Fprint(w, `{"message":"Invalid init data"}`)
			return
		}
		_, _ = fmt.Fprint(w, `{"token":{"access":"access-1","refresh":"refresh-1"}}`)
	case "/user/balance":
		_, _ = fmt.Fprint(w, `{"availableBalance":"1234.5","playPasses":3,"timestamp":1792324800000}`)
	case "/friends/balance":
		_, _ = fmt.Fprint(w, `{"canClaim":false,"amountForClaim":"0","usedInvitation":2,"limitInvitation":10}`)
	case "/daily-reward":
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprint(w, "OK")
	case "/tasks/list":
		_, _ = fmt.Fprint(w, `[{"id":"t-1","title":"Follow channel","status":"READY_FOR_CLAIM","reward":"50"},{"id":"t-2","title":"Invite a friend","status":"NOT_STARTED"}]`)
	case "/tasks/claim":
		var body struct {
			TaskID string `json:"taskId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.claimed = append(f.claimed, body.TaskID)
		f.mu.Unlock()
		_, _ = fmt.Fprintf(w, `{"id":%q,"title":"Follow channel","status":"FINISHED","reward":"50"}`, body.TaskID)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"message":"not found"}`)
	}
}

func (f *fakeBlumServer) lastAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth
}

func (f *fakeBlumServer) claimedTasks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.claimed...)
}
