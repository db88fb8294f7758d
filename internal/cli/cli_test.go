package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// fakeAPI serves just enough of the remote API for the commands under test.
type fakeAPI struct {
	mu       sync.Mutex
	role     string
	revoked  bool
	calls    map[string]int
	approved []string
	deposits []int
}

func (f *fakeAPI) callCount(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

func (f *fakeAPI) revoke() {
	f.mu.Lock()
	f.revoked = true
	f.mu.Unlock()
}

const assignmentJSON = `[{
	"id": "a1",
	"task": {"id": "t1", "title": "Arrumar a cama", "coinValue": 10, "xpValue": 5, "category": "ORGANIZACAO", "status": "ACTIVE"},
	"childId": "c1", "childName": "Ana", "status": "COMPLETED", "createdAt": "2026-02-01T10:00:00Z"
}]`

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	user := func() map[string]any {
		f.mu.Lock()
		defer f.mu.Unlock()
		return map[string]any{"id": "u1", "email": "maria@example.com", "fullName": "Maria Souza", "role": f.role, "familyId": "f1"}
	}
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer opaque-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h(w, r)
		}
	}
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Credenciais inválidas"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"accessToken": "opaque-token", "refreshToken": "r", "user": user()})
	})
	mux.HandleFunc("GET /api/auth/me", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(user())
	}))
	mux.HandleFunc("POST /api/auth/logout", authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("GET /api/users/children", authed(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": "c1", "username": "ana", "fullName": "Ana Souza", "role": "CHILD"}]`))
	}))
	mux.HandleFunc("GET /api/tasks", authed(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(assignmentJSON))
	}))
	mux.HandleFunc("POST /api/tasks/assignments/{id}/approve", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.approved = append(f.approved, r.PathValue("id"))
		f.mu.Unlock()
		w.Write([]byte(strings.Replace(strings.Trim(assignmentJSON, "[]"), "COMPLETED", "APPROVED", 1)))
	}))
	mux.HandleFunc("GET /api/rewards", authed(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": "r1", "name": "Sorvete", "coinCost": 50, "isActive": true}]`))
	}))
	mux.HandleFunc("GET /api/wallet", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.revoked {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		balance := 100
		for _, d := range f.deposits {
			balance -= d
		}
		json.NewEncoder(w).Encode(map[string]int{"balance": balance, "totalEarned": 100})
	}))
	mux.HandleFunc("GET /api/savings", authed(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"balance": 0, "totalDeposited": 0, "totalEarned": 0}`))
	}))
	mux.HandleFunc("POST /api/savings/deposit", authed(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.deposits = append(f.deposits, body["amount"])
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"balance": body["amount"], "totalDeposited": body["amount"], "lastDepositAt": "2026-02-10T12:00:00Z"})
	}))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.Method+" "+r.URL.Path]++
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func setupCLI(t *testing.T, role string) *fakeAPI {
	t.Helper()
	api := &fakeAPI{role: role, calls: make(map[string]int)}
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	t.Chdir(t.TempDir())
	t.Setenv("KIDSCOIN_API_URL", server.URL+"/api")
	t.Setenv("KIDSCOIN_DB_PATH", filepath.Join(t.TempDir(), "state.db"))
	t.Setenv("KIDSCOIN_LOG_LEVEL", "error")
	return api
}

func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func login(t *testing.T) {
	t.Helper()
	out, errOut, code := run(t, "login", "--email", "maria@example.com", "--password", "secret")
	if code != 0 {
		t.Fatalf("login exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Bem-vindo(a), Maria!") {
		t.Errorf("login output = %q", out)
	}
}

func TestLoginPersistsAcrossCommands(t *testing.T) {
	setupCLI(t, "PARENT")
	login(t)

	out, errOut, code := run(t, "whoami")
	if code != 0 {
		t.Fatalf("whoami exit %d: %s", code, errOut)
	}
	for _, want := range []string{"Maria Souza", "PARENT", "Crianças: 1", "Recompensas ativas: 1", "Ana Souza"} {
		if !strings.Contains(out, want) {
			t.Errorf("whoami output missing %q:\n%s", want, out)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	setupCLI(t, "PARENT")
	_, errOut, code := run(t, "login", "--email", "maria@example.com", "--password", "nope")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(errOut, "Credenciais inválidas") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	setupCLI(t, "PARENT")
	_, errOut, code := run(t, "child-login", "--username", "ana", "--pin", "12")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(errOut, "PIN") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestWhoamiSignedOut(t *testing.T) {
	setupCLI(t, "PARENT")
	_, errOut, code := run(t, "whoami")
	if code != 1 || !strings.Contains(errOut, "Faça login") {
		t.Errorf("exit = %d, stderr = %q", code, errOut)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	setupCLI(t, "PARENT")
	login(t)
	if out, errOut, code := run(t, "logout"); code != 0 || !strings.Contains(out, "Sessão encerrada") {
		t.Fatalf("logout exit %d: %s %s", code, out, errOut)
	}
	if _, _, code := run(t, "whoami"); code != 1 {
		t.Errorf("whoami after logout exit = %d, want 1", code)
	}
}

func TestTasksListAndApprove(t *testing.T) {
	api := setupCLI(t, "PARENT")
	login(t)

	out, errOut, code := run(t, "tasks", "list", "--status", "completed")
	if code != 0 {
		t.Fatalf("tasks list exit %d: %s", code, errOut)
	}
	for _, want := range []string{"Arrumar a cama", "Aguardando aprovação", "approve, reject"} {
		if !strings.Contains(out, want) {
			t.Errorf("tasks list output missing %q:\n%s", want, out)
		}
	}

	out, errOut, code = run(t, "tasks", "approve", "a1")
	if code != 0 {
		t.Fatalf("approve exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Aprovada") {
		t.Errorf("approve output = %q", out)
	}
	if len(api.approved) != 1 || api.approved[0] != "a1" {
		t.Errorf("approved = %v", api.approved)
	}
}

func TestTasksApproveUnknownID(t *testing.T) {
	setupCLI(t, "PARENT")
	login(t)
	_, errOut, code := run(t, "tasks", "approve", "missing")
	if code != 1 || !strings.Contains(errOut, "Tarefa não encontrada") {
		t.Errorf("exit = %d, stderr = %q", code, errOut)
	}
}

func TestTasksRejectNeedsReason(t *testing.T) {
	api := setupCLI(t, "PARENT")
	login(t)
	_, _, code := run(t, "tasks", "reject", "a1", "--reason", "   ")
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
	if n := api.callCount("GET /api/tasks"); n != 0 {
		t.Errorf("GET /api/tasks calls = %d, want 0", n)
	}
}

func TestRedemptionRejectNeedsReason(t *testing.T) {
	api := setupCLI(t, "PARENT")
	login(t)
	_, errOut, code := run(t, "redemptions", "reject", "rd1", "--reason", "")
	if code != 1 || !strings.Contains(errOut, "motivo") {
		t.Errorf("exit = %d, stderr = %q", code, errOut)
	}
	if n := api.callCount("GET /api/redemptions"); n != 0 {
		t.Errorf("GET /api/redemptions calls = %d, want 0", n)
	}
}

func TestChildDepositRefreshesWallet(t *testing.T) {
	api := setupCLI(t, "CHILD")
	login(t)

	out, errOut, code := run(t, "savings", "deposit", "40")
	if code != 0 {
		t.Fatalf("deposit exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "carteira 100 → 60") {
		t.Errorf("missing preview:\n%s", out)
	}
	if !strings.Contains(out, "Carteira: 60 moedas") {
		t.Errorf("missing refreshed wallet:\n%s", out)
	}
	if len(api.deposits) != 1 || api.deposits[0] != 40 {
		t.Errorf("deposits = %v", api.deposits)
	}
}

func TestChildDepositOverBalance(t *testing.T) {
	api := setupCLI(t, "CHILD")
	login(t)
	out, errOut, code := run(t, "savings", "deposit", "500")
	if code != 1 || !strings.Contains(errOut, "Saldo insuficiente na carteira") {
		t.Errorf("exit = %d, stderr = %q", code, errOut)
	}
	if strings.Contains(out, "Prévia") {
		t.Errorf("preview shown for a rejected deposit:\n%s", out)
	}
	if len(api.deposits) != 0 {
		t.Errorf("deposits = %v", api.deposits)
	}
}

func TestChildWithdrawOverBalance(t *testing.T) {
	api := setupCLI(t, "CHILD")
	login(t)
	out, errOut, code := run(t, "savings", "withdraw", "10")
	if code != 1 || !strings.Contains(errOut, "Saldo insuficiente na poupança") {
		t.Errorf("exit = %d, stderr = %q", code, errOut)
	}
	if strings.Contains(out, "Prévia") {
		t.Errorf("preview shown for a rejected withdrawal:\n%s", out)
	}
	if n := api.callCount("POST /api/savings/withdraw"); n != 0 {
		t.Errorf("withdraw calls = %d, want 0", n)
	}
}

func TestSimulateRejectsWeekRange(t *testing.T) {
	for _, weeks := range []string{"-4", "0", "100000"} {
		api := setupCLI(t, "CHILD")
		login(t)
		_, errOut, code := run(t, "savings", "simulate", "--weeks="+weeks)
		if code != 1 || !strings.Contains(errOut, "Semanas") {
			t.Errorf("weeks %s: exit = %d, stderr = %q", weeks, code, errOut)
		}
		if n := api.callCount("GET /api/savings"); n != 0 {
			t.Errorf("weeks %s: GET /api/savings calls = %d, want 0", weeks, n)
		}
	}
}

func TestRejectedCredentialSignsOut(t *testing.T) {
	api := setupCLI(t, "CHILD")
	login(t)
	api.revoke()

	_, errOut, code := run(t, "wallet")
	if code != 1 || !strings.Contains(errOut, "Sessão expirada") {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
	meBefore := api.callCount("GET /api/auth/me")
	if _, errOut, code := run(t, "whoami"); code != 1 || !strings.Contains(errOut, "Faça login") {
		t.Errorf("whoami after 401: exit = %d, stderr = %q", code, errOut)
	}
	if n := api.callCount("GET /api/auth/me"); n != meBefore {
		t.Errorf("stored credential survived the 401: /auth/me called %d more times", n-meBefore)
	}
}

func TestFailedLoginKeepsSession(t *testing.T) {
	setupCLI(t, "PARENT")
	login(t)
	if _, _, code := run(t, "login", "--email", "maria@example.com", "--password", "nope"); code != 1 {
		t.Fatalf("wrong password exit = %d, want 1", code)
	}
	if _, errOut, code := run(t, "whoami"); code != 0 {
		t.Errorf("whoami after failed login: exit = %d, stderr = %q", code, errOut)
	}
}

func TestChildCannotCreateReward(t *testing.T) {
	setupCLI(t, "CHILD")
	login(t)
	_, errOut, code := run(t, "rewards", "create", "--name", "Bike", "--cost", "10")
	if code != 1 || !strings.Contains(errOut, "Apenas pais") {
		t.Errorf("exit = %d, stderr = %q", code, errOut)
	}
}

func TestRewardDeleteNeedsConfirmation(t *testing.T) {
	setupCLI(t, "PARENT")
	login(t)
	_, errOut, code := run(t, "rewards", "delete", "r1")
	if code != 1 || !strings.Contains(errOut, "--yes") {
		t.Errorf("exit = %d, stderr = %q", code, errOut)
	}
}

func TestParseRecurrence(t *testing.T) {
	tests := []struct {
		name, repeat, days, until string
		wantNil, wantErr          bool
	}{
		{name: "one-off", wantNil: true},
		{name: "days without repeat", days: "MON", wantErr: true},
		{name: "daily", repeat: "daily"},
		{name: "weekly", repeat: "WEEKLY", days: "MON,FRI", until: "2026-03-31"},
		{name: "bad type", repeat: "monthly", wantErr: true},
		{name: "bad day", repeat: "weekly", days: "XYZ", wantErr: true},
		{name: "bad date", repeat: "daily", until: "31/03/2026", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := parseRecurrence(tt.repeat, tt.days, tt.until)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (rule == nil) != tt.wantNil {
				t.Errorf("rule = %+v, wantNil %v", rule, tt.wantNil)
			}
		})
	}
}

func TestProgressBar(t *testing.T) {
	if got := progressBar(50, 10); got != "[#####.....]" {
		t.Errorf("progressBar(50) = %q", got)
	}
	if got := progressBar(100, 4); got != "[####]" {
		t.Errorf("progressBar(100) = %q", got)
	}
}

