package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/typeviz/pkg/config"
	"github.com/matzehuels/typeviz/pkg/session"
	"github.com/matzehuels/typeviz/pkg/typedb"
)

// tokenServer issues "fresh" on sign-in and only accepts that token.
func tokenServer(t *testing.T, signIns *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/signin", func(w http.ResponseWriter, r *http.Request) {
		signIns.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "fresh"})
	})
	mux.HandleFunc("GET /v1/databases", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			http.Error(w, "token expired", http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"databases":[{"name":"social"}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testClientConfig(address string) *config.Config {
	cfg := config.Default()
	cfg.TypeDB.Address = address
	cfg.TypeDB.Username = "admin"
	cfg.TypeDB.Password = "password"
	cfg.Cache.Backend = config.CacheNone
	return cfg
}

func listDatabases(t *testing.T, c *CLI, cfg *config.Config) []string {
	t.Helper()
	var names []string
	err := c.withClient(context.Background(), cfg, func(client *typedb.Client) error {
		var err error
		names, err = client.Databases(context.Background())
		return err
	})
	if err != nil {
		t.Fatalf("withClient() error: %v", err)
	}
	return names
}

func TestWithClientReusesSession(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var signIns atomic.Int32
	cfg := testClientConfig(tokenServer(t, &signIns).URL)
	c := New(io.Discard, LogInfo)

	if names := listDatabases(t, c, cfg); len(names) != 1 || names[0] != "social" {
		t.Errorf("Databases() = %v, want [social]", names)
	}
	listDatabases(t, c, cfg)

	if n := signIns.Load(); n != 1 {
		t.Errorf("sign-ins = %d, want 1", n)
	}
}

func TestWithClientRenewsRejectedToken(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var signIns atomic.Int32
	cfg := testClientConfig(tokenServer(t, &signIns).URL)

	store, err := session.NewFileStore("")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	stale := session.New(cfg.TypeDB.Address, "admin", "stale", time.Hour)
	if err := store.Set(ctx, stale); err != nil {
		t.Fatal(err)
	}

	listDatabases(t, New(io.Discard, LogInfo), cfg)

	if n := signIns.Load(); n != 1 {
		t.Errorf("sign-ins = %d, want 1", n)
	}
	got, err := store.Get(ctx, stale.ID)
	if err != nil || got == nil {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if got.Token != "fresh" {
		t.Errorf("stored token = %q, want fresh", got.Token)
	}
}

func TestLogout(t *testing.T) {
	// runCLI points XDG_CONFIG_HOME at a new dir, so there is no session.
	if _, err := runCLI(t, "logout"); err != nil {
		t.Fatalf("logout error: %v", err)
	}
	if _, err := runCLI(t, "logout", "--all"); err != nil {
		t.Fatalf("logout --all error: %v", err)
	}
}
