package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/99designs/keyring"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/steipete/sheetfield/internal/googleapi"
	"github.com/steipete/sheetfield/internal/secrets"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	return capture(t, &os.Stdout, fn)
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	return capture(t, &os.Stderr, fn)
}

func capture(t *testing.T, target **os.File, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := *target
	*target = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	defer func() {
		*target = orig
	}()
	fn()
	_ = w.Close()
	<-done
	_ = r.Close()
	return buf.String()
}

// isolate points config and keyring at temp locations and clears env that
// would leak credentials into a test.
func isolate(t *testing.T) secrets.Store {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg-config"))
	for _, k := range []string{"SHEETFIELD_API_KEY", "SHEETFIELD_ACCESS_TOKEN", "SHEETFIELD_JSON", "SHEETFIELD_PLAIN", "SHEETFIELD_COLOR"} {
		t.Setenv(k, "")
	}

	store := secrets.NewKeyringStore(keyring.NewArrayKeyring(nil))
	origOpen := openSecrets
	openSecrets = func(string) (secrets.Store, error) { return store, nil }
	t.Cleanup(func() { openSecrets = origOpen })
	return store
}

type sheetsStub struct {
	mu    sync.Mutex
	creds []googleapi.Credentials
}

func (s *sheetsStub) seen() []googleapi.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]googleapi.Credentials(nil), s.creds...)
}

// stubSheets serves spreadsheet metadata for ids in titles; anything else
// is a 404.
func stubSheets(t *testing.T, titles map[string][]string) *sheetsStub {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/")
		names, ok := titles[id]
		if r.Method != http.MethodGet || !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found."}}`))
			return
		}
		sheetsOut := make([]map[string]any, 0, len(names))
		for _, n := range names {
			sheetsOut = append(sheetsOut, map[string]any{"properties": map[string]any{"title": n}})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheetsOut})
	}))
	t.Cleanup(srv.Close)

	stub := &sheetsStub{}
	orig := newSheetsService
	newSheetsService = func(ctx context.Context, creds googleapi.Credentials, _ ...option.ClientOption) (*sheets.Service, error) {
		stub.mu.Lock()
		stub.creds = append(stub.creds, creds)
		stub.mu.Unlock()
		if _, err := googleapi.ClientOptions(ctx, creds); err != nil {
			return nil, err
		}
		return sheets.NewService(ctx,
			option.WithoutAuthentication(),
			option.WithHTTPClient(srv.Client()),
			option.WithEndpoint(srv.URL+"/"),
		)
	}
	t.Cleanup(func() { newSheetsService = orig })
	return stub
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
