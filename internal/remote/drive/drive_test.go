package drive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"google.golang.org/api/googleapi"

	"ricevute/internal/remote"
)

func TestEscape(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Receipts", "Receipts"},
		{"Bob's Diner", `Bob\'s Diner`},
		{`back\slash`, `back\\slash`},
	}
	for _, tc := range cases {
		if got := escape(tc.in); got != tc.want {
			t.Errorf("escape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReadCredentials(t *testing.T) {
	dir := t.TempDir()
	clientPath := filepath.Join(dir, "client.json")
	tokenPath := filepath.Join(dir, "token.json")
	if err := os.WriteFile(clientPath, []byte(`{"installed":{}}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tokenPath, []byte(`{"access_token":"a"}`), 0600); err != nil {
		t.Fatal(err)
	}

	t.Run("from files", func(t *testing.T) {
		creds, err := ReadCredentials(clientPath, "", tokenPath, "")
		if err != nil {
			t.Fatal(err)
		}
		if len(creds.ClientJSON) == 0 || len(creds.TokenJSON) == 0 {
			t.Fatalf("credentials not read")
		}
	})

	t.Run("inline wins over files", func(t *testing.T) {
		creds, err := ReadCredentials(clientPath, `{"web":{}}`, tokenPath, `{"access_token":"b"}`)
		if err != nil {
			t.Fatal(err)
		}
		if string(creds.ClientJSON) != `{"web":{}}` {
			t.Fatalf("inline client JSON should win")
		}
	})

	t.Run("missing client is an auth error", func(t *testing.T) {
		_, err := ReadCredentials("", "", tokenPath, "")
		if !errors.Is(err, remote.ErrAuth) {
			t.Fatalf("got %v, want ErrAuth", err)
		}
	})

	t.Run("missing token is an auth error", func(t *testing.T) {
		_, err := ReadCredentials(clientPath, "", "", "")
		if !errors.Is(err, remote.ErrAuth) {
			t.Fatalf("got %v, want ErrAuth", err)
		}
	})
}

func TestClassify(t *testing.T) {
	if err := classify(&googleapi.Error{Code: 401}); !errors.Is(err, remote.ErrAuth) {
		t.Errorf("401 should map to ErrAuth, got %v", err)
	}
	if err := classify(&googleapi.Error{Code: 403}); !errors.Is(err, remote.ErrAuth) {
		t.Errorf("403 should map to ErrAuth, got %v", err)
	}
	if err := classify(&googleapi.Error{Code: 500}); !errors.Is(err, remote.ErrSync) {
		t.Errorf("500 should map to ErrSync, got %v", err)
	}
	if err := classify(errors.New("boom")); !errors.Is(err, remote.ErrSync) {
		t.Errorf("plain errors map to ErrSync, got %v", err)
	}
}
