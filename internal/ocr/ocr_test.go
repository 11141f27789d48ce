package ocr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractTextSuccess(t *testing.T) {
	var gotAPIKey, gotLanguage, gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("expected multipart form: %v", err)
		}
		gotAPIKey = r.FormValue("apikey")
		gotLanguage = r.FormValue("language")
		if f := r.MultipartForm.File["file"]; len(f) == 1 {
			gotFilename = f[0].Filename
		}
		w.Write([]byte(`{"IsErroredOnProcessing":false,"ParsedResults":[{"ParsedText":"Staples\nTotal $4.25"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key123", "eng")
	text, err := c.ExtractText(context.Background(), []byte("imagedata"), "png")
	if err != nil {
		t.Fatal(err)
	}
	if text != "Staples\nTotal $4.25" {
		t.Errorf("text = %q", text)
	}
	if gotAPIKey != "key123" || gotLanguage != "eng" {
		t.Errorf("form fields apikey=%q language=%q", gotAPIKey, gotLanguage)
	}
	if gotFilename != "receipt.png" {
		t.Errorf("filename = %q", gotFilename)
	}
}

func TestExtractTextJoinsMultipleResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":"page one\n"},{"ParsedText":"page two"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "")
	text, err := c.ExtractText(context.Background(), []byte("x"), "jpeg")
	if err != nil {
		t.Fatal(err)
	}
	if text != "page one\npage two" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractTextFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "service reported error with message list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"IsErroredOnProcessing":true,"ErrorMessage":["bad image","try again"]}`))
			},
			wantErr: ErrService,
		},
		{
			name: "service reported error with bare string message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"IsErroredOnProcessing":true,"ErrorMessage":"bad image"}`))
			},
			wantErr: ErrService,
		},
		{
			name: "empty parsed results",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"IsErroredOnProcessing":false,"ParsedResults":[]}`))
			},
			wantErr: ErrEmpty,
		},
		{
			name: "whitespace-only text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"ParsedResults":[{"ParsedText":"  \n "}]}`))
			},
			wantErr: ErrEmpty,
		},
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "quota exceeded", http.StatusForbidden)
			},
			wantErr: ErrTransport,
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>not json</html>"))
			},
			wantErr: ErrTransport,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, "k", "eng")
			_, err := c.ExtractText(context.Background(), []byte("x"), "png")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractTextTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	c := NewClient(srv.URL, "k", "eng")
	_, err := c.ExtractText(context.Background(), []byte("x"), "png")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("got %v, want ErrTransport", err)
	}
}
