// Package drive implements remote.Store on Google Drive v3.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"

	"ricevute/internal/remote"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Credentials carries the OAuth client definition and the structured token
// record (access token, refresh token, expiry). The token source refreshes
// the access token on expiry using the refresh token.
type Credentials struct {
	ClientJSON []byte
	TokenJSON  []byte
}

// ReadCredentials assembles Credentials from either inline JSON or files,
// inline taking precedence. Inline suits container deployments, files suit
// local development.
func ReadCredentials(clientFile, clientJSON, tokenFile, tokenJSON string) (Credentials, error) {
	var creds Credentials
	switch {
	case clientJSON != "":
		creds.ClientJSON = []byte(clientJSON)
	case clientFile != "":
		b, err := os.ReadFile(clientFile)
		if err != nil {
			return Credentials{}, fmt.Errorf("%w: read client file: %v", remote.ErrAuth, err)
		}
		creds.ClientJSON = b
	default:
		return Credentials{}, fmt.Errorf("%w: missing OAuth client credentials", remote.ErrAuth)
	}
	switch {
	case tokenJSON != "":
		creds.TokenJSON = []byte(tokenJSON)
	case tokenFile != "":
		b, err := os.ReadFile(tokenFile)
		if err != nil {
			return Credentials{}, fmt.Errorf("%w: read token file: %v", remote.ErrAuth, err)
		}
		creds.TokenJSON = b
	default:
		return Credentials{}, fmt.Errorf("%w: missing OAuth token", remote.ErrAuth)
	}
	return creds, nil
}

type Store struct {
	svc *gdrive.Service
}

var _ remote.Store = (*Store)(nil)

func NewStore(ctx context.Context, creds Credentials) (*Store, error) {
	cfg, err := google.ConfigFromJSON(creds.ClientJSON, gdrive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("%w: oauth config: %v", remote.ErrAuth, err)
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(creds.TokenJSON, tok); err != nil {
		return nil, fmt.Errorf("%w: decode token: %v", remote.ErrAuth, err)
	}
	if tok.RefreshToken == "" && !tok.Valid() {
		return nil, fmt.Errorf("%w: token expired and no refresh token present", remote.ErrAuth)
	}

	svc, err := gdrive.NewService(ctx, goption.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("%w: create drive service: %v", remote.ErrAuth, err)
	}
	return &Store{svc: svc}, nil
}

func (s *Store) EnsureFolder(ctx context.Context, name, parentID string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escape(name), folderMimeType)
	if parentID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escape(parentID))
	}
	list, err := s.svc.Files.List().Q(q).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", classify(err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	meta := &gdrive.File{Name: name, MimeType: folderMimeType}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	created, err := s.svc.Files.Create(meta).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", classify(err)
	}
	return created.Id, nil
}

func (s *Store) PutFile(ctx context.Context, folderID, name string, data []byte) (string, error) {
	id, found, err := s.FindFile(ctx, name, folderID)
	if err != nil {
		return "", err
	}
	if found {
		// Same identity, new bytes.
		updated, err := s.svc.Files.Update(id, &gdrive.File{}).
			Media(bytes.NewReader(data)).Fields("id").Context(ctx).Do()
		if err != nil {
			return "", classify(err)
		}
		return updated.Id, nil
	}

	meta := &gdrive.File{Name: name, Parents: []string{folderID}}
	created, err := s.svc.Files.Create(meta).
		Media(bytes.NewReader(data)).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", classify(err)
	}
	return created.Id, nil
}

func (s *Store) FindFile(ctx context.Context, name, parentID string) (string, bool, error) {
	q := fmt.Sprintf("name = '%s' and trashed = false", escape(name))
	if parentID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escape(parentID))
	}
	list, err := s.svc.Files.List().Q(q).Fields("files(id)").Context(ctx).Do()
	if err != nil {
		return "", false, classify(err)
	}
	if len(list.Files) == 0 {
		return "", false, nil
	}
	return list.Files[0].Id, true, nil
}

func (s *Store) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading download: %v", remote.ErrSync, err)
	}
	return data, nil
}

// escape quotes single quotes and backslashes for Drive query strings.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == 401 || gerr.Code == 403) {
		return fmt.Errorf("%w: %v", remote.ErrAuth, err)
	}
	return fmt.Errorf("%w: %v", remote.ErrSync, err)
}
