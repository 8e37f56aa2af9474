// Package hub fetches model artifacts from a model hub. Repositories
// are addressed as "owner/name" and files resolve to
// <base>/<repo>/resolve/main/<file>, the layout served by Hugging Face.
package hub

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient builds a hub client. token is sent as a Bearer credential
// when non-empty, which is required for private model repositories.
func NewClient(baseURL, token string, log *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		log:        log,
	}
}

// Ensure makes every named file of repo available under destDir,
// downloading the ones that are not already cached. A partial download
// never becomes visible: files are written to a temp path and renamed.
func (c *Client) Ensure(ctx context.Context, repo, destDir string, files []string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	for _, name := range files {
		dest := filepath.Join(destDir, name)
		if _, err := os.Stat(dest); err == nil {
			c.log.Debug("artifact cached", "repo", repo, "file", name)
			continue
		}
		if err := c.fetch(ctx, repo, name, dest); err != nil {
			return fmt.Errorf("fetch %s from %s: %w", name, repo, err)
		}
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, repo, name, dest string) error {
	fileURL := fmt.Sprintf("%s/%s/resolve/main/%s", c.baseURL, repo, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.Info("downloading model artifact", "repo", repo, "file", name)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hub responded %d for %s", resp.StatusCode, fileURL)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+name+".partial-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return err
	}

	c.log.Info("artifact downloaded", "file", name, "size_bytes", written)
	return nil
}
