package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// httpError is a non-200 download response.
type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

func isClientError(err error) bool {
	var he *httpError
	return errors.As(err, &he) && he.StatusCode >= 400 && he.StatusCode < 500
}

// download retrieves ref into the download directory and returns the path.
func (r *Resolver) download(ctx context.Context, ref string) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	dest := filepath.Join(r.dir, uuid.NewString()+r.extension(ctx, ref))
	dest, err := filepath.Abs(dest)
	if err != nil {
		return "", err
	}

	attempts := r.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(r.retryDelay * time.Duration(attempt)):
			}
		}

		start := time.Now()
		err := r.get(ctx, ref, dest)
		if err == nil {
			r.logger.Info("downloaded reference", "ref", ref, "path", dest, "duration", time.Since(start))
			return dest, nil
		}
		lastErr = err
		if isClientError(err) {
			return "", err
		}
		r.logger.Debug("download attempt failed", "ref", ref, "attempt", attempt+1, "err", err)
	}
	return "", fmt.Errorf("download failed after %d attempts: %w", attempts, lastErr)
}

// get streams the body of ref into dest through a temp file.
func (r *Resolver) get(ctx context.Context, ref, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &httpError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	tmp := dest + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	_, err = io.Copy(out, resp.Body)
	if closeErr := out.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write file: %w", err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// extension picks the file suffix for a download. A media content type
// reported by HEAD wins; otherwise the URL path's extension is used.
func (r *Resolver) extension(ctx context.Context, ref string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, ref, nil)
	if err == nil {
		if resp, err := r.client.Do(req); err == nil {
			resp.Body.Close()
			if ext := extensionForType(resp.Header.Get("Content-Type")); ext != "" {
				return ext
			}
		}
	}
	return extensionForURL(ref)
}

func extensionForType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	major, sub, ok := strings.Cut(mediaType, "/")
	if !ok || sub == "" {
		return ""
	}
	switch major {
	case "video", "audio", "image":
		return "." + sub
	}
	return ""
}

func extensionForURL(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}
