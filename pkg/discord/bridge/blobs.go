package bridge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/small-frappuccino/mirrorcore/pkg/console"
	"github.com/small-frappuccino/mirrorcore/pkg/log"
)

// maxBlobSize caps uploaded payloads at 64 MiB.
const maxBlobSize = 64 << 20

// FileBlobHandler downloads uploaded attachments into a local directory and
// returns the stored path as the setting value.
type FileBlobHandler struct {
	dir    string
	client *http.Client
}

func NewFileBlobHandler(dir string) *FileBlobHandler {
	return &FileBlobHandler{
		dir:    dir,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// HandleBlob fetches the attachment from msg and writes it under the blob
// directory, named after the setting key. The write goes through a temp file
// so a failed download never leaves a truncated blob behind.
func (h *FileBlobHandler) HandleBlob(ctx context.Context, key string, msg console.Incoming) (string, error) {
	if msg.Attachment == "" {
		return "", fmt.Errorf("message has no attachment")
	}
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return "", fmt.Errorf("create blob directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, msg.Attachment, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download attachment: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download attachment: status %s", resp.Status)
	}

	dest := filepath.Join(h.dir, blobName(key, msg.Filename))
	tmp, err := os.CreateTemp(h.dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, maxBlobSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	if n > maxBlobSize {
		return "", fmt.Errorf("attachment exceeds %d bytes", maxBlobSize)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("store attachment: %w", err)
	}

	log.Application().Info("Stored uploaded blob", "key", key, "path", dest, "bytes", n)
	return dest, nil
}

// blobName derives a stable filename from the setting key, keeping the
// upload's extension so downstream tools can sniff the format.
func blobName(key, filename string) string {
	name := strings.ToLower(key)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	if ext := filepath.Ext(filename); ext != "" {
		name += ext
	}
	return name
}
