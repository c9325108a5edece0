package disk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// UploadLink requests a transient upload URL for path (GET /resources/upload).
// The raw response is returned; 409 means the path exists and overwrite is
// false.
func (c *Client) UploadLink(ctx context.Context, path string, overwrite bool) (*Response, error) {
	q := pathQuery(path)
	q.Set("overwrite", strconv.FormatBool(overwrite))

	return c.Do(ctx, http.MethodGet, pathUpload, q)
}

// DownloadLink requests a transient download URL for path
// (GET /resources/download).
func (c *Client) DownloadLink(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, pathDownload, pathQuery(path))
}

// Upload sends r to path in two steps: obtain an upload link, then PUT the
// content to it. If no link is issued a *LinkError is returned and r is
// not read. Otherwise the transfer response is returned as data: 201 when
// stored, 202 when accepted for processing. size may be -1 if unknown.
func (c *Client) Upload(ctx context.Context, path string, r io.Reader, size int64, overwrite bool) (*Response, error) {
	linkResp, err := c.UploadLink(ctx, path, overwrite)
	if err != nil {
		return nil, err
	}

	href, err := c.transferHref("upload", path, linkResp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("uploading content",
		slog.String("path", path),
		slog.Int64("size", size),
	)

	resp, err := c.doTransfer(ctx, http.MethodPut, href, r, size)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("disk: reading upload response: %w", err)
	}

	c.logger.Info("upload finished",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		logger:     c.logger,
	}, nil
}

// UploadFile uploads the local file at localPath to path.
func (c *Client) UploadFile(ctx context.Context, path, localPath string, overwrite bool) (*Response, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("disk: opening %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("disk: stat %s: %w", localPath, err)
	}

	return c.Upload(ctx, path, f, info.Size(), overwrite)
}

// Download streams the content at path into w in two steps: obtain a
// download link, then GET it. A missing link yields a *LinkError and a
// transfer status other than 200 yields a *TransferError; in both cases
// nothing is written to w. Returns the number of bytes written.
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	linkResp, err := c.DownloadLink(ctx, path)
	if err != nil {
		return 0, err
	}

	href, err := c.transferHref("download", path, linkResp)
	if err != nil {
		return 0, err
	}

	resp, err := c.doTransfer(ctx, http.MethodGet, href, nil, -1)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best-effort detail

		return 0, &TransferError{
			Op:         "download",
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       snippet(body),
		}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("disk: downloading %s: %w", path, err)
	}

	c.logger.Info("download finished",
		slog.String("path", path),
		slog.Int64("bytes", n),
	)

	return n, nil
}

// DownloadFile downloads path into localPath. Content is written to a
// sibling temp file and renamed into place only on success, so a failed
// download never leaves a partial file at localPath.
func (c *Client) DownloadFile(ctx context.Context, path, localPath string) (int64, error) {
	dir := filepath.Dir(localPath)

	tmp, err := os.CreateTemp(dir, ".yadisk-*.partial")
	if err != nil {
		return 0, fmt.Errorf("disk: creating temp file in %s: %w", dir, err)
	}

	tmpName := tmp.Name()

	n, err := c.Download(ctx, path, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("disk: closing %s: %w", tmpName, closeErr)
	}

	if err != nil {
		os.Remove(tmpName)

		return n, err
	}

	if err := os.Rename(tmpName, localPath); err != nil {
		os.Remove(tmpName)

		return n, fmt.Errorf("disk: renaming %s to %s: %w", tmpName, localPath, err)
	}

	return n, nil
}

// transferHref extracts the href from a link response, or returns a
// *LinkError when the provider declined to issue one.
func (c *Client) transferHref(op, path string, resp *Response) (string, error) {
	if resp.StatusCode == http.StatusOK {
		link, err := resp.Link()
		if err == nil && link.Href != "" {
			return link.Href, nil
		}
	}

	c.logger.Warn("transfer link not issued",
		slog.String("op", op),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	return "", &LinkError{
		Op:         op,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       snippet(resp.Body),
	}
}
