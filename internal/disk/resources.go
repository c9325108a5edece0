package disk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// API paths relative to the base URL.
const (
	pathDisk      = "/"
	pathResources = "/resources"
	pathMove      = "/resources/move"
	pathCopy      = "/resources/copy"
	pathUpload    = "/resources/upload"
	pathDownload  = "/resources/download"
	pathPublish   = "/resources/publish"
	pathUnpublish = "/resources/unpublish"
)

// ListOptions controls paging and ordering of a folder listing.
// Zero values leave the provider defaults in place.
type ListOptions struct {
	Limit  int
	Offset int
	Sort   string // e.g. "name", "-modified"
}

// DiskInfo fetches the account storage summary (GET /).
func (c *Client) DiskInfo(ctx context.Context) (*Response, error) {
	return c.Do(ctx, http.MethodGet, pathDisk, nil)
}

// CreateFolder creates a folder at path. 201 on success, 409 when the
// path already exists or its parent does not.
func (c *Client) CreateFolder(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodPut, pathResources, pathQuery(path))
}

// Delete removes a file or folder. permanently=false moves it to trash.
// 204 on success, 202 when the provider deletes a large folder
// asynchronously, 404 when nothing is there.
func (c *Client) Delete(ctx context.Context, path string, permanently bool) (*Response, error) {
	q := pathQuery(path)
	q.Set("permanently", strconv.FormatBool(permanently))

	return c.Do(ctx, http.MethodDelete, pathResources, q)
}

// Metadata fetches the metadata of a single resource.
func (c *Client) Metadata(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, pathResources, pathQuery(path))
}

// List fetches a folder's metadata together with one page of children
// under _embedded.items.
func (c *Client) List(ctx context.Context, path string, opts ListOptions) (*Response, error) {
	q := pathQuery(path)

	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}

	return c.Do(ctx, http.MethodGet, pathResources, q)
}

// Move relocates or renames a resource. 201 on success, 202 for an
// asynchronous folder move, 404 for a missing source, 409 when the
// destination exists and overwrite is false.
func (c *Client) Move(ctx context.Context, from, to string, overwrite bool) (*Response, error) {
	return c.Do(ctx, http.MethodPost, pathMove, fromToQuery(from, to, overwrite))
}

// Copy duplicates a resource. Status semantics match Move.
func (c *Client) Copy(ctx context.Context, from, to string, overwrite bool) (*Response, error) {
	return c.Do(ctx, http.MethodPost, pathCopy, fromToQuery(from, to, overwrite))
}

// Publish makes a resource publicly accessible. The resource's metadata
// then carries public_key and public_url.
func (c *Client) Publish(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodPut, pathPublish, pathQuery(path))
}

// Unpublish revokes public access.
func (c *Client) Unpublish(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodPut, pathUnpublish, pathQuery(path))
}

func pathQuery(path string) url.Values {
	return url.Values{"path": {NormalizePath(path)}}
}

func fromToQuery(from, to string, overwrite bool) url.Values {
	return url.Values{
		"from":      {NormalizePath(from)},
		"path":      {NormalizePath(to)},
		"overwrite": {strconv.FormatBool(overwrite)},
	}
}
