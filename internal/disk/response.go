package disk

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Response is a completed API exchange: status, headers and the fully
// read body. It is the only state callers inspect.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	logger *slog.Logger
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("disk: decoding HTTP %d body: %w", r.StatusCode, err)
	}

	return nil
}

// Resource decodes the body as resource metadata, including any embedded
// child listing.
func (r *Response) Resource() (*Resource, error) {
	var raw resourceResponse
	if err := r.JSON(&raw); err != nil {
		return nil, err
	}

	res := raw.toResource(r.log())

	return &res, nil
}

// Disk decodes the body as the account storage summary.
func (r *Response) Disk() (*Disk, error) {
	var raw diskResponse
	if err := r.JSON(&raw); err != nil {
		return nil, err
	}

	d := &Disk{
		TotalSpace:    raw.TotalSpace,
		UsedSpace:     raw.UsedSpace,
		TrashSize:     raw.TrashSize,
		MaxFileSize:   raw.MaxFileSize,
		SystemFolders: raw.SystemFolders,
	}

	if raw.User != nil {
		d.UserLogin = raw.User.Login
		d.UserName = raw.User.DisplayName
	}

	return d, nil
}

// Link decodes the body as a link object.
func (r *Response) Link() (*Link, error) {
	var raw linkResponse
	if err := r.JSON(&raw); err != nil {
		return nil, err
	}

	return &Link{Href: raw.Href, Method: raw.Method, Templated: raw.Templated}, nil
}

// Err classifies a non-2xx response into an *APIError wrapping one of the
// sentinel errors. It returns nil for 2xx.
func (r *Response) Err() error {
	sentinel := classifyStatus(r.StatusCode)
	if sentinel == nil {
		return nil
	}

	apiErr := &APIError{StatusCode: r.StatusCode, Err: sentinel}

	var body errorResponse
	if json.Unmarshal(r.Body, &body) == nil {
		apiErr.Code = body.Error
		apiErr.Description = body.Description
		apiErr.Message = body.Message
	}

	if apiErr.Message == "" && apiErr.Description == "" {
		apiErr.Message = snippet(r.Body)
	}

	return apiErr
}

func (r *Response) log() *slog.Logger {
	if r.logger == nil {
		return slog.Default()
	}

	return r.logger
}
