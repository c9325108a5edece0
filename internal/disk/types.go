package disk

import (
	"log/slog"
	"time"
)

// Resource types as reported in the "type" field.
const (
	TypeDir  = "dir"
	TypeFile = "file"
)

// Valid year range for timestamps; outside it the provider value is
// treated as garbage.
const (
	minValidYear = 1970
	maxValidYear = 2100
)

// Resource is a file or folder as described by the provider.
// Fields are normalized from the API response and never cached.
type Resource struct {
	Type       string // TypeDir or TypeFile
	Name       string
	Path       string // provider form, e.g. "disk:/folder/file.txt"
	Created    time.Time
	Modified   time.Time
	Size       int64
	MimeType   string
	MediaType  string
	MD5        string
	SHA256     string
	PublicKey  string
	PublicURL  string
	Items      []Resource // populated for folders when listed
	Total      int        // total children, -1 when not reported
	Limit      int
	Offset     int
	hasListing bool
}

// IsDir reports whether the resource is a folder.
func (r *Resource) IsDir() bool { return r.Type == TypeDir }

// IsFile reports whether the resource is a file.
func (r *Resource) IsFile() bool { return r.Type == TypeFile }

// Listed reports whether the response carried an embedded child listing.
func (r *Resource) Listed() bool { return r.hasListing }

// Disk is the account-level storage summary returned by DiskInfo.
type Disk struct {
	TotalSpace    int64
	UsedSpace     int64
	TrashSize     int64
	MaxFileSize   int64
	SystemFolders map[string]string
	UserLogin     string
	UserName      string
}

// FreeSpace returns TotalSpace - UsedSpace, floored at zero.
func (d *Disk) FreeSpace() int64 {
	return max(d.TotalSpace-d.UsedSpace, 0)
}

// Link is the provider's pointer to another resource: a transfer URL for
// upload/download requests, or the location of a created resource.
type Link struct {
	Href      string
	Method    string
	Templated bool
}

// --- raw API response types ---

type resourceResponse struct {
	Type      string             `json:"type"`
	Name      string             `json:"name"`
	Path      string             `json:"path"`
	Created   string             `json:"created"`
	Modified  string             `json:"modified"`
	Size      int64              `json:"size"`
	MimeType  string             `json:"mime_type"`
	MediaType string             `json:"media_type"`
	MD5       string             `json:"md5"`
	SHA256    string             `json:"sha256"`
	PublicKey string             `json:"public_key"`
	PublicURL string             `json:"public_url"`
	Embedded  *resourceListEmbed `json:"_embedded"` //nolint:tagliatelle // provider key
}

type resourceListEmbed struct {
	Items  []resourceResponse `json:"items"`
	Total  *int               `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
	Path   string             `json:"path"`
}

type diskResponse struct {
	TotalSpace    int64             `json:"total_space"`
	UsedSpace     int64             `json:"used_space"`
	TrashSize     int64             `json:"trash_size"`
	MaxFileSize   int64             `json:"max_file_size"`
	SystemFolders map[string]string `json:"system_folders"`
	User          *struct {
		Login       string `json:"login"`
		DisplayName string `json:"display_name"`
	} `json:"user"`
}

type linkResponse struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

// toResource normalizes a raw resource, recursing into embedded items.
func (r *resourceResponse) toResource(logger *slog.Logger) Resource {
	res := Resource{
		Type:      r.Type,
		Name:      r.Name,
		Path:      r.Path,
		Size:      r.Size,
		MimeType:  r.MimeType,
		MediaType: r.MediaType,
		MD5:       r.MD5,
		SHA256:    r.SHA256,
		PublicKey: r.PublicKey,
		PublicURL: r.PublicURL,
		Total:     -1,
	}

	res.Created = parseTimestamp(r.Created, "created", r.Path, logger)
	res.Modified = parseTimestamp(r.Modified, "modified", r.Path, logger)

	if r.Embedded != nil {
		res.hasListing = true
		res.Limit = r.Embedded.Limit
		res.Offset = r.Embedded.Offset

		if r.Embedded.Total != nil {
			res.Total = *r.Embedded.Total
		}

		res.Items = make([]Resource, 0, len(r.Embedded.Items))
		for i := range r.Embedded.Items {
			res.Items = append(res.Items, r.Embedded.Items[i].toResource(logger))
		}
	}

	return res
}

// parseTimestamp parses an RFC3339 timestamp and validates the year range.
// Missing, invalid or out-of-range values yield the zero time.
func parseTimestamp(raw, field, path string, logger *slog.Logger) time.Time {
	if raw == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		logger.Warn("invalid timestamp",
			slog.String("field", field),
			slog.String("path", path),
			slog.String("raw", raw),
			slog.String("error", err.Error()),
		)

		return time.Time{}
	}

	if t.Year() < minValidYear || t.Year() > maxValidYear {
		logger.Warn("timestamp out of valid range",
			slog.String("field", field),
			slog.String("path", path),
			slog.String("raw", raw),
		)

		return time.Time{}
	}

	return t
}
