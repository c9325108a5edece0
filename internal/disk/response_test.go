package disk

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_Resource_File(t *testing.T) {
	resp := &Response{StatusCode: http.StatusOK, Body: []byte(`{
		"type": "file",
		"name": "report.txt",
		"path": "disk:/docs/report.txt",
		"created": "2024-03-01T10:00:00+00:00",
		"modified": "2024-03-02T11:30:00+00:00",
		"size": 42,
		"mime_type": "text/plain",
		"media_type": "document",
		"md5": "abc",
		"sha256": "def",
		"public_url": "https://yadi.sk/d/xyz"
	}`)}

	res, err := resp.Resource()
	require.NoError(t, err)

	assert.True(t, res.IsFile())
	assert.False(t, res.IsDir())
	assert.False(t, res.Listed())
	assert.Equal(t, "report.txt", res.Name)
	assert.Equal(t, "disk:/docs/report.txt", res.Path)
	assert.Equal(t, int64(42), res.Size)
	assert.Equal(t, "text/plain", res.MimeType)
	assert.Equal(t, "https://yadi.sk/d/xyz", res.PublicURL)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), res.Created.UTC())
	assert.Equal(t, time.Date(2024, 3, 2, 11, 30, 0, 0, time.UTC), res.Modified.UTC())
	assert.Equal(t, -1, res.Total)
}

func TestResponse_Resource_Listing(t *testing.T) {
	resp := &Response{StatusCode: http.StatusOK, Body: []byte(`{
		"type": "dir",
		"name": "docs",
		"path": "disk:/docs",
		"_embedded": {
			"items": [
				{"type": "dir", "name": "a", "path": "disk:/docs/a"},
				{"type": "file", "name": "b.txt", "path": "disk:/docs/b.txt", "size": 3}
			],
			"total": 2,
			"limit": 20,
			"offset": 0,
			"path": "disk:/docs"
		}
	}`)}

	res, err := resp.Resource()
	require.NoError(t, err)

	assert.True(t, res.IsDir())
	assert.True(t, res.Listed())
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 20, res.Limit)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "a", res.Items[0].Name)
	assert.True(t, res.Items[0].IsDir())
	assert.Equal(t, int64(3), res.Items[1].Size)
	assert.True(t, res.Items[0].Created.IsZero())
}

func TestResponse_Resource_BadTimestamp(t *testing.T) {
	resp := &Response{StatusCode: http.StatusOK, Body: []byte(
		`{"type":"file","path":"disk:/x","created":"yesterday","modified":"1601-01-01T00:00:00Z"}`,
	)}

	res, err := resp.Resource()
	require.NoError(t, err)
	assert.True(t, res.Created.IsZero())
	assert.True(t, res.Modified.IsZero())
}

func TestResponse_Resource_InvalidJSON(t *testing.T) {
	_, err := (&Response{StatusCode: http.StatusOK, Body: []byte("not json")}).Resource()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding HTTP 200 body")
}

func TestResponse_Disk(t *testing.T) {
	resp := &Response{StatusCode: http.StatusOK, Body: []byte(`{
		"total_space": 1000,
		"used_space": 250,
		"trash_size": 10,
		"max_file_size": 500,
		"system_folders": {"downloads": "disk:/Downloads/"},
		"user": {"login": "alice", "display_name": "Alice"}
	}`)}

	d, err := resp.Disk()
	require.NoError(t, err)

	assert.Equal(t, int64(1000), d.TotalSpace)
	assert.Equal(t, int64(250), d.UsedSpace)
	assert.Equal(t, int64(750), d.FreeSpace())
	assert.Equal(t, "disk:/Downloads/", d.SystemFolders["downloads"])
	assert.Equal(t, "alice", d.UserLogin)
	assert.Equal(t, "Alice", d.UserName)
}

func TestDisk_FreeSpaceFloor(t *testing.T) {
	d := &Disk{TotalSpace: 10, UsedSpace: 20}
	assert.Equal(t, int64(0), d.FreeSpace())
}

func TestResponse_Link(t *testing.T) {
	resp := &Response{StatusCode: http.StatusOK, Body: []byte(
		`{"href":"https://uploader.example/put/abc","method":"PUT","templated":false}`,
	)}

	link, err := resp.Link()
	require.NoError(t, err)
	assert.Equal(t, "https://uploader.example/put/abc", link.Href)
	assert.Equal(t, http.MethodPut, link.Method)
	assert.False(t, link.Templated)
}

func TestResponse_JSON(t *testing.T) {
	var v map[string]int

	resp := &Response{StatusCode: http.StatusOK, Body: []byte(`{"n": 3}`)}
	require.NoError(t, resp.JSON(&v))
	assert.Equal(t, 3, v["n"])
}
