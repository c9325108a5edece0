package disktest

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not security
	"crypto/sha256"
	"encoding/hex"
	"mime"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"
)

const (
	typeDir  = "dir"
	typeFile = "file"
	root     = "disk:/"
)

// node is one stored resource. Folders have nil data.
type node struct {
	typ       string
	path      string
	created   time.Time
	modified  time.Time
	data      []byte
	mimeType  string
	publicKey string
}

func (n *node) name() string {
	if n.path == root {
		return "disk"
	}

	return path.Base(strings.TrimPrefix(n.path, "disk:"))
}

func (n *node) clone() *node {
	c := *n
	c.data = append([]byte(nil), n.data...)

	return &c
}

// normalize mirrors the client's path rule and strips trailing slashes.
func normalize(p string) string {
	if !strings.HasPrefix(p, "disk:") && !strings.HasPrefix(p, "app:") && !strings.HasPrefix(p, "trash:") {
		p = "disk:/" + strings.TrimLeft(p, "/")
	}

	if p != root {
		p = strings.TrimRight(p, "/")
	}

	if p == "disk:" {
		return root
	}

	return p
}

func parentOf(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}

	parent := p[:i]
	if strings.HasSuffix(parent, ":") {
		return parent + "/"
	}

	return parent
}

// isWithin reports whether p equals dir or lies beneath it.
func isWithin(p, dir string) bool {
	if p == dir {
		return true
	}

	if dir == root {
		return strings.HasPrefix(p, root)
	}

	return strings.HasPrefix(p, dir+"/")
}

func detectMIME(name string, data []byte) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		if base, _, err := mime.ParseMediaType(t); err == nil {
			return base
		}
	}

	base, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return "application/octet-stream"
	}

	return base
}

func mediaType(mimeType string) string {
	if i := strings.Index(mimeType, "/"); i > 0 {
		return mimeType[:i]
	}

	return "unknown"
}

// --- JSON documents ---

type resourceDoc struct {
	Type      string       `json:"type"`
	Name      string       `json:"name"`
	Path      string       `json:"path"`
	Created   string       `json:"created"`
	Modified  string       `json:"modified"`
	Size      int64        `json:"size,omitempty"`
	MimeType  string       `json:"mime_type,omitempty"`
	MediaType string       `json:"media_type,omitempty"`
	MD5       string       `json:"md5,omitempty"`
	SHA256    string       `json:"sha256,omitempty"`
	PublicKey string       `json:"public_key,omitempty"`
	PublicURL string       `json:"public_url,omitempty"`
	Embedded  *embeddedDoc `json:"_embedded,omitempty"` //nolint:tagliatelle // provider key
}

type embeddedDoc struct {
	Items  []resourceDoc `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Path   string        `json:"path"`
	Sort   string        `json:"sort"`
}

type linkDoc struct {
	Href        string `json:"href"`
	Method      string `json:"method"`
	Templated   bool   `json:"templated"`
	OperationID string `json:"operation_id,omitempty"`
}

type errorDoc struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

func (s *Server) toDoc(n *node) resourceDoc {
	doc := resourceDoc{
		Type:     n.typ,
		Name:     n.name(),
		Path:     n.path,
		Created:  n.created.Format(time.RFC3339),
		Modified: n.modified.Format(time.RFC3339),
	}

	if n.typ == typeFile {
		md5sum := md5.Sum(n.data) //nolint:gosec // content fingerprint
		shaSum := sha256.Sum256(n.data)

		doc.Size = int64(len(n.data))
		doc.MimeType = n.mimeType
		doc.MediaType = mediaType(n.mimeType)
		doc.MD5 = hex.EncodeToString(md5sum[:])
		doc.SHA256 = hex.EncodeToString(shaSum[:])
	}

	if n.publicKey != "" {
		doc.PublicKey = n.publicKey
		doc.PublicURL = s.srv.URL + "/d/" + n.publicKey
	}

	return doc
}

// childrenLocked returns the direct children of dir sorted by name.
func (s *Server) childrenLocked(dir string) []*node {
	var out []*node

	for p, n := range s.nodes {
		if p != dir && parentOf(p) == dir {
			out = append(out, n)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })

	return out
}

// removeLocked deletes p and everything beneath it, returning the bytes freed.
func (s *Server) removeLocked(p string) int64 {
	var freed int64

	for k, n := range s.nodes {
		if k != root && isWithin(k, p) {
			freed += int64(len(n.data))
			delete(s.nodes, k)
		}
	}

	return freed
}

// copyLocked duplicates the subtree at from to to, rewriting paths.
func (s *Server) copyLocked(from, to string, now time.Time) {
	var batch []*node

	for k, n := range s.nodes {
		if isWithin(k, from) {
			c := n.clone()
			c.path = to + strings.TrimPrefix(k, from)
			c.publicKey = ""
			c.modified = now
			batch = append(batch, c)
		}
	}

	for _, c := range batch {
		s.nodes[c.path] = c
	}
}

func (s *Server) usedLocked() int64 {
	var used int64
	for _, n := range s.nodes {
		used += int64(len(n.data))
	}

	return used
}
