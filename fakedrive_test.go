package googledrive_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	googledrive "github.com/skitschy/googledrive-go"
)

// fakeDrive is an in-memory stand-in for the Drive v3 REST surface: list
// with q/pageToken, media download, multipart upload, metadata-only create
// and delete. It serves whole records regardless of the requested field
// selection, which the real service is also allowed to do.
type fakeDrive struct {
	mu        sync.Mutex
	nodes     map[string]*fakeNode
	order     []string
	nextID    int
	pageSize  int
	failNext  int
	listCalls int
	lastQuery string
	lastField string
}

type fakeNode struct {
	id      string
	name    string
	parent  string
	mime    string
	content []byte
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{nodes: map[string]*fakeNode{}}
}

// addNode seeds a node with a fixed identifier.
func (f *fakeDrive) addNode(id, name, parent, mimeType string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes[id] = &fakeNode{id: id, name: name, parent: parent, mime: mimeType, content: content}
	f.order = append(f.order, id)
}

func (f *fakeDrive) addFolder(id, name, parent string) {
	f.addNode(id, name, parent, "application/vnd.google-apps.folder", nil)
}

func (f *fakeDrive) allocate(name, parent, mimeType string, content []byte) *fakeNode {
	f.nextID++
	id := fmt.Sprintf("id-%d", f.nextID)
	n := &fakeNode{id: id, name: name, parent: parent, mime: mimeType, content: content}
	f.nodes[id] = n
	f.order = append(f.order, id)
	return n
}

func (f *fakeDrive) node(id string) (*fakeNode, bool) {
	n, ok := f.nodes[id]
	return n, ok
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext > 0 {
		f.failNext--
		writeAPIError(w, http.StatusInternalServerError, "backendError")
		return
	}

	path := r.URL.Path
	switch {
	case path == "/files" && r.Method == http.MethodGet:
		f.handleList(w, r)
	case path == "/files" && r.Method == http.MethodPost:
		f.handleCreateMetadata(w, r)
	case path == "/upload/drive/v3/files" && r.Method == http.MethodPost:
		f.handleCreateMedia(w, r)
	case strings.HasPrefix(path, "/upload/drive/v3/files/") && r.Method == http.MethodPatch:
		f.handleUpdateMedia(w, r, strings.TrimPrefix(path, "/upload/drive/v3/files/"))
	case strings.HasPrefix(path, "/files/") && r.Method == http.MethodGet:
		f.handleGet(w, r, strings.TrimPrefix(path, "/files/"))
	case strings.HasPrefix(path, "/files/") && r.Method == http.MethodDelete:
		f.handleDelete(w, strings.TrimPrefix(path, "/files/"))
	default:
		writeAPIError(w, http.StatusBadRequest, "unexpected request "+r.Method+" "+path)
	}
}

var (
	parentClauseRe = regexp.MustCompile(`'([^']*)' in parents`)
	nameClauseRe   = regexp.MustCompile(`name='(.*)'`)
)

func (f *fakeDrive) handleList(w http.ResponseWriter, r *http.Request) {
	f.listCalls++
	q := r.URL.Query().Get("q")
	f.lastQuery = q
	f.lastField = r.URL.Query().Get("fields")

	var parent, name string
	var byName bool
	if m := parentClauseRe.FindStringSubmatch(q); m != nil {
		parent = m[1]
	}
	if m := nameClauseRe.FindStringSubmatch(q); m != nil {
		byName = true
		name = strings.ReplaceAll(m[1], `\'`, "'")
		name = strings.ReplaceAll(name, `\\`, `\`)
	}

	var matches []*fakeNode
	for _, id := range f.order {
		n := f.nodes[id]
		if parent != "" && n.parent != parent {
			continue
		}
		if byName && n.name != name {
			continue
		}
		matches = append(matches, n)
	}

	start := 0
	if tok := r.URL.Query().Get("pageToken"); tok != "" {
		start, _ = strconv.Atoi(tok)
	}
	end := len(matches)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}

	files := []map[string]any{}
	for _, n := range matches[start:end] {
		files = append(files, fileJSON(n))
	}
	resp := map[string]any{"files": files}
	if end < len(matches) {
		resp["nextPageToken"] = strconv.Itoa(end)
	}
	writeJSON(w, resp)
}

func (f *fakeDrive) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	n, ok := f.node(id)
	if !ok {
		writeAPIError(w, http.StatusNotFound, "notFound")
		return
	}
	if r.URL.Query().Get("alt") == "media" {
		w.Header().Set("Content-Type", n.mime)
		w.Write(n.content)
		return
	}
	writeJSON(w, fileJSON(n))
}

func (f *fakeDrive) handleCreateMetadata(w http.ResponseWriter, r *http.Request) {
	var meta struct {
		Name     string   `json:"name"`
		MimeType string   `json:"mimeType"`
		Parents  []string `json:"parents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid metadata")
		return
	}
	parent := ""
	if len(meta.Parents) > 0 {
		parent = meta.Parents[0]
	}
	n := f.allocate(meta.Name, parent, meta.MimeType, nil)
	writeJSON(w, fileJSON(n))
}

func (f *fakeDrive) handleCreateMedia(w http.ResponseWriter, r *http.Request) {
	meta, content, mimeType, err := parseUpload(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	parent := ""
	if len(meta.Parents) > 0 {
		parent = meta.Parents[0]
	}
	n := f.allocate(meta.Name, parent, mimeType, content)
	writeJSON(w, fileJSON(n))
}

func (f *fakeDrive) handleUpdateMedia(w http.ResponseWriter, r *http.Request, id string) {
	n, ok := f.node(id)
	if !ok {
		writeAPIError(w, http.StatusNotFound, "notFound")
		return
	}
	_, content, mimeType, err := parseUpload(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	n.content = content
	if mimeType != "" {
		n.mime = mimeType
	}
	writeJSON(w, fileJSON(n))
}

func (f *fakeDrive) handleDelete(w http.ResponseWriter, id string) {
	if _, ok := f.node(id); !ok {
		writeAPIError(w, http.StatusNotFound, "notFound")
		return
	}
	delete(f.nodes, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type uploadMeta struct {
	Name     string   `json:"name"`
	MimeType string   `json:"mimeType"`
	Parents  []string `json:"parents"`
}

// parseUpload reads either a multipart/related upload (metadata part plus
// media part) or a raw media body.
func parseUpload(r *http.Request) (meta uploadMeta, content []byte, mimeType string, err error) {
	ct := r.Header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return meta, nil, "", fmt.Errorf("invalid content type: %v", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		content, err = io.ReadAll(r.Body)
		return meta, content, mediaType, err
	}

	mr := multipart.NewReader(r.Body, params["boundary"])
	metaPart, err := mr.NextPart()
	if err != nil {
		return meta, nil, "", fmt.Errorf("missing metadata part: %v", err)
	}
	metaBytes, err := io.ReadAll(metaPart)
	if err != nil {
		return meta, nil, "", err
	}
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return meta, nil, "", fmt.Errorf("invalid metadata: %v", err)
	}
	mediaPart, err := mr.NextPart()
	if err != nil {
		return meta, nil, "", fmt.Errorf("missing media part: %v", err)
	}
	content, err = io.ReadAll(mediaPart)
	if err != nil {
		return meta, nil, "", err
	}
	return meta, content, mediaPart.Header.Get("Content-Type"), nil
}

func fileJSON(n *fakeNode) map[string]any {
	return map[string]any{
		"id":       n.id,
		"name":     n.name,
		"mimeType": n.mime,
		// int64 fields travel as JSON strings on the Drive wire format.
		"size":         strconv.Itoa(len(n.content)),
		"modifiedTime": "2026-08-24T12:00:00Z",
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": message},
	})
}

// newTestDrive wires a real client to the fake server through the SDK's
// endpoint override.
func newTestDrive(t *testing.T, f *fakeDrive, opts ...googledrive.Option) *googledrive.Drive {
	t.Helper()
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)

	opts = append([]googledrive.Option{
		googledrive.WithCredentials(option.WithEndpoint(ts.URL)),
		googledrive.WithHTTPClient(ts.Client()),
		googledrive.WithRetryPolicy(googledrive.RetryPolicy{MaxRetries: 3, Interval: time.Millisecond}),
	}, opts...)
	d, err := googledrive.New(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}
