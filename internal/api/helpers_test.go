package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/conflagent-dev/conflagent/internal/config"
	"github.com/conflagent-dev/conflagent/internal/server"
	"github.com/conflagent-dev/conflagent/pkg/confluence"
)

const testSecret = "sekrit"

// fakeRemote is a minimal in-memory Confluence standing behind the
// handlers under test. The client wire protocol itself is covered by
// the core package tests; this fake only needs to be coherent enough
// for end-to-end handler runs.
type fakeRemote struct {
	pages  map[string]*remotePage
	order  []string
	nextID int

	// failStatus, when non-zero, short-circuits every request.
	failStatus int
	failBody   string

	// onVersionRead runs after a GET that expanded the version field,
	// letting tests race a competing write against a version read.
	onVersionRead func()
}

type remotePage struct {
	id       string
	title    string
	parentID string
	body     string
	version  int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{pages: make(map[string]*remotePage)}
}

func (f *fakeRemote) addPage(title, parentID string) string {
	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.pages[id] = &remotePage{id: id, title: title, parentID: parentID, version: 1}
	f.order = append(f.order, id)
	return id
}

func (f *fakeRemote) ancestorsOf(page *remotePage) []confluence.Ancestor {
	var chain []confluence.Ancestor
	for current := page; current.parentID != ""; {
		parent, ok := f.pages[current.parentID]
		if !ok {
			break
		}
		chain = append([]confluence.Ancestor{{ID: parent.id, Title: parent.title}}, chain...)
		current = parent
	}
	return chain
}

func (f *fakeRemote) pageJSON(page *remotePage, expand string) map[string]interface{} {
	doc := map[string]interface{}{
		"id":    page.id,
		"type":  "page",
		"title": page.title,
	}
	if strings.Contains(expand, "ancestors") {
		doc["ancestors"] = f.ancestorsOf(page)
	}
	if strings.Contains(expand, "version") {
		doc["version"] = map[string]int{"number": page.version}
	}
	if strings.Contains(expand, "body.storage") {
		doc["body"] = map[string]interface{}{
			"storage": map[string]string{
				"value":          page.body,
				"representation": "storage",
			},
		}
	}
	return doc
}

type remoteWritePayload struct {
	Title     string                `json:"title"`
	Ancestors []confluence.Ancestor `json:"ancestors"`
	Version   *confluence.Version   `json:"version"`
	Body      *confluence.Body      `json:"body"`
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.failStatus != 0 {
		w.WriteHeader(f.failStatus)
		fmt.Fprint(w, f.failBody)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/rest/api")
	expand := r.URL.Query().Get("expand")

	switch {
	case r.Method == http.MethodGet && path == "/content":
		title := r.URL.Query().Get("title")
		results := []map[string]interface{}{}
		for _, id := range f.order {
			if page := f.pages[id]; page != nil && page.title == title {
				results = append(results, f.pageJSON(page, expand))
			}
		}
		f.writeJSON(w, map[string]interface{}{"results": results, "size": len(results)})

	case r.Method == http.MethodGet && strings.HasSuffix(path, "/child/page"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/content/"), "/child/page")
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		results := []map[string]interface{}{}
		var children []*remotePage
		for _, orderedID := range f.order {
			if page := f.pages[orderedID]; page != nil && page.parentID == id {
				children = append(children, page)
			}
		}
		for i := start; i < len(children); i++ {
			results = append(results, f.pageJSON(children[i], ""))
		}
		f.writeJSON(w, map[string]interface{}{"results": results, "size": len(results)})

	case r.Method == http.MethodGet:
		id := strings.TrimPrefix(path, "/content/")
		page, ok := f.pages[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.writeJSON(w, f.pageJSON(page, expand))
		if f.onVersionRead != nil && strings.Contains(expand, "version") {
			f.onVersionRead()
		}

	case r.Method == http.MethodPost && path == "/content":
		var payload remoteWritePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Ancestors) != 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		id := f.addPage(payload.Title, payload.Ancestors[0].ID)
		if payload.Body != nil {
			f.pages[id].body = payload.Body.Storage.Value
		}
		f.writeJSON(w, f.pageJSON(f.pages[id], "version"))

	case r.Method == http.MethodPut:
		id := strings.TrimPrefix(path, "/content/")
		page, ok := f.pages[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var payload remoteWritePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if payload.Version == nil || payload.Version.Number != page.version+1 {
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, "version conflict")
			return
		}
		page.title = payload.Title
		page.version = payload.Version.Number
		if payload.Body != nil {
			page.body = payload.Body.Storage.Value
		}
		if len(payload.Ancestors) == 1 {
			page.parentID = payload.Ancestors[0].ID
		}
		f.writeJSON(w, f.pageJSON(page, "version"))

	case r.Method == http.MethodDelete:
		id := strings.TrimPrefix(path, "/content/")
		if _, ok := f.pages[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.pages, id)
		for i, orderedID := range f.order {
			if orderedID == id {
				f.order = append(f.order[:i], f.order[i+1:]...)
				break
			}
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeRemote) writeJSON(w http.ResponseWriter, doc interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

// newTestHandler wires the endpoint router to a fresh fake remote with
// a single configured endpoint named "demo".
func newTestHandler(t *testing.T) (http.Handler, *fakeRemote) {
	t.Helper()

	fake := newFakeRemote()
	rootID := fake.addPage("Root", "")

	remote := httptest.NewServer(fake)
	t.Cleanup(remote.Close)

	cfg := &config.Config{
		ListenAddr: config.DefaultListenAddr,
		Endpoints: []*config.Endpoint{{
			Name:         "demo",
			BaseURL:      remote.URL,
			SpaceKey:     "SPACE",
			RootPageID:   rootID,
			Email:        "bot@example.com",
			APIToken:     "token",
			SharedSecret: testSecret,
		}},
	}

	srv := server.Server{Config: cfg, Logger: hclog.NewNullLogger()}
	return EndpointHandler(srv), fake
}

// doRequest performs an authenticated request against the handler and
// decodes the response envelope.
func doRequest(t *testing.T, handler http.Handler, method, path, body string) (int, Envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testSecret)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decoding envelope from %s %s: %v", method, path, err)
	}
	return rec.Code, env
}
