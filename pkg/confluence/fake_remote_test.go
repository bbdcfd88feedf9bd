package confluence

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

// fakeWiki is an in-memory stand-in for the Confluence Content REST
// API, implementing just the wire surface the client uses.
type fakeWiki struct {
	t *testing.T

	pages  map[string]*fakePage
	order  []string // insertion order, drives child listing order
	nextID int

	spaceKey string

	// failStatus, when non-zero, makes every request fail with the
	// given status and failBody.
	failStatus int
	failBody   string

	// putCount tracks PUT calls so tests can assert that rejected
	// mutations never reach the write stage.
	putCount int
	// createCount tracks POST calls for upsert tests.
	createCount int

	// onVersionRead, when set, runs after a GET that expanded the
	// version field. Tests use it to race a competing write in between
	// a client's version read and its subsequent PUT.
	onVersionRead func()

	// homeID is the space home page sitting above the configured root.
	homeID string
}

type fakePage struct {
	id       string
	title    string
	parentID string
	body     string
	version  int
}

func newFakeWiki(t *testing.T) *fakeWiki {
	return &fakeWiki{
		t:        t,
		pages:    make(map[string]*fakePage),
		spaceKey: "SPACE",
	}
}

// addPage seeds a page and returns its id.
func (f *fakeWiki) addPage(title, parentID, body string) string {
	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.pages[id] = &fakePage{
		id:       id,
		title:    title,
		parentID: parentID,
		body:     body,
		version:  1,
	}
	f.order = append(f.order, id)
	return id
}

func (f *fakeWiki) childrenOf(pageID string) []*fakePage {
	var children []*fakePage
	for _, id := range f.order {
		page, ok := f.pages[id]
		if ok && page.parentID == pageID {
			children = append(children, page)
		}
	}
	return children
}

// ancestorsOf walks the parent chain and returns it ordered from the
// space root down to the immediate parent.
func (f *fakeWiki) ancestorsOf(page *fakePage) []Ancestor {
	var chain []Ancestor
	for current := page; current.parentID != ""; {
		parent, ok := f.pages[current.parentID]
		if !ok {
			break
		}
		chain = append([]Ancestor{{ID: parent.id, Title: parent.title}}, chain...)
		current = parent
	}
	return chain
}

func (f *fakeWiki) pageJSON(page *fakePage, expand string) map[string]interface{} {
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

func (f *fakeWiki) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.failStatus != 0 {
		w.WriteHeader(f.failStatus)
		fmt.Fprint(w, f.failBody)
		return
	}

	if !strings.HasPrefix(r.Header.Get("Authorization"), "Basic ") {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "missing basic auth")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/rest/api")
	switch {
	case r.Method == http.MethodGet && path == "/content":
		f.handleSearch(w, r)
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/child/page"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/content/"), "/child/page")
		f.handleChildren(w, r, id)
	case r.Method == http.MethodGet:
		f.handleGetPage(w, r, strings.TrimPrefix(path, "/content/"))
	case r.Method == http.MethodPost && path == "/content":
		f.handleCreate(w, r)
	case r.Method == http.MethodPut:
		f.handleUpdate(w, r, strings.TrimPrefix(path, "/content/"))
	case r.Method == http.MethodDelete:
		f.handleDelete(w, strings.TrimPrefix(path, "/content/"))
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "no route for %s %s", r.Method, path)
	}
}

func (f *fakeWiki) handleSearch(w http.ResponseWriter, r *http.Request) {
	if got := r.URL.Query().Get("spaceKey"); got != f.spaceKey {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "unexpected spaceKey %q", got)
		return
	}
	title := r.URL.Query().Get("title")
	expand := r.URL.Query().Get("expand")

	results := []map[string]interface{}{}
	for _, id := range f.order {
		page := f.pages[id]
		if page != nil && page.title == title {
			results = append(results, f.pageJSON(page, expand))
		}
	}
	writeJSON(w, map[string]interface{}{"results": results, "size": len(results)})
}

func (f *fakeWiki) handleChildren(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := f.pages[id]; !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "no page %s", id)
		return
	}

	start, _ := strconv.Atoi(r.URL.Query().Get("start"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 25
	}

	children := f.childrenOf(id)
	results := []map[string]interface{}{}
	for i := start; i < len(children) && i < start+limit; i++ {
		results = append(results, f.pageJSON(children[i], ""))
	}
	writeJSON(w, map[string]interface{}{"results": results, "size": len(results)})
}

func (f *fakeWiki) handleGetPage(w http.ResponseWriter, r *http.Request, id string) {
	page, ok := f.pages[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "no page %s", id)
		return
	}
	expand := r.URL.Query().Get("expand")
	writeJSON(w, f.pageJSON(page, expand))
	if f.onVersionRead != nil && strings.Contains(expand, "version") {
		f.onVersionRead()
	}
}

type fakeWritePayload struct {
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Ancestors []Ancestor `json:"ancestors"`
	Version   *Version   `json:"version"`
	Body      *Body      `json:"body"`
}

func (f *fakeWiki) handleCreate(w http.ResponseWriter, r *http.Request) {
	f.createCount++

	var payload fakeWritePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "bad payload")
		return
	}
	if len(payload.Ancestors) != 1 {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "create requires exactly one ancestor")
		return
	}

	body := ""
	if payload.Body != nil {
		body = payload.Body.Storage.Value
	}
	id := f.addPage(payload.Title, payload.Ancestors[0].ID, body)
	writeJSON(w, f.pageJSON(f.pages[id], "version"))
}

func (f *fakeWiki) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	f.putCount++

	page, ok := f.pages[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "no page %s", id)
		return
	}

	var payload fakeWritePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "bad payload")
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
	writeJSON(w, f.pageJSON(page, "version"))
}

func (f *fakeWiki) handleDelete(w http.ResponseWriter, id string) {
	page, ok := f.pages[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "no page %s", id)
		return
	}

	delete(f.pages, id)
	for i, orderedID := range f.order {
		if orderedID == page.id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, doc interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

// newTestClient seeds a fake wiki with a space home page and a
// configured root below it, and returns a client scoped to that root.
func newTestClient(t *testing.T) (*Client, *fakeWiki, string) {
	t.Helper()

	fake := newFakeWiki(t)
	fake.homeID = fake.addPage("Space Home", "", "")
	rootID := fake.addPage("Root", fake.homeID, "")

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL:    srv.URL,
		SpaceKey:   fake.spaceKey,
		RootPageID: rootID,
		Email:      "bot@example.com",
		APIToken:   "token",
		Timeout:    5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, fake, rootID
}
