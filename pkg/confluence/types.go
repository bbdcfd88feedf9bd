package confluence

// Page is a view into remote Confluence content state. It is fetched
// fresh per operation and carries no local identity beyond the remote ID.
type Page struct {
	ID        string     `json:"id"`
	Type      string     `json:"type,omitempty"`
	Title     string     `json:"title"`
	Ancestors []Ancestor `json:"ancestors,omitempty"`
	Version   *Version   `json:"version,omitempty"`
	Body      *Body      `json:"body,omitempty"`
}

// Ancestor is one entry in a page's ancestor chain, ordered from the
// space root down to the immediate parent.
type Ancestor struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Version is the remote optimistic-concurrency counter.
type Version struct {
	Number int `json:"number"`
}

// Body wraps the storage-format representation of page content.
type Body struct {
	Storage Storage `json:"storage"`
}

// Storage is Confluence's HTML-like XML body representation.
type Storage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// ChildEntry describes one direct child of a page, with the full
// breadcrumb path from the space root.
type ChildEntry struct {
	Title string   `json:"title"`
	Path  []string `json:"path"`
}

// ParentEntry describes a page's immediate parent along with the
// resolved page's own breadcrumb path.
type ParentEntry struct {
	Title string   `json:"title"`
	Path  []string `json:"path"`
}

// TreeNode is an assembled hierarchical view, rebuilt per request up to
// a caller-supplied depth bound.
type TreeNode struct {
	Title    string      `json:"title"`
	Path     []string    `json:"path"`
	Children []*TreeNode `json:"children"`
}

// CreateResult is returned by CreatePage.
type CreateResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Version int    `json:"version"`
}

// UpsertResult is returned by CreateOrUpdatePage.
type UpsertResult struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
}

// RenameResult is returned by RenamePage.
type RenameResult struct {
	OldTitle string `json:"oldTitle"`
	NewTitle string `json:"newTitle"`
	Version  int    `json:"version"`
}

// MoveResult is returned by MovePage. OldParentTitle is empty when the
// moved page had no ancestors before the move.
type MoveResult struct {
	Title          string `json:"title"`
	OldParentTitle string `json:"oldParentTitle"`
	NewParentTitle string `json:"newParentTitle"`
}

// contentList is the wire shape of Confluence list responses.
type contentList struct {
	Results []Page `json:"results"`
	Size    int    `json:"size"`
}
