package confluence

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// createPayload is the wire shape of a POST /content request.
type createPayload struct {
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Ancestors []Ancestor `json:"ancestors"`
	Space     spaceRef   `json:"space"`
	Body      Body       `json:"body"`
}

type spaceRef struct {
	Key string `json:"key"`
}

// updatePayload is the wire shape of a PUT /content/{id} request. Body
// is optional for ancestor-only updates (move).
type updatePayload struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Version   Version    `json:"version"`
	Ancestors []Ancestor `json:"ancestors,omitempty"`
	Body      *Body      `json:"body,omitempty"`
}

func storageBody(value string) Body {
	return Body{Storage: Storage{Value: value, Representation: "storage"}}
}

// postPage issues the create call for a page under parentID and returns
// the remote's view of the new page.
func (c *Client) postPage(ctx context.Context, title, body, parentID string) (*Page, error) {
	payload := createPayload{
		Type:      "page",
		Title:     title,
		Ancestors: []Ancestor{{ID: parentID}},
		Space:     spaceRef{Key: c.cfg.SpaceKey},
		Body:      storageBody(body),
	}

	var created Page
	err := c.do(ctx, http.MethodPost, c.contentURL("/content"), nil, payload, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// currentVersion re-fetches a page's version counter so mutations always
// increment from the remote's current state.
func (c *Client) currentVersion(ctx context.Context, pageID string) (int, error) {
	page, err := c.getPage(ctx, pageID, "version")
	if err != nil {
		return 0, err
	}
	if page.Version == nil {
		return 0, fmt.Errorf("page %s has no version information", pageID)
	}
	return page.Version.Number, nil
}

// CreatePage creates a new page. When parentTitle is given it must
// resolve to an in-scope page; otherwise the page is anchored directly
// under the configured root. The remote-assigned version defaults to 1
// when the create response omits it.
func (c *Client) CreatePage(ctx context.Context, title, body, parentTitle string) (*CreateResult, error) {
	ancestorID := c.cfg.RootPageID
	if parentTitle != "" {
		parent, err := c.ensurePageByTitle(ctx, parentTitle, "")
		if err != nil {
			return nil, err
		}
		ancestorID = parent.ID
	}

	created, err := c.postPage(ctx, title, body, ancestorID)
	if err != nil {
		return nil, err
	}

	version := 1
	if created.Version != nil {
		version = created.Version.Number
	}
	return &CreateResult{ID: created.ID, Title: title, Version: version}, nil
}

// CreateOrUpdatePage is an idempotent upsert addressed by path. Missing
// intermediate segments are created as empty pages; if a page with the
// leaf title already exists under the resolved parent the call becomes
// an update, otherwise a fresh create.
func (c *Client) CreateOrUpdatePage(ctx context.Context, path, body string) (*UpsertResult, error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, &NotFoundError{Title: path}
	}
	parentPath := strings.Join(parts[:len(parts)-1], "/")
	leafTitle := parts[len(parts)-1]

	parentID := c.cfg.RootPageID
	if parentPath != "" {
		var err error
		parentID, err = c.ResolveOrCreatePath(ctx, parentPath)
		if err != nil {
			return nil, err
		}
	}

	existing, err := c.childByTitle(ctx, leafTitle, parentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		version, err := c.UpdatePage(ctx, existing, body)
		if err != nil {
			return nil, err
		}
		return &UpsertResult{ID: existing.ID, Version: version}, nil
	}

	created, err := c.postPage(ctx, leafTitle, body, parentID)
	if err != nil {
		return nil, err
	}
	version := 1
	if created.Version != nil {
		version = created.Version.Number
	}
	return &UpsertResult{ID: created.ID, Version: version}, nil
}

// UpdatePage replaces the full body of a page. The current version is
// re-fetched immediately before the write and incremented by one; there
// is no compare-and-swap guard, so concurrent writers race and the
// remote decides which one wins.
func (c *Client) UpdatePage(ctx context.Context, page *Page, newBody string) (int, error) {
	current, err := c.currentVersion(ctx, page.ID)
	if err != nil {
		return 0, err
	}
	version := current + 1

	body := storageBody(newBody)
	payload := updatePayload{
		ID:      page.ID,
		Type:    "page",
		Title:   page.Title,
		Version: Version{Number: version},
		Body:    &body,
	}
	err = c.do(ctx, http.MethodPut, c.contentURL("/content/"+page.ID), nil, payload, nil)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// RenamePage changes a page's title. The remote update call requires a
// body alongside any title change, so the current body is fetched and
// re-submitted unchanged.
func (c *Client) RenamePage(ctx context.Context, page *Page, newTitle string) (*RenameResult, error) {
	current, err := c.currentVersion(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	version := current + 1

	bodyValue, err := c.GetPageBody(ctx, page.ID)
	if err != nil {
		return nil, err
	}

	body := storageBody(bodyValue)
	payload := updatePayload{
		ID:      page.ID,
		Type:    "page",
		Title:   newTitle,
		Version: Version{Number: version},
		Body:    &body,
	}
	err = c.do(ctx, http.MethodPut, c.contentURL("/content/"+page.ID), nil, payload, nil)
	if err != nil {
		return nil, err
	}
	return &RenameResult{OldTitle: page.Title, NewTitle: newTitle, Version: version}, nil
}

// MovePage re-parents a page under a new in-scope parent. Both the page
// and the new parent must resolve inside the root subtree; moving a page
// into its own subtree is rejected with an InvalidOperationError before
// any write is issued. All preconditions run first so a failure leaves
// remote state untouched; the re-parent itself is a single write.
func (c *Client) MovePage(ctx context.Context, title, newParentTitle string) (*MoveResult, error) {
	page, err := c.ensurePageByTitle(ctx, title, "version")
	if err != nil {
		return nil, err
	}

	detailed, err := c.getPage(ctx, page.ID, "ancestors,version")
	if err != nil {
		return nil, err
	}
	if !c.isDescendantOfRoot(detailed) {
		return nil, &NotFoundError{Title: title}
	}

	oldParentTitle := ""
	if len(detailed.Ancestors) > 0 {
		oldParentTitle = detailed.Ancestors[len(detailed.Ancestors)-1].Title
	}

	newParent, err := c.ensurePageByTitle(ctx, newParentTitle, "")
	if err != nil {
		return nil, err
	}
	newParentDetails, err := c.getPage(ctx, newParent.ID, "ancestors")
	if err != nil {
		return nil, err
	}
	if !c.isDescendantOfRoot(newParentDetails) {
		return nil, &NotFoundError{Title: newParentTitle}
	}

	// Cycle check: the page must not appear in the new parent's own
	// ancestry chain (including the new parent itself).
	for _, a := range newParentDetails.Ancestors {
		if a.ID == detailed.ID {
			return nil, &InvalidOperationError{Reason: "cannot move page into its own subtree"}
		}
	}
	if newParentDetails.ID == detailed.ID {
		return nil, &InvalidOperationError{Reason: "cannot move page into its own subtree"}
	}

	if detailed.Version == nil {
		return nil, fmt.Errorf("page %s has no version information", detailed.ID)
	}
	payload := updatePayload{
		ID:        detailed.ID,
		Type:      "page",
		Title:     detailed.Title,
		Version:   Version{Number: detailed.Version.Number + 1},
		Ancestors: []Ancestor{{ID: newParentDetails.ID}},
	}
	err = c.do(ctx, http.MethodPut, c.contentURL("/content/"+detailed.ID), nil, payload, nil)
	if err != nil {
		return nil, err
	}

	return &MoveResult{
		Title:          detailed.Title,
		OldParentTitle: oldParentTitle,
		NewParentTitle: newParentDetails.Title,
	}, nil
}

// DeletePage removes a page from the wiki.
func (c *Client) DeletePage(ctx context.Context, page *Page) (string, error) {
	err := c.do(ctx, http.MethodDelete, c.contentURL("/content/"+page.ID), nil, nil, nil)
	if err != nil {
		return "", err
	}
	return page.Title, nil
}
