package confluence

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// isDescendantOfRoot reports whether a page is in scope: its id equals
// the configured root id, or the root id appears in its ancestor chain.
// This check is the security boundary preventing operations from
// touching pages outside the sandboxed subtree.
func (c *Client) isDescendantOfRoot(page *Page) bool {
	if page.ID == c.cfg.RootPageID {
		return true
	}
	for _, a := range page.Ancestors {
		if a.ID == c.cfg.RootPageID {
			return true
		}
	}
	return false
}

// searchPagesByTitle searches the configured space for pages with the
// given title. The ancestors expansion is always requested so callers
// can apply the root-containment check.
func (c *Client) searchPagesByTitle(ctx context.Context, title, expand string) ([]Page, error) {
	expansions := []string{}
	for _, part := range strings.Split(expand, ",") {
		if part != "" {
			expansions = append(expansions, part)
		}
	}
	hasAncestors := false
	for _, e := range expansions {
		if e == "ancestors" {
			hasAncestors = true
			break
		}
	}
	if !hasAncestors {
		expansions = append(expansions, "ancestors")
	}

	params := url.Values{}
	params.Set("spaceKey", c.cfg.SpaceKey)
	params.Set("title", title)
	params.Set("expand", strings.Join(expansions, ","))

	var list contentList
	if err := c.do(ctx, http.MethodGet, c.contentURL("/content"), params, nil, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// searchDescendantByTitle returns the first API-ordered search result
// that is in scope, or nil when no in-scope page carries the title.
// Search results from unrelated parts of the space are ignored.
func (c *Client) searchDescendantByTitle(ctx context.Context, title, expand string) (*Page, error) {
	results, err := c.searchPagesByTitle(ctx, title, expand)
	if err != nil {
		return nil, err
	}
	for i := range results {
		if c.isDescendantOfRoot(&results[i]) {
			return &results[i], nil
		}
	}
	return nil, nil
}

// ensurePageByTitle resolves a title to an in-scope page or returns a
// NotFoundError. Out-of-scope pages with the same title are reported as
// not found so their existence does not leak.
func (c *Client) ensurePageByTitle(ctx context.Context, title, expand string) (*Page, error) {
	page, err := c.searchDescendantByTitle(ctx, title, expand)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, &NotFoundError{Title: title}
	}
	return page, nil
}

// childByTitle scans the direct children of parentID for an exact title
// match. Returns nil without error when no child matches.
func (c *Client) childByTitle(ctx context.Context, title, parentID string) (*Page, error) {
	children, err := c.fetchChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	for i := range children {
		if children[i].Title == title {
			return &children[i], nil
		}
	}
	return nil, nil
}

// splitPath normalizes a slash-delimited title path into its segments.
func splitPath(path string) []string {
	normalized := strings.Trim(path, "/")
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, "/")
}

// GetPageByPath resolves a slash-delimited title path to a page.
//
// Multi-segment paths are walked segment by segment with parent-relative
// child lookups starting at the configured root, so they can never
// escape the root subtree. Single-segment paths are resolved with a
// space-wide title search instead, filtered down to root descendants.
// A NotFoundError is returned when any step fails to resolve.
func (c *Client) GetPageByPath(ctx context.Context, path string) (*Page, error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, &NotFoundError{Title: path}
	}

	if len(parts) == 1 {
		results, err := c.searchPagesByTitle(ctx, parts[0], "ancestors")
		if err != nil {
			return nil, err
		}
		for i := range results {
			if c.isDescendantOfRoot(&results[i]) {
				return &results[i], nil
			}
		}
		return nil, &NotFoundError{Title: path}
	}

	currentParentID := c.cfg.RootPageID
	var page *Page
	for _, part := range parts {
		var err error
		page, err = c.childByTitle(ctx, part, currentParentID)
		if err != nil {
			return nil, err
		}
		if page == nil {
			return nil, &NotFoundError{Title: path}
		}
		currentParentID = page.ID
	}
	return page, nil
}

// ResolveOrCreatePath walks a title path from the root, creating any
// missing segment as an empty page under the last resolved ancestor.
// Returns the id of the final segment (the root id for an empty path).
func (c *Client) ResolveOrCreatePath(ctx context.Context, path string) (string, error) {
	currentParentID := c.cfg.RootPageID
	for _, part := range splitPath(path) {
		existing, err := c.childByTitle(ctx, part, currentParentID)
		if err != nil {
			return "", err
		}
		if existing != nil {
			currentParentID = existing.ID
			continue
		}

		created, err := c.postPage(ctx, part, "", currentParentID)
		if err != nil {
			return "", err
		}
		currentParentID = created.ID
	}
	return currentParentID, nil
}
