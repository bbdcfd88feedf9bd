package confluence

import "context"

// ListPages returns the slash-delimited paths of every page below the
// configured root, in pre-order: each parent before its descendants,
// siblings in the API's listing order.
//
// The walk uses an explicit stack rather than recursion so arbitrarily
// deep trees cannot exhaust the call stack.
func (c *Client) ListPages(ctx context.Context) ([]string, error) {
	type frame struct {
		pageID string
		prefix string
	}

	paths := []string{}
	stack := []frame{{pageID: c.cfg.RootPageID}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// The root frame carries no prefix and is not part of the listing.
		if top.prefix != "" {
			paths = append(paths, top.prefix)
		}

		children, err := c.fetchChildren(ctx, top.pageID)
		if err != nil {
			return nil, err
		}

		// Push in reverse so the pop order matches the API's listing order.
		for i := len(children) - 1; i >= 0; i-- {
			path := children[i].Title
			if top.prefix != "" {
				path = top.prefix + "/" + children[i].Title
			}
			stack = append(stack, frame{pageID: children[i].ID, prefix: path})
		}
	}

	return paths, nil
}

// breadcrumb builds a page's full title path from its ancestor chain.
func breadcrumb(page *Page) []string {
	path := make([]string, 0, len(page.Ancestors)+1)
	for _, a := range page.Ancestors {
		path = append(path, a.Title)
	}
	return append(path, page.Title)
}

// GetPageChildren resolves a title to an in-scope page and returns its
// direct children, each with a full breadcrumb path.
func (c *Client) GetPageChildren(ctx context.Context, title string) ([]ChildEntry, error) {
	page, err := c.ensurePageByTitle(ctx, title, "")
	if err != nil {
		return nil, err
	}

	path := breadcrumb(page)
	children, err := c.fetchChildren(ctx, page.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]ChildEntry, 0, len(children))
	for _, child := range children {
		childPath := make([]string, 0, len(path)+1)
		childPath = append(childPath, path...)
		childPath = append(childPath, child.Title)
		entries = append(entries, ChildEntry{Title: child.Title, Path: childPath})
	}
	return entries, nil
}

// GetPageParent resolves a title and returns its immediate ancestor
// plus the resolved page's own breadcrumb path. Returns nil (without
// error) when the page has no ancestors, i.e. it is the root itself.
func (c *Client) GetPageParent(ctx context.Context, title string) (*ParentEntry, error) {
	page, err := c.ensurePageByTitle(ctx, title, "")
	if err != nil {
		return nil, err
	}
	if len(page.Ancestors) == 0 {
		return nil, nil
	}
	parent := page.Ancestors[len(page.Ancestors)-1]
	return &ParentEntry{Title: parent.Title, Path: breadcrumb(page)}, nil
}

// GetPageTree assembles a depth-bounded subtree view. When startTitle is
// empty the tree starts at the configured root; otherwise startTitle
// must resolve to an in-scope page. Depth 0 yields a leaf node with
// empty children; each level of descent consumes one unit of depth.
// Depth must already be validated non-negative by the caller.
func (c *Client) GetPageTree(ctx context.Context, startTitle string, depth int) (*TreeNode, error) {
	var start *Page
	var err error
	if startTitle != "" {
		start, err = c.ensurePageByTitle(ctx, startTitle, "")
	} else {
		start, err = c.getPage(ctx, c.cfg.RootPageID, "ancestors")
	}
	if err != nil {
		return nil, err
	}

	return c.buildTreeNode(ctx, start.ID, start.Title, depth, breadcrumb(start))
}

func (c *Client) buildTreeNode(ctx context.Context, pageID, title string, depth int, path []string) (*TreeNode, error) {
	node := &TreeNode{Title: title, Path: path, Children: []*TreeNode{}}
	if depth <= 0 {
		return node, nil
	}

	children, err := c.fetchChildren(ctx, pageID)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		childPath := make([]string, 0, len(path)+1)
		childPath = append(childPath, path...)
		childPath = append(childPath, child.Title)

		childNode, err := c.buildTreeNode(ctx, child.ID, child.Title, depth-1, childPath)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}
