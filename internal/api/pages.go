package api

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/conflagent-dev/conflagent/internal/server"
	"github.com/conflagent-dev/conflagent/pkg/confluence"
	"github.com/conflagent-dev/conflagent/pkg/markdown"
)

// defaultTreeDepth is used when the tree route is called without an
// explicit depth parameter.
const defaultTreeDepth = 2

type createPageRequest struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	ParentTitle string `json:"parentTitle"`
}

type updatePageRequest struct {
	Body string `json:"body"`
}

type renamePageRequest struct {
	OldTitle string `json:"old_title"`
	NewTitle string `json:"new_title"`
}

type movePageRequest struct {
	NewParentTitle string `json:"newParentTitle"`
}

type readPageResponse struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type updatePageResponse struct {
	Version int `json:"version"`
}

type deletePageResponse struct {
	DeletedTitle string `json:"deletedTitle"`
}

func listPages(srv server.Server, client *confluence.Client, w http.ResponseWriter, r *http.Request, logArgs []interface{}) {
	paths, err := client.ListPages(r.Context())
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}
	respondSuccess(w, "Pages listed", paths)
}

func createPage(srv server.Server, client *confluence.Client, w http.ResponseWriter, r *http.Request, logArgs []interface{}) {
	req := &createPageRequest{}
	if err := decodeRequest(r, req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}
	if err := validation.Validate(req.Title, validation.Required); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "Title is required")
		return
	}

	body, err := markdown.ToStorage(req.Body)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}

	// An explicit parent creates a fresh page under it; without one the
	// title is treated as a path and upserted, auto-creating missing
	// intermediate segments.
	if req.ParentTitle != "" {
		result, err := client.CreatePage(r.Context(), req.Title, body, req.ParentTitle)
		if err != nil {
			respondOperationError(w, srv.Logger, err, logArgs...)
			return
		}
		respondSuccess(w, "Page created", result)
		return
	}

	result, err := client.CreateOrUpdatePage(r.Context(), req.Title, body)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}
	respondSuccess(w, "Page created", result)
}

func readPage(srv server.Server, client *confluence.Client, title string, w http.ResponseWriter, r *http.Request, logArgs []interface{}) {
	page, err := client.GetPageByPath(r.Context(), title)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}

	body, err := client.GetPageBody(r.Context(), page.ID)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}
	respondSuccess(w, "Page read", readPageResponse{Title: title, Body: body})
}

func updatePage(srv server.Server, client *confluence.Client, title string, w http.ResponseWriter, r *http.Request, logArgs []interface{}) {
	req := &updatePageRequest{}
	if err := decodeRequest(r, req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}

	page, err := client.GetPageByPath(r.Context(), title)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}

	body, err := markdown.ToStorage(req.Body)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}

	version, err := client.UpdatePage(r.Context(), page, body)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}
	respondSuccess(w, "Page updated", updatePageResponse{Version: version})
}

func deletePage(srv server.Server, client *confluence.Client, title string, w http.ResponseWriter, r *http.Request, logArgs []interface{}) {
	page, err := client.GetPageByPath(r.Context(), title)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}

	deletedTitle, err := client.DeletePage(r.Context(), page)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}
	respondSuccess(w, "Page deleted", deletePageResponse{DeletedTitle: deletedTitle})
}

func renamePage(srv server.Server, client *confluence.Client, w http.ResponseWriter, r *http.Request, logArgs []interface{}) {
	req := &renamePageRequest{}
	if err := decodeRequest(r, req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}
	if err := (validation.Errors{
		"old_title": validation.Validate(req.OldTitle, validation.Required),
		"new_title": validation.Validate(req.NewTitle, validation.Required),
	}).Filter(); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput,
			"Both 'old_title' and 'new_title' are required.")
		return
	}

	page, err := client.GetPageByPath(r.Context(), req.OldTitle)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}

	result, err := client.RenamePage(r.Context(), page, req.NewTitle)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}
	respondSuccess(w, "Page renamed", result)
}

func movePage(srv server.Server, client *confluence.Client, title string, w http.ResponseWriter, r *http.Request, logArgs []interface{}) {
	req := &movePageRequest{}
	if err := decodeRequest(r, req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}
	if err := validation.Validate(req.NewParentTitle, validation.Required); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput,
			"'newParentTitle' is required")
		return
	}

	result, err := client.MovePage(r.Context(), title, req.NewParentTitle)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}
	respondSuccess(w, "Page moved", result)
}

func listChildren(srv server.Server, client *confluence.Client, title string, w http.ResponseWriter, r *http.Request, logArgs []interface{}) {
	children, err := client.GetPageChildren(r.Context(), title)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}
	respondSuccess(w, "Children listed", children)
}

func getParent(srv server.Server, client *confluence.Client, title string, w http.ResponseWriter, r *http.Request, logArgs []interface{}) {
	parent, err := client.GetPageParent(r.Context(), title)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}
	if parent == nil {
		// The resolved page is the root of the sandboxed subtree.
		respondSuccess(w, "Page has no parent", nil)
		return
	}
	respondSuccess(w, "Parent found", parent)
}

func getPageTree(srv server.Server, client *confluence.Client, w http.ResponseWriter, r *http.Request, logArgs []interface{}) {
	depth := defaultTreeDepth
	if raw := r.URL.Query().Get("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, CodeInvalidInput,
				"'depth' must be a non-negative integer")
			return
		}
		depth = parsed
	}
	startTitle := r.URL.Query().Get("startTitle")

	tree, err := client.GetPageTree(r.Context(), startTitle, depth)
	if err != nil {
		respondOperationError(w, srv.Logger, err, logArgs...)
		return
	}
	respondSuccess(w, "Tree assembled", tree)
}
