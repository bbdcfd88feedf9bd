package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/conflagent-dev/conflagent/internal/config"
	"github.com/conflagent-dev/conflagent/internal/server"
	"github.com/conflagent-dev/conflagent/pkg/confluence"
)

// EndpointHandler routes /endpoint/{name}/... requests. The endpoint
// name selects a configured profile; everything below it except health
// and the OpenAPI document requires bearer authentication against the
// endpoint's shared secret.
func EndpointHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", uuid.New().String(),
		}

		trimmed := strings.TrimPrefix(r.URL.Path, "/endpoint/")
		name, rest, _ := strings.Cut(trimmed, "/")
		if name == "" {
			respondError(w, http.StatusNotFound, CodeNotFound, "Endpoint not found")
			return
		}

		ep := srv.Config.Endpoint(name)
		if ep == nil {
			srv.Logger.Warn("request for unknown endpoint",
				append([]interface{}{
					"endpoint", name,
				}, logArgs...)...)
			respondError(w, http.StatusNotFound, CodeNotFound,
				"Configuration for endpoint '"+name+"' not found")
			return
		}
		logArgs = append(logArgs, "endpoint", name)

		// Unauthenticated routes.
		switch rest {
		case "health":
			if r.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			respondSuccess(w, "Server is running", map[string]string{"status": "ok"})
			return
		case "openapi.json":
			if r.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			serveOpenAPI(srv, ep, w, r)
			return
		}

		if err := authenticate(r, ep.SharedSecret); err != nil {
			srv.Logger.Warn("rejected unauthenticated request",
				append([]interface{}{
					"error", err,
				}, logArgs...)...)
			respondError(w, http.StatusForbidden, CodeUnauthorized,
				"Forbidden: "+err.Error())
			return
		}

		client, err := newEndpointClient(ep)
		if err != nil {
			srv.Logger.Error("error building confluence client",
				append([]interface{}{
					"error", err,
				}, logArgs...)...)
			respondError(w, http.StatusInternalServerError, CodeInternalError,
				"An unexpected error occurred.")
			return
		}

		switch {
		case rest == "pages":
			switch r.Method {
			case http.MethodGet:
				listPages(srv, client, w, r, logArgs)
			case http.MethodPost:
				createPage(srv, client, w, r, logArgs)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}

		case rest == "pages/tree":
			if r.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			getPageTree(srv, client, w, r, logArgs)

		case rest == "pages/rename":
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			renamePage(srv, client, w, r, logArgs)

		case strings.HasPrefix(rest, "pages/"):
			titlePath := strings.TrimPrefix(rest, "pages/")
			dispatchTitleRoute(srv, client, titlePath, w, r, logArgs)

		default:
			respondError(w, http.StatusNotFound, CodeNotFound, "Route not found")
		}
	})
}

// dispatchTitleRoute handles /pages/{title...} routes, including the
// /children, /parent and /move suffixes. Titles may themselves contain
// slashes (path addressing), so the suffix is matched on the last
// segment only.
func dispatchTitleRoute(
	srv server.Server,
	client *confluence.Client,
	titlePath string,
	w http.ResponseWriter,
	r *http.Request,
	logArgs []interface{},
) {
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(titlePath, "/children"):
		title := strings.TrimSuffix(titlePath, "/children")
		listChildren(srv, client, title, w, r, logArgs)

	case r.Method == http.MethodGet && strings.HasSuffix(titlePath, "/parent"):
		title := strings.TrimSuffix(titlePath, "/parent")
		getParent(srv, client, title, w, r, logArgs)

	case r.Method == http.MethodPost && strings.HasSuffix(titlePath, "/move"):
		title := strings.TrimSuffix(titlePath, "/move")
		movePage(srv, client, title, w, r, logArgs)

	case r.Method == http.MethodGet:
		readPage(srv, client, titlePath, w, r, logArgs)

	case r.Method == http.MethodPut:
		updatePage(srv, client, titlePath, w, r, logArgs)

	case r.Method == http.MethodDelete:
		deletePage(srv, client, titlePath, w, r, logArgs)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// newEndpointClient builds a core client for one endpoint profile.
func newEndpointClient(ep *config.Endpoint) (*confluence.Client, error) {
	return confluence.NewClient(confluence.Config{
		BaseURL:    ep.BaseURL,
		SpaceKey:   ep.SpaceKey,
		RootPageID: ep.RootPageID,
		Email:      ep.Email,
		APIToken:   ep.APIToken,
		Timeout:    ep.Timeout(),
	})
}
