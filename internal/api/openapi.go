package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/conflagent-dev/conflagent/internal/config"
	"github.com/conflagent-dev/conflagent/internal/server"
	"github.com/conflagent-dev/conflagent/internal/version"
)

type apiDoc = map[string]interface{}

var bearerSecurity = []apiDoc{{"BearerAuth": []string{}}}

// serveOpenAPI returns the OpenAPI 3 document for one endpoint. The
// document is assembled per request so the server URL reflects the host
// the client reached us on.
func serveOpenAPI(srv server.Server, ep *config.Endpoint, w http.ResponseWriter, r *http.Request) {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	serverURL := fmt.Sprintf("%s://%s/endpoint/%s", scheme, r.Host, ep.Name)

	doc := apiDoc{
		"openapi": "3.0.2",
		"info": apiDoc{
			"title": "Conflagent API",
			"description": "REST API bridge between Custom GPTs and a sandboxed " +
				"Confluence root page. All requests must be authenticated using a " +
				"Bearer token (Authorization: Bearer <token>). The API enables " +
				"programmatic listing, reading, creation, updating, renaming, " +
				"moving and deletion of Confluence pages under a pre-defined " +
				"root page.",
			"version": version.Version,
		},
		"servers": []apiDoc{
			{"url": serverURL, "description": "Endpoint-specific API"},
		},
		"components": apiDoc{
			"securitySchemes": apiDoc{
				"BearerAuth": apiDoc{
					"type":   "http",
					"scheme": "bearer",
				},
			},
		},
		"paths": buildPaths(),
	}

	respondJSON(w, doc)
}

func respondJSON(w http.ResponseWriter, doc apiDoc) {
	writeRawJSON(w, http.StatusOK, doc)
}

func buildPaths() apiDoc {
	titleParam := []apiDoc{{
		"name":     "title",
		"in":       "path",
		"required": true,
		"schema":   apiDoc{"type": "string"},
	}}

	return apiDoc{
		"/pages": apiDoc{
			"get": operation("listPages",
				"List all pages under the root page",
				"Returns the slash-delimited paths of every page below the configured root page, in pre-order.",
				apiDoc{
					"200": jsonResponse("List of page paths", apiDoc{
						"type":  "array",
						"items": apiDoc{"type": "string"},
					}),
					"403": apiDoc{"description": "Forbidden: Invalid token"},
				}, nil),
			"post": operation("createPage",
				"Create a page",
				"Creates a page. With 'parentTitle' the page is created under that parent; without it the title is treated as a slash-delimited path and upserted, creating missing intermediate pages. Markdown bodies are converted to Confluence storage format.",
				apiDoc{
					"200": jsonResponse("Page created", apiDoc{
						"type": "object",
						"properties": apiDoc{
							"id":      apiDoc{"type": "string"},
							"version": apiDoc{"type": "integer"},
						},
					}),
					"400": apiDoc{"description": "Invalid input"},
					"403": apiDoc{"description": "Forbidden: Invalid token"},
				},
				apiDoc{
					"type":     "object",
					"required": []string{"title"},
					"properties": apiDoc{
						"title":       apiDoc{"type": "string"},
						"body":        apiDoc{"type": "string", "description": "Optional Markdown body."},
						"parentTitle": apiDoc{"type": "string"},
					},
				}),
		},
		"/pages/tree": apiDoc{
			"get": operation("getPageTree",
				"Get a depth-bounded page tree",
				"Returns the page hierarchy starting at 'startTitle' (default: the root page) expanded up to 'depth' levels.",
				apiDoc{
					"200": jsonResponse("Tree assembled", apiDoc{"type": "object"}),
					"400": apiDoc{"description": "Invalid depth"},
					"403": apiDoc{"description": "Forbidden: Invalid token"},
					"404": apiDoc{"description": "Start page not found"},
				}, nil),
		},
		"/pages/rename": apiDoc{
			"post": operation("renamePage",
				"Rename a page by title",
				"Renames a page without altering the page hierarchy or body.",
				apiDoc{
					"200": jsonResponse("Page renamed", apiDoc{"type": "object"}),
					"400": apiDoc{"description": "Invalid input"},
					"403": apiDoc{"description": "Forbidden: Invalid token"},
					"404": apiDoc{"description": "Page not found"},
				},
				apiDoc{
					"type":     "object",
					"required": []string{"old_title", "new_title"},
					"properties": apiDoc{
						"old_title": apiDoc{"type": "string"},
						"new_title": apiDoc{"type": "string"},
					},
				}),
		},
		"/pages/{title}": apiDoc{
			"get": withParams(operation("readPageByTitle",
				"Read content of a page by title",
				"Returns the page content in Confluence storage format (HTML-like XML).",
				apiDoc{
					"200": jsonResponse("Page content returned", apiDoc{
						"type": "object",
						"properties": apiDoc{
							"title": apiDoc{"type": "string"},
							"body":  apiDoc{"type": "string"},
						},
					}),
					"403": apiDoc{"description": "Forbidden: Invalid token"},
					"404": apiDoc{"description": "Page not found or outside the root subtree"},
				}, nil), titleParam),
			"put": withParams(operation("updatePageByTitle",
				"Update content of a page by title",
				"Replaces the full page body. Partial or diff updates are not supported.",
				apiDoc{
					"200": jsonResponse("Page updated", apiDoc{
						"type": "object",
						"properties": apiDoc{
							"version": apiDoc{"type": "integer"},
						},
					}),
					"403": apiDoc{"description": "Forbidden: Invalid token"},
					"404": apiDoc{"description": "Page not found or outside the root subtree"},
				},
				apiDoc{
					"type":     "object",
					"required": []string{"body"},
					"properties": apiDoc{
						"body": apiDoc{"type": "string", "description": "Full replacement content; Markdown is converted automatically."},
					},
				}), titleParam),
			"delete": withParams(operation("deletePageByTitle",
				"Delete a page by title",
				"Deletes the page from the wiki.",
				apiDoc{
					"200": jsonResponse("Page deleted", apiDoc{"type": "object"}),
					"403": apiDoc{"description": "Forbidden: Invalid token"},
					"404": apiDoc{"description": "Page not found or outside the root subtree"},
				}, nil), titleParam),
		},
		"/pages/{title}/children": apiDoc{
			"get": withParams(operation("listPageChildren",
				"List direct children of a page",
				"Returns each child with its full breadcrumb path from the space root.",
				apiDoc{
					"200": jsonResponse("Children listed", apiDoc{"type": "array", "items": apiDoc{"type": "object"}}),
					"403": apiDoc{"description": "Forbidden: Invalid token"},
					"404": apiDoc{"description": "Page not found"},
				}, nil), titleParam),
		},
		"/pages/{title}/parent": apiDoc{
			"get": withParams(operation("getPageParent",
				"Get the immediate parent of a page",
				"Returns the parent title and the page's breadcrumb path, or null for the root page.",
				apiDoc{
					"200": jsonResponse("Parent returned", apiDoc{"type": "object"}),
					"403": apiDoc{"description": "Forbidden: Invalid token"},
					"404": apiDoc{"description": "Page not found"},
				}, nil), titleParam),
		},
		"/pages/{title}/move": apiDoc{
			"post": withParams(operation("movePage",
				"Move a page under a new parent",
				"Re-parents the page. Moving a page into its own subtree is rejected.",
				apiDoc{
					"200": jsonResponse("Page moved", apiDoc{"type": "object"}),
					"403": apiDoc{"description": "Forbidden: Invalid token"},
					"404": apiDoc{"description": "Page or new parent not found"},
					"422": apiDoc{"description": "Cannot move page into its own subtree"},
				},
				apiDoc{
					"type":     "object",
					"required": []string{"newParentTitle"},
					"properties": apiDoc{
						"newParentTitle": apiDoc{"type": "string"},
					},
				}), titleParam),
		},
		"/health": apiDoc{
			"get": operation("healthCheck",
				"Health check",
				"Check whether the API server is live. No authentication required.",
				apiDoc{
					"200": jsonResponse("Server is running", apiDoc{"type": "object"}),
				}, nil),
		},
	}
}

func operation(id, summary, description string, responses apiDoc, requestSchema apiDoc) apiDoc {
	op := apiDoc{
		"operationId": id,
		"summary":     summary,
		"description": description,
		"responses":   responses,
	}
	if !strings.EqualFold(id, "healthCheck") {
		op["security"] = bearerSecurity
	}
	if requestSchema != nil {
		op["requestBody"] = apiDoc{
			"required": true,
			"content": apiDoc{
				"application/json": apiDoc{"schema": requestSchema},
			},
		}
	}
	return op
}

func withParams(op apiDoc, params []apiDoc) apiDoc {
	op["parameters"] = params
	return op
}

func jsonResponse(description string, schema apiDoc) apiDoc {
	return apiDoc{
		"description": description,
		"content": apiDoc{
			"application/json": apiDoc{"schema": schema},
		},
	}
}
