package api

import (
	"html/template"
	"net/http"

	"github.com/conflagent-dev/conflagent/internal/server"
	"github.com/conflagent-dev/conflagent/internal/version"
)

var landingTmpl = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Conflagent</title>
</head>
<body>
  <h1>Welcome to Conflagent</h1>
  <p>Conflagent bridges Custom GPTs to a sandboxed Confluence page subtree.</p>
  <p>Each deployed endpoint serves its API under <code>/endpoint/&lt;name&gt;/</code>.
     <a href="openapi.json">View API Specification</a> per endpoint at
     <code>/endpoint/&lt;name&gt;/openapi.json</code>.</p>
  <footer>
    <p>Conflagent v{{.Version}} &middot; Built {{.BuildDate}} &middot; Commit {{.Commit}}</p>
  </footer>
</body>
</html>
`))

// LandingHandler serves the static landing page at the server root.
func LandingHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			respondError(w, http.StatusNotFound, CodeNotFound, "Route not found")
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := landingTmpl.Execute(w, map[string]string{
			"Version":   version.Version,
			"BuildDate": version.BuildDate,
			"Commit":    version.Commit,
		})
		if err != nil {
			srv.Logger.Error("error rendering landing page", "error", err)
		}
	})
}
