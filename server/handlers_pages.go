package server

import (
	"html/template"
	"net/http"
)

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.AppName}}</title>
</head>
<body>
  <h1>{{.AppName}}</h1>
  <p>Signed in as {{.Email}}.</p>
  <form method="post" action="/auth/logout"><button type="submit">Sign out</button></form>
</body>
</html>`

const loginPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Sign in - {{.AppName}}</title>
</head>
<body>
  <h1>Sign in</h1>
  <form id="login" method="post" action="/auth/login{{if .From}}?from={{.From}}{{end}}">
    <input type="email" name="email" placeholder="Email" required>
    <input type="password" name="password" placeholder="Password" required>
    <button type="submit">Sign in</button>
  </form>
  {{if .SSO}}<p><a href="/auth/sso">Sign in with SSO</a></p>{{end}}
</body>
</html>`

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl, err := template.New("index").Parse(indexPage)
	if err != nil {
		panic("Failed to parse index template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		email := ""
		if user := s.manager.User(); user != nil {
			email = user.Email
		}
		data := map[string]interface{}{
			"AppName": s.config.GetAppName(),
			"Email":   email,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	}
}

// LoginPageHandler serves the sign-in page. The "from" parameter set
// by the route guard is carried through to the login submission.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	tmpl, err := template.New("login").Parse(loginPage)
	if err != nil {
		panic("Failed to parse login template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]interface{}{
			"AppName": s.config.GetAppName(),
			"From":    r.URL.Query().Get("from"),
			"SSO":     s.oidc != nil,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	}
}
