package http

import (
	"html/template"
	"net/http"

	"warbler/errs"
)

// The app's pages are deliberately bare: lists of @usernames, message texts
// and flash messages are all the markup the contract needs.
var pages = template.Must(template.New("pages").Parse(`
{{define "flashes"}}{{range .Flashes}}<div class="flash">{{.}}</div>
{{end}}{{end}}

{{define "home"}}<!DOCTYPE html>
<html><body>
{{template "flashes" .}}
<h1>Warbler</h1>
{{range .Messages}}<article><p>{{.Text}}</p><p>@{{.User.Username}}</p></article>
{{else}}<p>New to Warbler? Sign up to see the feed.</p>{{end}}
</body></html>{{end}}

{{define "users"}}<!DOCTYPE html>
<html><body>
{{template "flashes" .}}
<h1>{{if .Title}}{{.Title}}{{else}}Users{{end}}</h1>
{{range .Users}}<p>@{{.Username}}</p>
{{end}}
</body></html>{{end}}

{{define "user"}}<!DOCTYPE html>
<html><body>
{{template "flashes" .}}
<h1>@{{.User.Username}}</h1>
{{if .User.ImageURL}}<img src="{{.User.ImageURL}}" alt="@{{.User.Username}}">{{end}}
<p>{{.FollowerCount}} followers, following {{.FollowingCount}}</p>
{{range .Messages}}<article><p>{{.Text}}</p></article>
{{end}}
</body></html>{{end}}

{{define "message"}}<!DOCTYPE html>
<html><body>
{{template "flashes" .}}
<article><p>{{.Message.Text}}</p><p>@{{.Message.User.Username}}</p><p>{{.LikeCount}} likes</p></article>
</body></html>{{end}}
`))

// render writes a page with a 200 status. It drains the session's flash
// messages into the page data, which also persists their removal, so the
// session cookie must be saved before the body is written.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	session, _ := s.sessions.Get(r, sessionName)
	data["Flashes"] = session.Flashes()
	if err := session.Save(r, w); err != nil {
		errs.LogError(r, err)
	}
	if user := getUser(r.Context()); user != nil {
		data["CurrentUser"] = user
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		errs.LogError(r, err)
	}
}
