package twin

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Paths of the portal and its login page.
const (
	PortalPath      = "/apps/case-keeper"
	PortalCasesPath = "/apps/case-keeper/cases"
	LoginPath       = "/login"
	sessionCookie   = "CASE_KEEPER_SESSION"
)

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form id="kc-form-login" action="{{.Action}}" method="post">
  <input type="hidden" name="redirect" value="{{.Redirect}}">
  <input id="username" name="username" type="text" autofocus>
  <input id="password" name="password" type="password">
  <button type="submit" name="login" value="Sign In">Sign In</button>
</form>
</body>
</html>
`))

var casesPage = template.Must(template.New("cases").Parse(`<!DOCTYPE html>
<html><head><title>Cases</title></head><body><h1>Cases of {{.}}</h1></body></html>
`))

func (t *Twin) loginRoutes(r chi.Router) {
	r.Get(PortalPath, t.Portal)
	r.Get(PortalCasesPath, t.PortalCases)
	r.Get(LoginPath, t.LoginPage)
	r.Post(LoginPath, t.Authenticate)
}

func (t *Twin) signedIn(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	return t.store.session(c.Value)
}

// Portal handles GET /apps/case-keeper.
func (t *Twin) Portal(w http.ResponseWriter, r *http.Request) {
	if _, ok := t.signedIn(r); ok {
		http.Redirect(w, r, PortalCasesPath, http.StatusFound)
		return
	}
	http.Redirect(w, r, LoginPath+"?redirect="+PortalCasesPath, http.StatusFound)
}

// PortalCases handles GET /apps/case-keeper/cases.
func (t *Twin) PortalCases(w http.ResponseWriter, r *http.Request) {
	user, ok := t.signedIn(r)
	if !ok {
		http.Redirect(w, r, LoginPath+"?redirect="+PortalCasesPath, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = casesPage.Execute(w, user)
}

type loginPageData struct {
	Action   string
	Redirect string
	Error    string
}

// LoginPage handles GET /login.
func (t *Twin) LoginPage(w http.ResponseWriter, r *http.Request) {
	t.renderLogin(w, http.StatusOK, loginPageData{
		Action:   LoginPath,
		Redirect: r.URL.Query().Get("redirect"),
	})
}

// Authenticate handles POST /login.
// Invalid credentials render the login page again.
func (t *Twin) Authenticate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	redirect := r.PostForm.Get("redirect")
	if redirect == "" || redirect[0] != '/' {
		redirect = PortalCasesPath
	}
	user := r.PostForm.Get("username")
	if t.opts.Username == "" || user != t.opts.Username || r.PostForm.Get("password") != t.opts.Password {
		t.renderLogin(w, http.StatusOK, loginPageData{
			Action:   LoginPath,
			Redirect: redirect,
			Error:    "Invalid username or password.",
		})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    t.store.addSession(user),
		Path:     "/",
		Expires:  t.now().Add(t.opts.TokenTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (t *Twin) renderLogin(w http.ResponseWriter, status int, data loginPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = loginPage.Execute(w, data)
}
