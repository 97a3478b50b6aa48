package handlers

import (
	"html/template"
	"net/http"
)

// appPage is the client bootstrap shell. The query parameters carried by
// the preview redirect are surfaced to the client script, which runs the
// LINE login flow and calls the linkage endpoint.
var appPage = template.Must(template.New("app").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>公式LINE連携</title>
</head>
<body>
<main id="app" data-form="{{.Form}}" data-redirect="{{.Redirect}}" data-notify="{{.Notify}}">
<p>読み込み中...</p>
</main>
<script src="/static/app.js" defer></script>
</body>
</html>
`))

// AppRootHandler serves the app shell at "/".
type AppRootHandler struct{}

// NewAppRootHandler creates a new app root handler.
func NewAppRootHandler() *AppRootHandler {
	return &AppRootHandler{}
}

// ServeHTTP renders the shell with the incoming query parameters.
func (h *AppRootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := struct {
		Form     string
		Redirect string
		Notify   string
	}{
		Form:     q.Get("form"),
		Redirect: q.Get("redirect"),
		Notify:   q.Get("notify"),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := appPage.Execute(w, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
