package server

import (
	"html/template"
	"net/http"
)

// Diagnostic pages for the bootstrap flow. These are operator-facing, so
// they explain likely causes and link back to the start of the flow.

const pageStyle = `
    body { font-family: system-ui, -apple-system, sans-serif; max-width: 600px;
           margin: 50px auto; padding: 20px; background: #1a1a1a; color: #fff; }
    .banner { padding: 20px; border-radius: 8px; margin-bottom: 20px; }
    .error { background: #ff6b6b; }
    .warning { background: #ffa94d; }
    .success { background: #1db954; }
    .info { background: #2a2a2a; padding: 15px; border-radius: 8px; margin-top: 20px; }
    .token-box { background: #2a2a2a; padding: 15px; border-radius: 8px;
                 border: 2px solid #1db954; margin: 20px 0; word-break: break-all;
                 font-family: monospace; }
    code { background: #1a1a1a; padding: 2px 6px; border-radius: 4px; font-family: monospace; }
    pre { background: #1a1a1a; padding: 10px; border-radius: 4px; overflow-x: auto; }
    a { color: #1db954; }
    .button { display: inline-block; background: #1db954; color: white; padding: 12px 24px;
              border-radius: 8px; text-decoration: none; font-weight: bold; margin-top: 10px; }
`

type errorPageData struct {
	Error       string
	Description string
	RedirectURI string
}

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Spotify Authorization Error</title>
  <style>` + pageStyle + `</style>
</head>
<body>
  <div class="banner error">
    <h1>Spotify Authorization Error</h1>
    <p><strong>Error:</strong> {{.Error}}</p>
    {{if .Description}}<p><strong>Description:</strong> {{.Description}}</p>{{end}}
  </div>
  <div class="info">
    <h3>Common Issues:</h3>
    <ul>
      <li><strong>Redirect URI mismatch:</strong> Make sure your Spotify dashboard has exactly: <code>{{.RedirectURI}}</code></li>
      <li><strong>User cancelled:</strong> If you clicked "Cancel" on Spotify, try again</li>
    </ul>
    <p><a href="/api/spotify/auth">Try again</a></p>
  </div>
</body>
</html>
`))

type noCodePageData struct {
	RequestURL  string
	RedirectURI string
	Params      map[string]string
}

var noCodePage = template.Must(template.New("nocode").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Spotify Authorization - No Code</title>
  <style>` + pageStyle + `</style>
</head>
<body>
  <div class="banner warning">
    <h1>No Authorization Code Received</h1>
    <p>Spotify redirected here but didn't include an authorization code. This can happen if:</p>
    <ul>
      <li>You accessed this URL directly (you need to start from the auth endpoint)</li>
      <li>You didn't click "Agree" on the Spotify authorization page</li>
      <li>The redirect URI in your Spotify dashboard doesn't match exactly</li>
    </ul>
  </div>
  <div class="info">
    <h3>Debug Info:</h3>
    <p><strong>Request URL:</strong> <code>{{.RequestURL}}</code></p>
    <p><strong>Expected Redirect URI:</strong> <code>{{.RedirectURI}}</code></p>
    <p><strong>URL Parameters:</strong></p>
    <pre>{{range $key, $value := .Params}}{{$key}}={{$value}}
{{else}}(none){{end}}</pre>
  </div>
  <div class="info">
    <h3>How to Fix:</h3>
    <ol>
      <li>Start the flow from the auth endpoint instead of opening the callback directly:
        <br><a href="/api/spotify/auth" class="button">Start Authorization</a>
      </li>
      <li>On the Spotify page, click "Agree" (not Cancel)</li>
      <li>In the <a href="https://developer.spotify.com/dashboard" target="_blank">Spotify Developer Dashboard</a>,
        verify the app's Redirect URIs contain exactly <code>{{.RedirectURI}}</code></li>
    </ol>
  </div>
</body>
</html>
`))

type successPageData struct {
	RefreshToken string
	ClientID     string
}

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Spotify OAuth Success</title>
  <style>` + pageStyle + `</style>
</head>
<body>
  <div class="banner success">
    <h1>Spotify Authorization Successful!</h1>
  </div>

  <h2>Your Refresh Token:</h2>
  <div class="token-box">{{.RefreshToken}}</div>

  <div class="info">
    <h3>Next Steps:</h3>
    <ol>
      <li>Copy the refresh token above</li>
      <li>Add it to your configuration:</li>
      <pre>SPOTIFY_CLIENT_ID={{.ClientID}}
SPOTIFY_CLIENT_SECRET=&lt;your client secret&gt;
SPOTIFY_REFRESH_TOKEN={{.RefreshToken}}</pre>
      <li>Restart the server</li>
      <li>Visit the homepage to see the widget in action</li>
    </ol>
  </div>

  <p style="margin-top: 20px; color: #888;">
    <strong>Note:</strong> Keep your refresh token secret! Don't commit it to version control.
  </p>
</body>
</html>
`))

func renderError(w http.ResponseWriter, data errorPageData) {
	renderPage(w, errorPage, http.StatusBadRequest, data)
}

func renderNoCode(w http.ResponseWriter, data noCodePageData) {
	renderPage(w, noCodePage, http.StatusBadRequest, data)
}

func renderSuccess(w http.ResponseWriter, data successPageData) {
	renderPage(w, successPage, http.StatusOK, data)
}

func renderPage(w http.ResponseWriter, page *template.Template, status int, data any) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	page.Execute(w, data)
}
