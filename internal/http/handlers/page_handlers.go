package handlers

import (
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// StaticDirs are the asset directories served or redirected by Static
var StaticDirs = []string{"js", "img", "css", "data"}

// PageHandlers serves the demo page and its assets
type PageHandlers struct {
	applicationRoot string
	staticFolder    string
	staticBaseURL   *url.URL
}

// NewPageHandlers creates page handlers. staticBaseURL may be empty, in
// which case assets are served from staticFolder.
func NewPageHandlers(applicationRoot, staticFolder, staticBaseURL string) (*PageHandlers, error) {
	h := &PageHandlers{
		applicationRoot: strings.TrimRight(applicationRoot, "/"),
		staticFolder:    staticFolder,
	}
	if staticBaseURL != "" {
		base, err := url.Parse(staticBaseURL)
		if err != nil {
			return nil, err
		}
		h.staticBaseURL = base
	}
	return h, nil
}

// Hello answers a plain text liveness probe
func (h *PageHandlers) Hello(c *gin.Context) {
	c.String(http.StatusOK, "Hello! It worked!")
}

// Index renders the demo page
func (h *PageHandlers) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{})
}

// Static serves or redirects an asset under dir
func (h *PageHandlers) Static(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := path.Clean("/" + dir + "/" + c.Param("filepath"))[1:]
		if h.staticBaseURL != nil {
			c.Redirect(http.StatusFound, h.StaticURL(filename))
			return
		}
		if h.staticFolder == "" {
			c.Status(http.StatusNotFound)
			return
		}
		c.File(filepath.Join(h.staticFolder, filepath.FromSlash(filename)))
	}
}

// StaticURL resolves an asset name to the URL a browser should load it
// from. It is exposed to the page template as "static".
func (h *PageHandlers) StaticURL(filename string) string {
	if h.staticBaseURL != nil {
		return h.staticBaseURL.ResolveReference(&url.URL{Path: filename}).String()
	}
	return h.applicationRoot + "/" + strings.TrimLeft(filename, "/")
}
