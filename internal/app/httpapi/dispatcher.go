package httpapi

import (
	"net/http"
	"sort"
	"strings"
	"time"

	app "github.com/wareledger/wareledger/internal/app"
	apperrors "github.com/wareledger/wareledger/internal/errors"
	"github.com/wareledger/wareledger/internal/httputil"
	"github.com/wareledger/wareledger/internal/logging"
	"github.com/wareledger/wareledger/internal/middleware"
	"github.com/wareledger/wareledger/internal/multipart"
)

// Options configures the dispatcher.
type Options struct {
	// StaticDir holds templates/ and static/style.css.
	StaticDir   string
	CompanyName string
	CompanyLogo string
	// MaxBodyBytes bounds POST and PUT bodies.
	MaxBodyBytes int64
	// Journal receives every write request; nil keeps a private one.
	Journal *Journal
	Logger  *logging.Logger
}

// operation serves one route. It writes the success response itself and
// returns errors for the dispatcher to render.
type operation func(w http.ResponseWriter, req *request) error

type route struct {
	method string
	path   string
	level  middleware.Level
	op     operation
}

// Dispatcher resolves a request to a site page or exactly one route,
// authorizes it, decodes its body and invokes the route's operation.
type Dispatcher struct {
	app     *app.Application
	auth    *middleware.Authorizer
	routes  map[string]map[string]route
	site    *site
	maxBody int64
	journal *Journal
	log     *logging.Logger
}

// NewDispatcher builds the dispatcher and its fixed route table.
func NewDispatcher(application *app.Application, opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = logging.NewDefault("httpapi")
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = httputil.DefaultMaxBodyBytes
	}
	if opts.Journal == nil {
		opts.Journal = NewJournal(0, nil)
	}

	d := &Dispatcher{
		app:     application,
		auth:    middleware.NewAuthorizer(application.Sessions, opts.Logger),
		routes:  make(map[string]map[string]route),
		site:    newSite(opts.StaticDir, opts.CompanyName, opts.CompanyLogo),
		maxBody: opts.MaxBodyBytes,
		journal: opts.Journal,
		log:     opts.Logger,
	}
	for _, rt := range d.routeTable() {
		if d.routes[rt.path] == nil {
			d.routes[rt.path] = make(map[string]route)
		}
		d.routes[rt.path][rt.method] = rt
	}
	return d
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && d.site.serve(w, r) {
		return
	}

	rt, params, err := d.match(r.Method, r.URL.Path)
	if err != nil {
		if se := apperrors.GetServiceError(err); se != nil && se.HTTPStatus == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", d.allowed(r.URL.Path))
		}
		httputil.WriteError(w, err)
		return
	}

	authed := r
	if isWrite(r.Method) {
		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		w = rec
		defer func(start time.Time) { d.remember(authed, rec.status, start) }(time.Now())
	}

	authed, err = d.auth.Authorize(r, rt.level)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req := &request{r: authed, query: authed.URL.Query(), params: params}
	switch r.Method {
	case http.MethodPost, http.MethodPut:
		data, err := httputil.ReadAllWithLimit(r.Body, d.maxBody)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		req.body = multipart.Decode(r.Header.Get("Content-Type"), data)
		if req.body.Outcome == multipart.Degenerate {
			d.log.WithContext(r.Context()).
				WithField("path", r.URL.Path).
				WithField("content_type", r.Header.Get("Content-Type")).
				Debug("request body ignored")
		}
	case http.MethodDelete:
		httputil.Drain(r.Body, d.maxBody)
		req.body = multipart.Decode("", nil)
	default:
		req.body = multipart.Decode("", nil)
	}

	if err := rt.op(w, req); err != nil {
		d.fail(w, req, err)
	}
}

// match finds the route for method and path. Unknown paths are 404, known
// paths with another method are 405.
func (d *Dispatcher) match(method, path string) (route, map[string]string, error) {
	if methods, ok := d.routes[path]; ok {
		if rt, ok := methods[method]; ok {
			return rt, nil, nil
		}
		return route{}, nil, apperrors.MethodNotAllowed(method)
	}
	if rest, ok := strings.CutPrefix(path, filePrefix); ok {
		if method != http.MethodGet {
			return route{}, nil, apperrors.MethodNotAllowed(method)
		}
		params, err := fileParams(rest)
		if err != nil {
			return route{}, nil, err
		}
		return d.fileRoute(), params, nil
	}
	return route{}, nil, apperrors.NotFound("Not Found")
}

func (d *Dispatcher) allowed(path string) string {
	if strings.HasPrefix(path, filePrefix) {
		return http.MethodGet
	}
	methods := make([]string, 0, len(d.routes[path]))
	for m := range d.routes[path] {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}

func (d *Dispatcher) fail(w http.ResponseWriter, req *request, err error) {
	entry := d.log.WithContext(req.ctx()).
		WithField("method", req.r.Method).
		WithField("path", req.r.URL.Path).
		WithError(err)
	if status := apperrors.HTTPStatus(err); status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	httputil.WriteError(w, err)
}

func (d *Dispatcher) remember(r *http.Request, status int, start time.Time) {
	entry := JournalEntry{
		Time:       start.UTC(),
		Method:     r.Method,
		Path:       r.URL.Path,
		Status:     status,
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	}
	if user, ok := middleware.SessionFrom(r.Context()); ok {
		entry.User = user.Username
		entry.Admin = user.Admin
	}
	if err := d.journal.Add(entry); err != nil {
		d.log.WithContext(r.Context()).WithError(err).Warn("request journal write failed")
	}
}

func isWrite(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodDelete
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (s *statusWriter) WriteHeader(code int) {
	if !s.written {
		s.status = code
		s.written = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusWriter) Write(b []byte) (int, error) {
	s.written = true
	return s.ResponseWriter.Write(b)
}
