package server

import (
	"net/http"
	"strings"
)

// Route is one registered method and path pattern. Method is "*" for a [Handler].
type Route struct {
	Method string
	Path   string
}

func (r Route) String() string {
	return r.Method + " " + r.Path
}

// BasicRouter is a [Router] over [http.ServeMux] that answers wrong methods and unknown
// paths with FastAPI shaped errors.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	routes      []Route
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware. Only routes registered afterwards are wrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for method on path. Other methods get a 405 with an Allow header.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	method = strings.ToUpper(method)
	r.mux.Handle(path, r.Apply(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.Header().Set("Allow", method)
			writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
			return
		}
		handler.ServeHTTP(w, req)
	})))
	r.routes = append(r.routes, Route{Method: method, Path: path})
}

// Handler registers every pattern from [Handler.Routes] for any method.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)
	for _, path := range handler.Routes() {
		r.mux.Handle(path, wrapped)
		r.routes = append(r.routes, Route{Method: "*", Path: path})
	}
}

// Routes lists registrations in the order they were made.
func (r *BasicRouter) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler so the first middleware added is the outermost.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}
	return handler
}
