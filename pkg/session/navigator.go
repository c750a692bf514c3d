package session

import "sync"

// Routes known to the client.
const (
	RouteLanding         = "/"
	RouteLogin           = "/login"
	RouteRegister        = "/register"
	RouteRegisterSuccess = "/register-success"
	RouteTransactions    = "/transactions"
	RouteGoals           = "/goals"
	RouteCategories      = "/categories"
	RouteSettings        = "/settings"
)

var publicRoutes = map[string]struct{}{
	RouteLanding:         {},
	RouteLogin:           {},
	RouteRegister:        {},
	RouteRegisterSuccess: {},
}

// IsPublic reports whether route is reachable without an authenticated session.
func IsPublic(route string) bool {
	_, ok := publicRoutes[route]
	return ok
}

// Navigator moves the user between routes of whatever front-end drives the client.
type Navigator interface {
	CurrentRoute() string
	RedirectTo(route string)
}

// Router is a Navigator that tracks the current route and hands redirects
// to an optional callback. It is safe for concurrent use.
type Router struct {
	mu         sync.Mutex
	current    string
	onRedirect func(route string)
}

// NewRouter creates a router positioned at start.
func NewRouter(start string) *Router {
	return &Router{current: start}
}

// OnRedirect registers fn to be called after every RedirectTo.
func (r *Router) OnRedirect(fn func(route string)) {
	r.mu.Lock()
	r.onRedirect = fn
	r.mu.Unlock()
}

// Navigate records a user-initiated route change without firing the redirect hook.
func (r *Router) Navigate(route string) {
	r.mu.Lock()
	r.current = route
	r.mu.Unlock()
}

func (r *Router) CurrentRoute() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Router) RedirectTo(route string) {
	r.mu.Lock()
	r.current = route
	fn := r.onRedirect
	r.mu.Unlock()
	if fn != nil {
		fn(route)
	}
}
