// Package server provides HTTP routing, middleware, and an in-memory mock of the video backend.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Mock Backend
//
// [MockBackend] implements the backend's HTTP contract in memory: password-grant login, registration,
// token verification, video generation, the public gallery and media streaming. Errors use the
// FastAPI body shape {"detail": ...}. Generations start in "processing" and complete after a
// configurable delay measured on a clockwork.Clock, so tests can advance time explicitly.
//
// [MockBackend.Fail] injects a canned error for a path, which is how client tests exercise
// failure handling against a realistic server.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
