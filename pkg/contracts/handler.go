package contracts

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Handler is implemented by every HTTP handler group a service mounts.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the first middleware sees the request first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
