package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every route group mounted by pkg/app.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
