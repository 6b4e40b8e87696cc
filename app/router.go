package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (app *application) routes() http.Handler {
	router := chi.NewRouter()

	router.NotFound(app.notFoundErrorResponse)
	router.MethodNotAllowed(app.methodNotAllowedErrorResponse)

	router.Get("/v1/healthcheck", app.healthCheckHandler)

	// auth
	router.Post("/v1/auth/signup", app.signupUserHandler)
	router.Post("/v1/auth/signin", app.signinUserHandler)
	router.Post("/v1/auth/logout", app.requireAuthUser(app.logoutUserHandler))
	router.Get("/v1/auth/me", app.requireAuthUser(app.meUserHandler))

	// blogs. The static my-blogs segment must win over the {id} parameter,
	// which chi guarantees by routing static segments first.
	router.Get("/v1/blogs", app.listPublishedBlogsHandler)
	router.Post("/v1/blogs", app.requireAuthUser(app.createBlogHandler))
	router.Get("/v1/blogs/my-blogs", app.requireAuthUser(app.myBlogsHandler))
	router.Get("/v1/blogs/{id}", app.getBlogHandler)
	router.Put("/v1/blogs/{id}", app.requireBlogOwner(app.updateBlogHandler))
	router.Patch("/v1/blogs/{id}/state", app.requireBlogOwner(app.updateBlogStateHandler))
	router.Delete("/v1/blogs/{id}", app.requireBlogOwner(app.deleteBlogHandler))

	return app.recoverPanic(app.logRequest(app.rateLimit(app.authenticate(router))))
}
