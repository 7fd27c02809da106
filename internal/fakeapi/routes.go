package fakeapi

import (
	"net/http"

	"github.com/atinyakov/familycart/internal/middleware"
	"github.com/atinyakov/familycart/internal/validation"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BasePath is the prefix every route is mounted under.
const BasePath = "/api/v1"

// Handler serves the emulated endpoints from a Store.
type Handler struct {
	Store *Store

	validate *validation.Validator
}

// NewRouter constructs the emulator's HTTP handler.
//
// Routes (under /api/v1):
//
//	POST   /user/login                   public
//	POST   /user/signup                  public
//	GET    /user/verify_otp              public
//	GET    /user/resend_mail             public
//	GET    /user/profile                 bearer
//	PATCH  /user/profile                 bearer
//	POST   /family/join                  bearer
//	GET    /family/list                  bearer
//	GET    /grocery/grocery-lists/       bearer, limit/offset
//	POST   /grocery/grocery-lists/       bearer
//	GET    /grocery/grocery-lists/{id}/  bearer
//	PATCH  /grocery/grocery-lists/{id}/  bearer
//	DELETE /grocery/grocery-lists/{id}/  bearer
//	GET    /grocery/grocery-items/       bearer, ?grocery_list_id, page number
//	POST   /grocery/grocery-items/       bearer, ?grocery_list_id
//	PATCH  /grocery/grocery-items/{id}/  bearer
//	DELETE /grocery/grocery-items/{id}/  bearer
func NewRouter(store *Store, logger *zap.Logger) http.Handler {
	h := &Handler{Store: store, validate: validation.New()}

	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType(
		"application/json",
		"multipart/form-data",
		"application/x-www-form-urlencoded",
	))
	r.Use(middleware.WithRequestLogging(logger))

	r.Route(BasePath, func(r chi.Router) {
		r.Post("/user/login", h.Login)
		r.Post("/user/signup", h.Signup)
		r.Get("/user/verify_otp", h.VerifyOTP)
		r.Get("/user/resend_mail", h.ResendMail)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(store.ValidateToken))

			r.Get("/user/profile", h.Profile)
			r.Patch("/user/profile", h.UpdateProfile)

			r.Post("/family/join", h.JoinFamily)
			r.Get("/family/list", h.Families)

			r.Get("/grocery/grocery-lists/", h.ListGroceryLists)
			r.Post("/grocery/grocery-lists/", h.CreateGroceryList)
			r.Get("/grocery/grocery-lists/{id}/", h.GetGroceryList)
			r.Patch("/grocery/grocery-lists/{id}/", h.UpdateGroceryList)
			r.Delete("/grocery/grocery-lists/{id}/", h.DeleteGroceryList)

			r.Get("/grocery/grocery-items/", h.ListGroceryItems)
			r.Post("/grocery/grocery-items/", h.CreateGroceryItem)
			r.Patch("/grocery/grocery-items/{id}/", h.UpdateGroceryItem)
			r.Delete("/grocery/grocery-items/{id}/", h.DeleteGroceryItem)
		})
	})

	return r
}
