// Package rest exposes the storefront as a headless JSON view: every request
// is translated into the same view-intent events a UI would emit.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/abgdnv/weblarek/internal/appstate"
	"github.com/abgdnv/weblarek/internal/config"
	"github.com/abgdnv/weblarek/internal/domain"
	"github.com/abgdnv/weblarek/internal/event"
	"github.com/abgdnv/weblarek/internal/larekapi"
	"github.com/abgdnv/weblarek/internal/platform/web"
	"github.com/abgdnv/weblarek/internal/presenter"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker/v2"
)

type PaymentRequest struct {
	Payment string `json:"payment" validate:"required,oneof=online card cash"`
}

type FieldRequest struct {
	Value string `json:"value" validate:"max=256"`
}

type BasketResponse struct {
	Items []*domain.Product `json:"items"`
	Total int64             `json:"total"`
	Count int               `json:"count"`
}

type FormResponse struct {
	Valid  bool              `json:"valid"`
	Errors domain.FormErrors `json:"errors"`
}

type OrderResponse struct {
	Order  domain.Order      `json:"order"`
	Errors domain.FormErrors `json:"errors"`
}

// API serves the storefront over HTTP. The event bus and AppState are
// single-threaded, so mu serializes every request that touches them.
type API struct {
	mu        sync.Mutex
	bus       *event.Bus
	state     *appstate.AppState
	presenter *presenter.Presenter
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewAPI(bus *event.Bus, state *appstate.AppState, p *presenter.Presenter, logger *slog.Logger) *API {
	return &API{
		bus:       bus,
		state:     state,
		presenter: p,
		validate:  validator.New(),
		logger:    logger.With("component", "rest"),
	}
}

// Routes builds the router with the shared middleware stack.
func (a *API) Routes() *chi.Mux {
	mux := web.NewRouter(a.logger)
	mux.Get("/healthz", a.HealthCheckHandler)
	mux.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", a.CatalogGet)
		r.Post("/catalog/reload", a.CatalogReload)
		r.Post("/catalog/{id}/select", a.CatalogSelect)
		r.Get("/preview", a.PreviewGet)

		r.Get("/basket", a.BasketGet)
		r.Post("/basket/{id}", a.productIntent(presenter.EventItemAdd))
		r.Delete("/basket/{id}", a.productIntent(presenter.EventItemDelete))
		r.Post("/basket/{id}/toggle", a.productIntent(presenter.EventItemCheck))

		r.Get("/order", a.OrderGet)
		r.Post("/order/open", a.OrderOpen)
		r.Put("/order/payment", a.OrderPayment)
		r.Put("/order/delivery/{field}", a.fieldChange(appstate.FormDelivery, appstate.ValidDeliveryField))
		r.Post("/order/contacts", a.OrderContacts)
		r.Put("/order/contacts/{field}", a.fieldChange(appstate.FormContacts, appstate.ValidContactField))
		r.Post("/order/submit", a.OrderSubmit)
	})
	return mux
}

// NewServer wraps the routes in an http.Server configured from cfg.
func (a *API) NewServer(cfg config.HTTPConfig) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           a.Routes(),
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// HealthCheckHandler is a simple health check endpoint.
func (a *API) HealthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (a *API) CatalogGet(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	web.RespondJSON(w, a.logger, http.StatusOK, a.state.Catalog())
}

// CatalogReload fetches without holding the lock; only applying the result
// is serialized with other requests.
func (a *API) CatalogReload(w http.ResponseWriter, r *http.Request) {
	items, err := a.presenter.FetchCatalog(r.Context())
	if err != nil {
		a.respondBackendError(w, r, err, "Failed to load catalog")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.presenter.ApplyCatalog(r.Context(), items)
	web.RespondJSON(w, a.logger, http.StatusOK, a.state.Catalog())
}

func (a *API) CatalogSelect(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	product, ok := a.lookup(w, r)
	if !ok {
		return
	}
	a.bus.Emit(presenter.EventCardSelect, product)
	web.RespondJSON(w, a.logger, http.StatusOK, product)
}

func (a *API) PreviewGet(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.state.Preview()
	if !ok {
		web.RespondError(w, a.logger, http.StatusNotFound, "No product selected")
		return
	}
	product, err := a.presenter.Product(id)
	if err != nil {
		a.respondLookupError(w, r, id, err)
		return
	}
	web.RespondJSON(w, a.logger, http.StatusOK, product)
}

func (a *API) BasketGet(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.respondBasket(w)
}

func (a *API) OrderGet(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	web.RespondJSON(w, a.logger, http.StatusOK, OrderResponse{Order: a.state.Order(), Errors: a.state.FormErrors()})
}

func (a *API) OrderOpen(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Count() == 0 {
		web.RespondError(w, a.logger, http.StatusConflict, presenter.ErrEmptyBasket.Error())
		return
	}
	a.bus.Emit(presenter.EventOrderOpen, nil)
	web.RespondJSON(w, a.logger, http.StatusOK, a.state.Order())
}

func (a *API) OrderPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if !web.DecodeValid(w, r, a.logger, a.validate, &req) {
		return
	}
	method, _ := domain.ParsePaymentMethod(req.Payment)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.bus.Emit(presenter.EventPaymentChanged, method)
	web.RespondJSON(w, a.logger, http.StatusOK, a.state.Order())
}

func (a *API) OrderContacts(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bus.Emit(presenter.EventOrderSubmit, nil)
	web.RespondJSON(w, a.logger, http.StatusOK, a.state.Order())
}

// OrderSubmit holds the lock across the backend call: the basket must not
// change between capturing the order and clearing it on success.
func (a *API) OrderSubmit(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	result, err := a.presenter.Submit(r.Context())
	if err != nil {
		var invalid *presenter.InvalidOrderError
		switch {
		case errors.Is(err, presenter.ErrEmptyBasket):
			web.RespondError(w, a.logger, http.StatusConflict, err.Error())
		case errors.As(err, &invalid):
			web.RespondJSON(w, a.logger, http.StatusUnprocessableEntity, FormResponse{Valid: false, Errors: invalid.Errors})
		default:
			a.respondBackendError(w, r, err, "Failed to submit order")
		}
		return
	}
	web.RespondJSON(w, a.logger, http.StatusCreated, result)
}

// productIntent emits name with the catalog product addressed by {id} and
// answers with the resulting basket.
func (a *API) productIntent(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		product, ok := a.lookup(w, r)
		if !ok {
			return
		}
		a.bus.Emit(name, product)
		a.respondBasket(w)
	}
}

// fieldChange emits a FieldChange for form and answers with the form state
// produced by the validation pass it triggered.
func (a *API) fieldChange(form appstate.Form, known func(string) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		field := chi.URLParam(r, "field")
		if !known(field) {
			web.RespondError(w, a.logger, http.StatusNotFound, fmt.Sprintf("Unknown field %s", field))
			return
		}
		var req FieldRequest
		if !web.DecodeValid(w, r, a.logger, a.validate, &req) {
			return
		}
		if form == appstate.FormDelivery && field == string(appstate.DeliveryPayment) {
			method, ok := domain.ParsePaymentMethod(req.Value)
			if !ok {
				web.RespondError(w, a.logger, http.StatusBadRequest, fmt.Sprintf("Unknown payment method %s", req.Value))
				return
			}
			req.Value = string(method)
		}

		a.mu.Lock()
		defer a.mu.Unlock()
		appstate.FieldChange{Form: form, Field: field, Value: req.Value}.Emit(a.bus)
		errs := a.state.FormErrors()
		web.RespondJSON(w, a.logger, http.StatusOK, FormResponse{Valid: errs.Valid(), Errors: errs})
	}
}

func (a *API) lookup(w http.ResponseWriter, r *http.Request) (*domain.Product, bool) {
	id := chi.URLParam(r, "id")
	product, err := a.presenter.Product(id)
	if err != nil {
		a.respondLookupError(w, r, id, err)
		return nil, false
	}
	return product, true
}

func (a *API) respondLookupError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, presenter.ErrProductNotFound) {
		a.logger.WarnContext(r.Context(), "Product lookup failed", "id", id, "error", err)
		web.RespondError(w, a.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
		return
	}
	a.logger.ErrorContext(r.Context(), "Error looking up product", "id", id, "error", err)
	web.RespondError(w, a.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
}

func (a *API) respondBasket(w http.ResponseWriter) {
	items := a.state.Basket()
	web.RespondJSON(w, a.logger, http.StatusOK, BasketResponse{
		Items: items,
		Total: domain.Total(items),
		Count: len(items),
	})
}

// respondBackendError maps storefront API failures: an open breaker means the
// backend is known to be down, anything else is a bad gateway.
func (a *API) respondBackendError(w http.ResponseWriter, r *http.Request, err error, message string) {
	a.logger.ErrorContext(r.Context(), message, "error", err)
	var apiErr *larekapi.APIError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		web.RespondError(w, a.logger, http.StatusServiceUnavailable, message)
	case errors.As(err, &apiErr) && !apiErr.Temporary():
		web.RespondError(w, a.logger, http.StatusBadRequest, apiErr.Message)
	default:
		web.RespondError(w, a.logger, http.StatusBadGateway, message)
	}
}
