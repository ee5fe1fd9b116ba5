package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/logging"
	"github.com/iliyamo/store-rating/internal/metrics"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/queue"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/service"
)

// publishTimeout bounds the best-effort event publish after a rating.
const publishTimeout = 2 * time.Second

// StoreHandler serves the store listing, store creation, rating submission
// and the owner dashboard.
type StoreHandler struct {
	Stores    *repository.StoreRepo
	Ratings   *repository.RatingRepo
	Dashboard *repository.DashboardRepo
	Events    service.EventPublisher
}

func NewStoreHandler(stores *repository.StoreRepo, ratings *repository.RatingRepo, dash *repository.DashboardRepo, events service.EventPublisher) *StoreHandler {
	if events == nil {
		events = service.NopPublisher{}
	}
	return &StoreHandler{Stores: stores, Ratings: ratings, Dashboard: dash, Events: events}
}

type createStoreReq struct {
	Name    string  `json:"name" validate:"required,max=255"`
	Address string  `json:"address" validate:"max=400"`
	OwnerID *uint64 `json:"owner_id"`
}

type storeResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	OwnerID   *uint64   `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newStoreResp(s model.Store) storeResp {
	out := storeResp{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt}
	if s.Address.Valid {
		a := s.Address.String
		out.Address = &a
	}
	if s.OwnerID.Valid {
		id := uint64(s.OwnerID.Int64)
		out.OwnerID = &id
	}
	return out
}

type rateReq struct {
	Rating *int `json:"rating" validate:"required,min=1,max=5"`
}

type ratingResp struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	StoreID   uint64    `json:"store_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List returns every store matching the name/address filters, sorted as
// requested, with the caller's own rating attached.
func (h *StoreHandler) List(c echo.Context) error {
	q := repository.StoreQuery{
		Name:      c.QueryParam("name"),
		Address:   c.QueryParam("address"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
		UserID:    middleware.UserID(c),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Stores.List(ctx, q)
	if err != nil {
		return serverError(c, "list stores", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Create adds a store.  owner_id may be omitted or null; when present it must
// reference an existing user of any role.
func (h *StoreHandler) Create(c echo.Context) error {
	var req createStoreReq
	if msg, ok := bindAndValidate(c, &req, func() {
		req.Name = strings.TrimSpace(req.Name)
		req.Address = strings.TrimSpace(req.Address)
	}); !ok {
		return badRequest(c, msg)
	}
	if req.OwnerID != nil && *req.OwnerID == 0 {
		return badRequest(c, "owner_id must be a positive integer")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Stores.Create(ctx, repository.NewStore{Name: req.Name, Address: req.Address, OwnerID: req.OwnerID})
	if err != nil {
		if errors.Is(err, repository.ErrUnknownReference) {
			return badRequest(c, "owner_id does not reference an existing user")
		}
		return serverError(c, "create store", err)
	}
	return c.JSON(http.StatusCreated, newStoreResp(s))
}

// Rate stores the caller's rating of a store, replacing any earlier one.
// Invalid input is rejected before any storage call.
func (h *StoreHandler) Rate(c echo.Context) error {
	storeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || storeID == 0 {
		return badRequest(c, "store id must be a positive integer")
	}
	var req rateReq
	if msg, ok := bindAndValidate(c, &req, nil); !ok {
		return badRequest(c, msg)
	}
	userID := middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	r, err := h.Ratings.Upsert(ctx, userID, storeID, *req.Rating)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownReference) {
			return notFound(c, "store not found")
		}
		return serverError(c, "upsert rating", err)
	}
	metrics.RatingsSubmitted.Inc()
	h.publish(c, queue.RatingSubmittedEvent{
		RatingID:    r.ID,
		UserID:      r.UserID,
		StoreID:     r.StoreID,
		Rating:      r.Value,
		SubmittedAt: r.UpdatedAt,
	})

	return c.JSON(http.StatusCreated, ratingResp{
		ID:        r.ID,
		UserID:    r.UserID,
		StoreID:   r.StoreID,
		Rating:    r.Value,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	})
}

func (h *StoreHandler) publish(c echo.Context, ev queue.RatingSubmittedEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), publishTimeout)
	defer cancel()
	if err := h.Events.PublishRatingSubmitted(ctx, ev); err != nil {
		metrics.EventPublishFailures.Inc()
		logging.From(c).WithError(err).WithField("store_id", ev.StoreID).Warn("publish rating event failed")
	}
}

type ownerDashboardResp struct {
	Store struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	} `json:"store"`
	AverageRating string             `json:"averageRating"`
	UsersWhoRated []repository.Rater `json:"usersWhoRated"`
}

// OwnerDashboard summarizes the caller's store: its average rating as a
// two-decimal string and everyone who rated it.
func (h *StoreHandler) OwnerDashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Stores.OwnedBy(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "no store assigned to this owner")
		}
		return serverError(c, "load owned store", err)
	}
	fb, err := h.Dashboard.Feedback(ctx, s.ID)
	if err != nil {
		return serverError(c, "load store feedback", err)
	}

	var resp ownerDashboardResp
	resp.Store.ID = s.ID
	resp.Store.Name = s.Name
	resp.AverageRating = fmt.Sprintf("%.2f", fb.Average)
	resp.UsersWhoRated = fb.Raters
	return c.JSON(http.StatusOK, resp)
}
