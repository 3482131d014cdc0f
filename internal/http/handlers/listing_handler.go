package handlers

import (
	"github.com/gofiber/fiber/v2"

	"petcare/internal/log"
	"petcare/internal/services"
)

const maxSearchResults = 50

type ListingHandler struct {
	Listings  *services.ListingService
	ReviewSvc *services.ReviewService
}

func (h *ListingHandler) Search(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	out, err := h.Listings.Search(c.UserContext(), c.Query("q"), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *ListingHandler) Get(c *fiber.Ctx) error {
	l, err := h.Listings.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(l)
}

func (h *ListingHandler) Availability(c *fiber.Ctx) error {
	a, err := h.Listings.Availability(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(a)
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	var in services.ListingInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	l, err := h.Listings.Create(c.UserContext(), scope(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "listing.create", map[string]any{"listing": l.ID, "seller": l.SellerID})
	return c.Status(fiber.StatusCreated).JSON(l)
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	var in services.ListingInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	l, err := h.Listings.Update(c.UserContext(), scope(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "listing.update", map[string]any{"listing": l.ID})
	return c.JSON(l)
}

func (h *ListingHandler) Submit(c *fiber.Ctx) error {
	l, err := h.Listings.SubmitForReview(c.UserContext(), scope(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "listing.submit", map[string]any{"listing": l.ID})
	return c.JSON(l)
}

func (h *ListingHandler) Approve(c *fiber.Ctx) error {
	l, err := h.Listings.Approve(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.listing.approve", map[string]any{"listing": l.ID})
	return c.JSON(l)
}

func (h *ListingHandler) Reject(c *fiber.Ctx) error {
	l, err := h.Listings.Reject(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.listing.reject", map[string]any{"listing": l.ID})
	return c.JSON(l)
}

func (h *ListingHandler) Reviews(c *fiber.Ctx) error {
	out, err := h.ReviewSvc.ListForListing(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *ListingHandler) Review(c *fiber.Ctx) error {
	var in services.ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	r, err := h.ReviewSvc.CreateListingReview(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

type publishBody struct {
	Published bool `json:"published"`
}

func (h *ListingHandler) Publish(c *fiber.Ctx) error {
	var in publishBody
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	r, err := h.ReviewSvc.SetPublished(c.UserContext(), c.Params("id"), in.Published)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.review.publish", map[string]any{"review": r.ID, "published": in.Published})
	return c.JSON(r)
}
