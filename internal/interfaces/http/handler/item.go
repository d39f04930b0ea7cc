package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storesync/backend/internal/domain/catalog"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// ItemHandler handles catalog item HTTP requests
type ItemHandler struct {
	BaseHandler
	items catalog.ItemRepository
	links syncdomain.LinkRepository
}

// NewItemHandler creates a new item handler
func NewItemHandler(items catalog.ItemRepository, links syncdomain.LinkRepository) *ItemHandler {
	return &ItemHandler{items: items, links: links}
}

// RegisterRoutes registers item routes
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/items")
	{
		group.GET("", h.List)
		group.GET("/:code", h.Get)
		group.GET("/:code/links", h.ListLinks)
	}
}

// ItemListRequest filters the item listing
type ItemListRequest struct {
	ModifiedSince string `form:"modified_since"`
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// ItemSummary is the list representation of an item
type ItemSummary struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	IsBundle    bool      `json:"is_bundle"`
	DisableSync bool      `json:"disable_sync"`
	Modified    time.Time `json:"modified"`
}

// List returns items, optionally restricted to those modified after a
// given RFC3339 timestamp.
func (h *ItemHandler) List(c *gin.Context) {
	var req ItemListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := catalog.ItemFilter{Limit: req.Limit}
	if req.ModifiedSince != "" {
		since, err := time.Parse(time.RFC3339, req.ModifiedSince)
		if err != nil {
			h.Error(c, 400, dto.ErrCodeValidationFormat,
				"modified_since must be an RFC3339 timestamp")
			return
		}
		filter.ModifiedSince = &since
	}

	items, err := h.items.List(c.Request.Context(), filter)
	if err != nil {
		h.InternalError(c, err.Error())
		return
	}

	out := make([]ItemSummary, 0, len(items))
	for _, item := range items {
		out = append(out, ItemSummary{
			Code:        item.Code,
			Name:        item.Name,
			IsBundle:    item.IsBundle,
			DisableSync: item.DisableSync,
			Modified:    item.Modified,
		})
	}
	h.Success(c, out)
}

// Get returns one item with all child collections
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.items.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			h.NotFound(c, err.Error())
			return
		}
		if errors.Is(err, catalog.ErrItemInvalidCode) {
			h.BadRequest(c, err.Error())
			return
		}
		h.InternalError(c, err.Error())
		return
	}
	h.Success(c, item)
}

// LinkResponse is one item-to-storefront link
type LinkResponse struct {
	ID             string `json:"id"`
	ServerID       string `json:"server_id"`
	RemoteID       string `json:"remote_id,omitempty"`
	Enabled        bool   `json:"enabled"`
	LastSyncMarker string `json:"last_sync_marker,omitempty"`
}

// ListLinks returns the sync links of an item across servers
func (h *ItemHandler) ListLinks(c *gin.Context) {
	links, err := h.links.ListByItem(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.InternalError(c, err.Error())
		return
	}

	out := make([]LinkResponse, 0, len(links))
	for _, link := range links {
		out = append(out, LinkResponse{
			ID:             link.ID.String(),
			ServerID:       link.ServerID.String(),
			RemoteID:       link.RemoteID,
			Enabled:        link.Enabled,
			LastSyncMarker: link.LastSyncMarker,
		})
	}
	h.Success(c, out)
}
