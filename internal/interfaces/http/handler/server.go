package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	syncdomain "github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// ServerHandler handles storefront server configuration HTTP requests
type ServerHandler struct {
	BaseHandler
	servers syncdomain.ServerRepository
}

// NewServerHandler creates a new server handler
func NewServerHandler(servers syncdomain.ServerRepository) *ServerHandler {
	return &ServerHandler{servers: servers}
}

// RegisterRoutes registers server configuration routes
func (h *ServerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/servers")
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PUT("/:id", h.Update)
	}
}

// FieldMappingDTO is one configured field projection
type FieldMappingDTO struct {
	LocalField string `json:"local_field" binding:"required"`
	RemotePath string `json:"remote_path" binding:"required"`
}

// ServerRequest creates or updates a server configuration. Credentials are
// write-only; responses never echo them.
type ServerRequest struct {
	Scope               string            `json:"scope" binding:"required"`
	BaseURL             string            `json:"base_url" binding:"required,url"`
	ConsumerKey         string            `json:"consumer_key"`
	ConsumerSecret      string            `json:"consumer_secret"`
	EnableSync          bool              `json:"enable_sync"`
	EnableImageSync     bool              `json:"enable_image_sync"`
	EnablePriceListSync bool              `json:"enable_price_list_sync"`
	PriceList           string            `json:"price_list"`
	FieldMap            []FieldMappingDTO `json:"field_map"`
}

// ServerResponse is a server configuration without credentials
type ServerResponse struct {
	ID                  string            `json:"id"`
	Scope               string            `json:"scope"`
	BaseURL             string            `json:"base_url"`
	EnableSync          bool              `json:"enable_sync"`
	EnableImageSync     bool              `json:"enable_image_sync"`
	EnablePriceListSync bool              `json:"enable_price_list_sync"`
	PriceList           string            `json:"price_list"`
	FieldMap            []FieldMappingDTO `json:"field_map"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

func toServerResponse(server *syncdomain.Server) ServerResponse {
	resp := ServerResponse{
		ID:                  server.ID.String(),
		Scope:               server.Scope,
		BaseURL:             server.BaseURL,
		EnableSync:          server.EnableSync,
		EnableImageSync:     server.EnableImageSync,
		EnablePriceListSync: server.EnablePriceListSync,
		PriceList:           server.PriceList,
		CreatedAt:           server.CreatedAt,
		UpdatedAt:           server.UpdatedAt,
	}
	for _, m := range server.FieldMap {
		resp.FieldMap = append(resp.FieldMap, FieldMappingDTO{
			LocalField: m.LocalField,
			RemotePath: m.RemotePath,
		})
	}
	return resp
}

// List returns all configured servers
func (h *ServerHandler) List(c *gin.Context) {
	servers, err := h.servers.List(c.Request.Context(), false)
	if err != nil {
		h.InternalError(c, err.Error())
		return
	}

	out := make([]ServerResponse, 0, len(servers))
	for i := range servers {
		out = append(out, toServerResponse(&servers[i]))
	}
	h.Success(c, out)
}

// Get returns one server configuration
func (h *ServerHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid server ID")
		return
	}

	server, err := h.servers.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, syncdomain.ErrServerNotFound) {
			h.NotFound(c, err.Error())
			return
		}
		h.InternalError(c, err.Error())
		return
	}
	h.Success(c, toServerResponse(server))
}

// Create registers a new storefront server
func (h *ServerHandler) Create(c *gin.Context) {
	var req ServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	if _, err := h.servers.GetByScope(c.Request.Context(), req.Scope); err == nil {
		h.Conflict(c, "a server with this scope already exists")
		return
	} else if !errors.Is(err, syncdomain.ErrServerNotFound) {
		h.InternalError(c, err.Error())
		return
	}

	now := time.Now()
	server := &syncdomain.Server{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyServerRequest(server, &req)

	if err := h.saveServer(c, server); err != nil {
		return
	}
	h.Created(c, toServerResponse(server))
}

// Update modifies an existing server configuration. Blank credentials keep
// the stored values.
func (h *ServerHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid server ID")
		return
	}

	var req ServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	server, err := h.servers.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, syncdomain.ErrServerNotFound) {
			h.NotFound(c, err.Error())
			return
		}
		h.InternalError(c, err.Error())
		return
	}

	applyServerRequest(server, &req)
	server.UpdatedAt = time.Now()

	if err := h.saveServer(c, server); err != nil {
		return
	}
	h.Success(c, toServerResponse(server))
}

func applyServerRequest(server *syncdomain.Server, req *ServerRequest) {
	server.Scope = req.Scope
	server.BaseURL = req.BaseURL
	if req.ConsumerKey != "" {
		server.ConsumerKey = req.ConsumerKey
	}
	if req.ConsumerSecret != "" {
		server.ConsumerSecret = req.ConsumerSecret
	}
	server.EnableSync = req.EnableSync
	server.EnableImageSync = req.EnableImageSync
	server.EnablePriceListSync = req.EnablePriceListSync
	server.PriceList = req.PriceList

	server.FieldMap = server.FieldMap[:0]
	for _, m := range req.FieldMap {
		server.FieldMap = append(server.FieldMap, syncdomain.FieldMapping{
			LocalField: m.LocalField,
			RemotePath: m.RemotePath,
		})
	}
}

// saveServer persists the server, translating validation failures. It
// writes the error response itself and reports whether one was written.
func (h *ServerHandler) saveServer(c *gin.Context, server *syncdomain.Server) error {
	err := h.servers.Save(c.Request.Context(), server)
	if err == nil {
		return nil
	}
	if errors.Is(err, syncdomain.ErrInvalidRecordID) {
		h.Error(c, 400, dto.ErrCodeValidationFormat,
			"scope must be non-empty and must not contain ':'")
		return err
	}
	h.InternalError(c, err.Error())
	return err
}
