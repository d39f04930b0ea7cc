package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/sync"
)

// ServerModel is the persistence model for a configured storefront server.
// The ordered field map is stored as a JSON document.
type ServerModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key"`
	Scope               string    `gorm:"type:varchar(40);not null;uniqueIndex:idx_sync_servers_scope"`
	BaseURL             string    `gorm:"type:varchar(255);not null"`
	ConsumerKey         string    `gorm:"type:varchar(255);not null"`
	ConsumerSecret      string    `gorm:"type:varchar(255);not null"`
	EnableSync          bool      `gorm:"not null;default:false"`
	EnableImageSync     bool      `gorm:"not null;default:false"`
	EnablePriceListSync bool      `gorm:"not null;default:false"`
	PriceList           string    `gorm:"type:varchar(140)"`
	FieldMapJSON        string    `gorm:"type:jsonb;column:field_map"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ServerModel) TableName() string {
	return "sync_servers"
}

// ToDomain converts the persistence model to a domain Server.
func (m *ServerModel) ToDomain() *sync.Server {
	server := &sync.Server{
		ID:                  m.ID,
		Scope:               m.Scope,
		BaseURL:             m.BaseURL,
		ConsumerKey:         m.ConsumerKey,
		ConsumerSecret:      m.ConsumerSecret,
		EnableSync:          m.EnableSync,
		EnableImageSync:     m.EnableImageSync,
		EnablePriceListSync: m.EnablePriceListSync,
		PriceList:           m.PriceList,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	unmarshalColumn(m.FieldMapJSON, &server.FieldMap)
	return server
}

// FromDomain populates the persistence model from a domain Server.
func (m *ServerModel) FromDomain(server *sync.Server) {
	m.ID = server.ID
	m.Scope = server.Scope
	m.BaseURL = server.BaseURL
	m.ConsumerKey = server.ConsumerKey
	m.ConsumerSecret = server.ConsumerSecret
	m.EnableSync = server.EnableSync
	m.EnableImageSync = server.EnableImageSync
	m.EnablePriceListSync = server.EnablePriceListSync
	m.PriceList = server.PriceList
	m.FieldMapJSON = marshalColumn(server.FieldMap)
	m.CreatedAt = server.CreatedAt
	m.UpdatedAt = server.UpdatedAt
}

// SyncLinkModel is the persistence model for an item ↔ remote product link.
type SyncLinkModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	ItemCode       string    `gorm:"type:varchar(140);not null;uniqueIndex:idx_sync_links_item_server,priority:1;index:idx_sync_links_item"`
	ServerID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sync_links_item_server,priority:2;index:idx_sync_links_remote,priority:1"`
	RemoteID       string    `gorm:"type:varchar(100);index:idx_sync_links_remote,priority:2"`
	Enabled        bool      `gorm:"not null;default:true"`
	LastSyncMarker string    `gorm:"type:varchar(64)"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncLinkModel) TableName() string {
	return "sync_links"
}

// ToDomain converts the persistence model to a domain Link.
func (m *SyncLinkModel) ToDomain() *sync.Link {
	return &sync.Link{
		ID:             m.ID,
		ItemCode:       m.ItemCode,
		ServerID:       m.ServerID,
		RemoteID:       m.RemoteID,
		Enabled:        m.Enabled,
		LastSyncMarker: m.LastSyncMarker,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Link.
func (m *SyncLinkModel) FromDomain(link *sync.Link) {
	m.ID = link.ID
	m.ItemCode = link.ItemCode
	m.ServerID = link.ServerID
	m.RemoteID = link.RemoteID
	m.Enabled = link.Enabled
	m.LastSyncMarker = link.LastSyncMarker
	m.CreatedAt = link.CreatedAt
	m.UpdatedAt = link.UpdatedAt
}
