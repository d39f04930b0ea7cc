package models

import (
	"github.com/storesync/backend/internal/domain/catalog"
)

// BundleDefinitionModel is the persistence model for bundle definitions.
// Member rows are stored as a JSON document because definition order is
// significant and members are never queried on their own.
type BundleDefinitionModel struct {
	ParentCode   string `gorm:"type:varchar(140);primary_key"`
	Description  string `gorm:"type:varchar(255)"`
	ChildrenJSON string `gorm:"type:jsonb;column:children"`
}

// TableName returns the table name for GORM
func (BundleDefinitionModel) TableName() string {
	return "bundle_definitions"
}

// ToDomain converts the persistence model to a domain BundleDefinition.
func (m *BundleDefinitionModel) ToDomain() *catalog.BundleDefinition {
	def := &catalog.BundleDefinition{
		ParentCode:  m.ParentCode,
		Description: m.Description,
	}
	unmarshalColumn(m.ChildrenJSON, &def.Children)
	return def
}

// FromDomain populates the persistence model from a domain BundleDefinition.
func (m *BundleDefinitionModel) FromDomain(def *catalog.BundleDefinition) {
	m.ParentCode = def.ParentCode
	m.Description = def.Description
	m.ChildrenJSON = marshalColumn(def.Children)
}
