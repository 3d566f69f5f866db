package domain

import "time"

// DependencyType describes how a dependent asset relies on a dependency
// asset.
type DependencyType string

const (
	DependencyConsumes   DependencyType = "consumes"
	DependencyReferences DependencyType = "references"
	DependencyTransforms DependencyType = "transforms"
)

// AssetDependency is a directed edge dependent_asset_id -> dependency_asset_id.
// Unique on the pair; self-loops are forbidden.
type AssetDependency struct {
	ID                string         `json:"id" db:"id"`
	DependentAssetID  string         `json:"dependent_asset_id" db:"dependent_asset_id"`
	DependencyAssetID string         `json:"dependency_asset_id" db:"dependency_asset_id"`
	DependencyType    DependencyType `json:"dependency_type" db:"dependency_type"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}
