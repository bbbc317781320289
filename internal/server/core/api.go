package core

import "encoding/json"

// World operations

type OpRequest struct {
	Op string `json:"op"`
}

type CreateWorldRequest struct {
	Name        string `json:"name" validate:"notblank,max=200"`
	Description string `json:"description" validate:"max=20000"`
}

type UpdateWorldRequest struct {
	ID          ID      `json:"id" validate:"required"`
	Name        *string `json:"name" validate:"omitnil,notblank,max=200"`
	Description *string `json:"description" validate:"omitnil,max=20000"`
}

type IDRequest struct {
	ID ID `json:"id" validate:"required"`
}

type MoveRequest struct {
	ID  ID  `json:"id" validate:"required"`
	Dir int `json:"dir" validate:"required,oneof=-1 1"`
}

type CreateEraRequest struct {
	WorldID     ID      `json:"worldId" validate:"required"`
	Name        string  `json:"name" validate:"notblank,max=200"`
	Description string  `json:"description" validate:"max=20000"`
	StartYear   NullInt `json:"startYear"`
	EndYear     NullInt `json:"endYear"`
	Color       string  `json:"color" validate:"max=32"`
}

type UpdateEraRequest struct {
	ID          ID      `json:"id" validate:"required"`
	Name        *string `json:"name" validate:"omitnil,notblank,max=200"`
	Description *string `json:"description" validate:"omitnil,max=20000"`
	StartYear   NullInt `json:"startYear"`
	EndYear     NullInt `json:"endYear"`
	Color       *string `json:"color" validate:"omitnil,max=32"`
}

type CreateSettingRequest struct {
	WorldID     ID      `json:"worldId" validate:"required"`
	EraID       NullID  `json:"eraId"`
	Name        string  `json:"name" validate:"notblank,max=200"`
	Description string  `json:"description" validate:"max=20000"`
	StartYear   NullInt `json:"startYear"`
	EndYear     NullInt `json:"endYear"`
}

type UpdateSettingRequest struct {
	ID          ID      `json:"id" validate:"required"`
	EraID       NullID  `json:"eraId"`
	Name        *string `json:"name" validate:"omitnil,notblank,max=200"`
	Description *string `json:"description" validate:"omitnil,max=20000"`
	StartYear   NullInt `json:"startYear"`
	EndYear     NullInt `json:"endYear"`
}

type CreateMarkerRequest struct {
	WorldID     ID      `json:"worldId" validate:"required"`
	EraID       NullID  `json:"eraId"`
	Name        string  `json:"name" validate:"notblank,max=200"`
	Description string  `json:"description" validate:"max=20000"`
	Year        NullInt `json:"year"`
}

type UpdateMarkerRequest struct {
	ID          ID      `json:"id" validate:"required"`
	EraID       NullID  `json:"eraId"`
	Name        *string `json:"name" validate:"omitnil,notblank,max=200"`
	Description *string `json:"description" validate:"omitnil,max=20000"`
	Year        NullInt `json:"year"`
}

// Era detail operations

type SaveEraBasicInfoRequest struct {
	EraID   ID      `json:"eraId" validate:"required"`
	Summary *string `json:"summary" validate:"omitnil,max=20000"`
	Tone    *string `json:"tone" validate:"omitnil,max=200"`
	Themes  *string `json:"themes" validate:"omitnil,max=2000"`
}

type SaveEraBackdropRequest struct {
	EraID            ID      `json:"eraId" validate:"required"`
	Climate          *string `json:"climate" validate:"omitnil,max=2000"`
	TechnologyLevel  *string `json:"technologyLevel" validate:"omitnil,max=200"`
	MagicLevel       *string `json:"magicLevel" validate:"omitnil,max=200"`
	DefaultSettingID NullID  `json:"defaultSettingId"`
}

type SaveEraTradeRequest struct {
	EraID   ID      `json:"eraId" validate:"required"`
	Summary *string `json:"summary" validate:"omitnil,max=20000"`
	Exports *string `json:"exports" validate:"omitnil,max=2000"`
	Imports *string `json:"imports" validate:"omitnil,max=2000"`
}

type CreateGovernmentRequest struct {
	EraID       ID     `json:"eraId" validate:"required"`
	Name        string `json:"name" validate:"notblank,max=200"`
	Description string `json:"description" validate:"max=20000"`
}

type CreateRegionRequest struct {
	GovernmentID ID     `json:"governmentId" validate:"required"`
	Name         string `json:"name" validate:"notblank,max=200"`
	Description  string `json:"description" validate:"max=20000"`
}

// UpdateNamedRequest patches governments and regions
type UpdateNamedRequest struct {
	ID          ID      `json:"id" validate:"required"`
	Name        *string `json:"name" validate:"omitnil,notblank,max=200"`
	Description *string `json:"description" validate:"omitnil,max=20000"`
}

type CurrencyInput struct {
	Name  string    `json:"name" validate:"notblank,max=200"`
	Value NullFloat `json:"value"`
}

// ReplaceCurrenciesRequest needs the currencies key; an empty list clears the region
type ReplaceCurrenciesRequest struct {
	RegionID   ID               `json:"regionId" validate:"required"`
	Currencies *[]CurrencyInput `json:"currencies" validate:"required,max=200,dive"`
}

type CatalogEntryInput struct {
	Name  string `json:"name" validate:"notblank,max=200"`
	Notes string `json:"notes" validate:"max=20000"`
}

type ReplaceEraCatalogRequest struct {
	EraID   ID                   `json:"eraId" validate:"required"`
	Kind    string               `json:"kind" validate:"required,oneof=race creature language deity faction"`
	Entries *[]CatalogEntryInput `json:"entries" validate:"required,max=500,dive"`
}

type CatalystInput struct {
	Name        string  `json:"name" validate:"notblank,max=200"`
	Description string  `json:"description" validate:"max=20000"`
	Year        NullInt `json:"year"`
}

type ReplaceCatalystsRequest struct {
	EraID     ID               `json:"eraId" validate:"required"`
	Catalysts *[]CatalystInput `json:"catalysts" validate:"required,max=200,dive"`
}

// Catalog resources

type RaceDefinitionInput struct {
	Lore      *string `json:"lore" validate:"omitnil,max=20000"`
	Size      *string `json:"size" validate:"omitnil,max=200"`
	Lifespan  *string `json:"lifespan" validate:"omitnil,max=200"`
	Languages *string `json:"languages" validate:"omitnil,max=2000"`
}

type RaceAttributesInput struct {
	Strength     NullInt `json:"strength"`
	Dexterity    NullInt `json:"dexterity"`
	Constitution NullInt `json:"constitution"`
	Intelligence NullInt `json:"intelligence"`
	Wisdom       NullInt `json:"wisdom"`
	Charisma     NullInt `json:"charisma"`
	Speed        NullInt `json:"speed"`
}

type BonusSkillInput struct {
	SkillID ID      `json:"skillId" validate:"required"`
	Points  NullInt `json:"points"`
}

// RaceRequest serves both create and patch; list fields replace the stored list when present
type RaceRequest struct {
	Name             *string              `json:"name" validate:"omitnil,notblank,max=200"`
	Description      *string              `json:"description" validate:"omitnil,max=20000"`
	Definition       *RaceDefinitionInput `json:"definition"`
	Attributes       *RaceAttributesInput `json:"attributes"`
	BonusSkills      *[]BonusSkillInput   `json:"bonusSkills" validate:"omitnil,max=50,dive"`
	SpecialAbilities *[]ID                `json:"specialAbilities" validate:"omitnil,max=50,dive,required"`
}

// CatalogFields is a flat catalog body keyed by JSON field name
type CatalogFields map[string]json.RawMessage

// Auth

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=40"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Response envelopes

type DataResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data"`
}

type RowsResponse struct {
	OK   bool `json:"ok"`
	Rows any  `json:"rows"`
}

type ItemResponse struct {
	OK   bool `json:"ok"`
	Item any  `json:"item"`
}

// Deleted is the payload returned by delete operations
type Deleted struct {
	ID int64 `json:"id"`
}
