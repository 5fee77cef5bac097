package models

import (
	"time"

	"github.com/google/uuid"
)

// Query intent categories assigned at generation time.
const (
	CategoryPrice          = "Price/Budget"
	CategoryQuality        = "Quality/Premium"
	CategoryDelivery       = "Delivery/Speed"
	CategoryFeatures       = "Features/Options"
	CategoryTrust          = "Reviews/Trust"
	CategorySustainability = "Sustainability"
	CategoryConvenience    = "Convenience"
	CategoryGeneral        = "General"
)

// Query is one generated consumer question. Immutable once generated;
// belongs to exactly one job generation batch.
type Query struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	JobID     uuid.UUID `db:"job_id"     json:"job_id"`
	Position  int       `db:"position"   json:"position"`
	Text      string    `db:"query_text" json:"text"`
	Category  string    `db:"category"   json:"category"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GeneratedQuery is the cacheable pre-persistence form of a query: the text
// and its intent category, independent of any job.
type GeneratedQuery struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}
