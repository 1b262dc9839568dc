package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Lead is one captured sales contact, stored together with the serialized
// recommendation the visitor was looking at when they asked for a quote. The
// recommendation travels as an opaque JSON blob; the lead log has no
// structural dependency on the rest of the pipeline.
type Lead struct {
	LeadID             string    `json:"lead_id"`
	CreatedAt          time.Time `json:"created_at"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Company            string    `json:"company,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	RoomType           string    `json:"room_type,omitempty"`
	Platform           string    `json:"platform,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	RecommendationJSON string    `json:"recommendation_json,omitempty"`
}

// Validate checks that a lead is complete enough to record: a contact with
// name and email, attached to a recommendation that carries at least one
// product. Errors wrap ErrLeadInvalid.
func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" || strings.TrimSpace(l.Email) == "" {
		return fmt.Errorf("%w: name and email are required", ErrLeadInvalid)
	}

	var reco Recommendation
	if l.RecommendationJSON == "" || json.Unmarshal([]byte(l.RecommendationJSON), &reco) != nil || len(reco.Products) == 0 {
		return fmt.Errorf("%w: a recommendation with products is required", ErrLeadInvalid)
	}

	return nil
}
