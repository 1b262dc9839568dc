package domain

// ProductStub is a single raw product entry as produced by the recommendation
// model. Every field is unverified: the URL and image may be hallucinated, so
// nothing here is trusted until it has been through the resolution pipeline.
// Field names follow the strict JSON schema the model is prompted with.
type ProductStub struct {
	Name               string   `json:"name"`
	Summary            string   `json:"summary"`
	ProposedProductURL string   `json:"product_url"`
	ProposedImageURL   string   `json:"image_url"`
	Price              string   `json:"price"`
	WhyFit             []string `json:"why_fit"`
}

// ResolvedProduct is a ProductStub enriched with a verified product page URL
// and a displayable image. ResolvedProductURL is always populated (worst case
// a catalog search URL) and EmbeddedImage is always a usable image reference
// (worst case the placeholder). Never mutated after construction.
type ResolvedProduct struct {
	ProductStub
	ResolvedProductURL  string    `json:"resolved_product_url"`
	ResolvedImageSource string    `json:"resolved_image_source,omitempty"`
	EmbeddedImage       string    `json:"embedded_image"`
	PageMeta            *PageMeta `json:"page_meta,omitempty"`
}

// Recommendation is the structured reply of the recommendation model.
type Recommendation struct {
	Rationale string        `json:"rationale"`
	Products  []ProductStub `json:"products"`
}

// PageMeta holds OpenGraph metadata scraped from a resolved product page.
// Purely informational: resolution decisions never depend on it.
type PageMeta struct {
	Title       string `json:"title,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// QuoteRequest carries everything the PDF renderer needs to lay out a quote
// document. Products arrive already resolved; the renderer downloads images
// itself rather than reusing the embedded data URIs.
type QuoteRequest struct {
	RoomType  string            `json:"room_type"`
	Platform  string            `json:"platform"`
	UserNeeds string            `json:"needs"`
	Rationale string            `json:"rationale"`
	Products  []ResolvedProduct `json:"products"`
}
