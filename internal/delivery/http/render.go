package http

import (
	"bytes"
	"html/template"

	"github.com/sirupsen/logrus"

	"github.com/flexfinder/backend/internal/domain"
)

// productCardsTmpl is the fragment the demo front end injects into its
// results pane. Class names line up with the stylesheet shipped with the UI.
var productCardsTmpl = template.Must(template.New("productCards").Parse(`{{if .Rationale}}<div class="rationale-card"><strong>Rationale:</strong> {{.Rationale}}</div>
{{end}}{{if not .Products}}<div class="rationale-card placeholder-reco">Your recommendations will appear here.</div>{{else}}<div class="products-wrap">
{{range .Products}}<div class="product-card">
  <div class="product-img">
    <img src="{{.ImageSrc}}" alt="{{.Name}}">
  </div>
  <div class="product-body">
    <h4>{{.Name}} <span class="price-badge">{{.Price}}</span></h4>
    <p>{{.Summary}}</p>
    <ul>{{range .WhyFit}}<li>{{.}}</li>{{end}}</ul>
    {{if .ProductURL}}<a href="{{.ProductURL}}" target="_blank" rel="noopener">View on Crestron</a>
{{end}}  </div>
</div>
{{end}}</div>{{end}}`))

type productCardsView struct {
	Rationale string
	Products  []productCardView
}

type productCardView struct {
	Name       string
	Price      string
	Summary    string
	ImageSrc   template.URL
	ProductURL string
	WhyFit     []string
}

// renderProductCards builds the HTML card markup for a resolved
// recommendation. Image sources are the data URIs produced by the embedder,
// so they bypass the template's URL sanitizer; everything else is escaped.
func renderProductCards(rationale string, products []domain.ResolvedProduct) string {
	view := productCardsView{Rationale: rationale}
	for _, p := range products {
		price := p.Price
		if price == "" {
			price = "Request quote"
		}
		why := p.WhyFit
		if len(why) > 6 {
			why = why[:6]
		}
		view.Products = append(view.Products, productCardView{
			Name:       p.Name,
			Price:      price,
			Summary:    p.Summary,
			ImageSrc:   template.URL(p.EmbeddedImage),
			ProductURL: p.ResolvedProductURL,
			WhyFit:     why,
		})
	}

	var buf bytes.Buffer
	if err := productCardsTmpl.Execute(&buf, view); err != nil {
		logrus.Errorf("[HTTP] product card template failed: %v", err)
		return ""
	}
	return buf.String()
}
