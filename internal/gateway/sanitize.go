package gateway

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/model"
)

// placeholderImage replaces any image reference that fails validation.
const placeholderImage = "/images/placeholder.jpg"

// productPayload is the superset of product fields the remote API has been
// observed to send. Older catalog rows use price/original_price instead of
// sale_price/mrp.
type productPayload struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	ProductImages   []model.ProductImage   `json:"product_images"`
	VariationsExist bool                   `json:"variations_exist"`
	VariationColors []model.VariationColor `json:"variation_colors"`
	SalePrice       decimal.Decimal        `json:"sale_price"`
	Price           decimal.Decimal        `json:"price"`
	MRP             decimal.Decimal        `json:"mrp"`
	OriginalPrice   decimal.Decimal        `json:"original_price"`
	New             bool                   `json:"new"`
	Discount        int                    `json:"discount"`
	OutOfStock      bool                   `json:"out_of_stock"`
	Slug            string                 `json:"slug"`
}

// decodeProductEnvelope normalizes the catalog response. Matchers run in a
// fixed order: bare array, then {"products": [...]}, then {"data": [...]}.
// No match yields an empty list rather than an error.
func decodeProductEnvelope(raw json.RawMessage) []productPayload {
	matchers := []func(json.RawMessage) ([]productPayload, bool){
		matchBareArray,
		matchKeyedArray("products"),
		matchKeyedArray("data"),
	}
	for _, match := range matchers {
		if payloads, ok := match(raw); ok {
			return payloads
		}
	}
	return nil
}

func matchBareArray(raw json.RawMessage) ([]productPayload, bool) {
	var payloads []productPayload
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return nil, false
	}
	return payloads, true
}

func matchKeyedArray(key string) func(json.RawMessage) ([]productPayload, bool) {
	return func(raw json.RawMessage) ([]productPayload, bool) {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, false
		}
		inner, ok := envelope[key]
		if !ok {
			return nil, false
		}
		var payloads []productPayload
		if err := json.Unmarshal(inner, &payloads); err != nil {
			return nil, false
		}
		return payloads, true
	}
}

// sanitizeProduct shape-checks one catalog entry: image URLs are validated or
// replaced, list fields are never nil, and legacy price fields are folded in.
func (c *Client) sanitizeProduct(p productPayload) model.Product {
	images := make([]model.ProductImage, 0, len(p.ProductImages))
	for _, img := range p.ProductImages {
		images = append(images, model.ProductImage{Image: c.safeImageURL(img.Image)})
	}

	colors := make([]model.VariationColor, 0, len(p.VariationColors))
	for _, color := range p.VariationColors {
		kept := make([]string, 0, len(color.ColorImages))
		for _, img := range color.ColorImages {
			if c.validImageURL(img) {
				kept = append(kept, img)
			}
		}
		color.ColorImages = kept
		if color.Sizes == nil {
			color.Sizes = []model.Size{}
		}
		colors = append(colors, color)
	}

	salePrice := p.SalePrice
	if salePrice.IsZero() {
		salePrice = p.Price
	}
	mrp := p.MRP
	if mrp.IsZero() {
		mrp = p.OriginalPrice
	}

	productSlug := p.Slug
	if productSlug == "" {
		productSlug = slug.Make(p.Name)
	}

	return model.Product{
		ID:              p.ID,
		Name:            p.Name,
		ProductImages:   images,
		VariationsExist: p.VariationsExist,
		VariationColors: colors,
		SalePrice:       salePrice,
		MRP:             mrp,
		New:             p.New,
		Discount:        p.Discount,
		OutOfStock:      p.OutOfStock,
		Slug:            productSlug,
	}
}

func (c *Client) sanitizeOrder(o model.Order) model.Order {
	o.ProductImage = c.safeImageURL(o.ProductImage)
	return o
}

// validImageURL reports whether an image reference can be trusted. Path
// relative references are same-origin static assets and always pass; anything
// else must be an absolute URL with an allow-listed hostname.
func (c *Client) validImageURL(raw string) bool {
	if raw == "" || strings.HasPrefix(raw, "/") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return false
	}
	_, ok := c.imageHosts[u.Hostname()]
	return ok
}

func (c *Client) safeImageURL(raw string) string {
	if c.validImageURL(raw) {
		return raw
	}
	return placeholderImage
}
