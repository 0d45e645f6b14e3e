// Package model holds the storefront data types shared between the gateway,
// the session store and the HTTP surface.
package model

import "github.com/shopspring/decimal"

// User is the authenticated storefront customer.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// Size is one purchasable size row of a color variation. VariationProductID
// references the size-specific product row used in purchase requests.
type Size struct {
	SizeID             int             `json:"size_id"`
	VariationProductID int             `json:"variation_product_id"`
	SizeName           string          `json:"size_name"`
	Status             bool            `json:"status"`
	Price              decimal.Decimal `json:"price"`
}

// VariationColor is a color variant of a product, owned by its parent Product.
type VariationColor struct {
	ColorID     int      `json:"color_id"`
	ColorName   string   `json:"color_name"`
	ColorImages []string `json:"color_images"`
	Status      bool     `json:"status"`
	Sizes       []Size   `json:"sizes"`
}

// ProductImage wraps a single product image reference.
type ProductImage struct {
	Image string `json:"image"`
}

// Product is a sanitized catalog entry. Every image URL it carries has either
// passed image-URL validation or been replaced with the local placeholder.
type Product struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	ProductImages   []ProductImage   `json:"product_images"`
	VariationsExist bool             `json:"variations_exist"`
	VariationColors []VariationColor `json:"variation_colors"`
	SalePrice       decimal.Decimal  `json:"sale_price"`
	MRP             decimal.Decimal  `json:"mrp"`
	New             bool             `json:"new"`
	Discount        int              `json:"discount"`
	OutOfStock      bool             `json:"out_of_stock"`
	Slug            string           `json:"slug"`
}

// Order is a past purchase as reported by the remote system. It is read-only
// after sanitization.
type Order struct {
	OrderID       string          `json:"order_id"`
	ProductAmount decimal.Decimal `json:"product_amount"`
	ProductName   string          `json:"product_name"`
	ProductImage  string          `json:"product_image"`
	CreatedDate   string          `json:"created_date"`
	ProductMRP    decimal.Decimal `json:"product_mrp"`
}

// PurchasedProduct is the snapshot taken at purchase time, backing the
// confirmation view after a reload. It persists independently of the session.
type PurchasedProduct struct {
	Name          string          `json:"name"`
	Image         string          `json:"image"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Size          string          `json:"size"`
	ProductID     string          `json:"product_id"`
}

// VerifyRequest asks the remote system whether a phone number belongs to a
// known user.
type VerifyRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,phoneformat"`
}

// RegisterRequest creates or re-authenticates a user.
type RegisterRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	PhoneNumber string `json:"phone_number" validate:"required,phoneformat"`
	UniqueID    string `json:"unique_id"`
}

// PurchaseRequest buys a product, optionally a specific size variation of it.
type PurchaseRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	VariationID string `json:"variation_id"`
	Size        string `json:"size"`
}
