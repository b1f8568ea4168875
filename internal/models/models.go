package models

// Models mirror the backend REST API shapes. The backend is the source
// of truth; this layer only decodes what it returns.

type Product struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug,omitempty"`
	Description    string          `json:"description"`
	Price          float64         `json:"price"`
	PriceFormatted string          `json:"price_formatted,omitempty"`
	Image          string          `json:"image,omitempty"`
	IsActive       bool            `json:"is_active"`
	HasPrice       bool            `json:"has_price"`
	CategoryID     int64           `json:"category_id,omitempty"`
	Media          []Media         `json:"media,omitempty"`
	Options        []ProductOption `json:"options,omitempty"`
}

type ProductOption struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	PriceFormatted string  `json:"price_formatted,omitempty"`
}

// CartProduct is a cart line item with denormalized product fields.
type CartProduct struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int64   `json:"quantity"`
}

// CartProducts is the line-item envelope the backend returns inside a cart.
type CartProducts struct {
	Data  []CartProduct `json:"data"`
	Total float64       `json:"total"`
}

type Cart struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"user_id,omitempty"`
	AnonymousID string       `json:"anonymous_id,omitempty"`
	Products    CartProducts `json:"products"`
}

// IsEmpty reports whether the cart holds no line items. A nil cart is empty.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Products.Data) == 0
}

// Find returns the line item for the given product id, or nil.
func (c *Cart) Find(productID int64) *CartProduct {
	if c == nil {
		return nil
	}
	for i := range c.Products.Data {
		if c.Products.Data[i].ID == productID {
			return &c.Products.Data[i]
		}
	}
	return nil
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Order       int64     `json:"order"`
	PageID      int64     `json:"page_id"`
	Products    []Product `json:"products,omitempty"`
}

type PageData struct {
	ID         int64      `json:"id"`
	Slug       string     `json:"slug"`
	Categories []Category `json:"categories,omitempty"`
}

type Page struct {
	Data PageData `json:"data"`
}

type Gallery struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
	Media []Media `json:"media,omitempty"`
}

type Galleries struct {
	Data []Gallery `json:"data"`
}

type InstagramMedia struct {
	ID        string `json:"id"`
	MediaURL  string `json:"media_url"`
	Permalink string `json:"permalink"`
	Caption   string `json:"caption,omitempty"`
}
