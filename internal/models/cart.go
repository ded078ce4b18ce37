package models

// CartLine is one product in the cart. TotalAvailable is the stock the client
// believed was left after the line was last added to, not the server's figure.
type CartLine struct {
	ID             string  `json:"id,omitempty"`
	Name           string  `json:"name"`
	Category       string  `json:"category,omitempty"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	TotalAvailable Stock   `json:"total_available_quantity"`
}

func (l *CartLine) Key() string {
	if l.ID != "" {
		return l.ID
	}

	return l.Name
}

func (l *CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// CartState is what cart subscribers receive after every mutation.
type CartState struct {
	Lines []CartLine
	Total float64
}

type Direction string

const (
	Increment Direction = "increment"
	Decrement Direction = "decrement"
)
