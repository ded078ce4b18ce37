package models

import "time"

type OrderLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type CreateOrderRequest struct {
	Products    []OrderLine `json:"products"`
	TotalAmount float64     `json:"totalAmount"`
}

// InvoiceFile is the document returned by a successful order submission.
type InvoiceFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Path        string
}

type InvoiceUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Invoice struct {
	OrderID   string      `json:"order_id"`
	User      InvoiceUser `json:"user"`
	Total     float64     `json:"total"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorBody is the JSON shape of a non-OK reply. The JWT layer of the
// reference service answers with "msg" instead of "message".
type ErrorBody struct {
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

func (b ErrorBody) Text() string {
	if b.Message != "" {
		return b.Message
	}

	return b.Msg
}
