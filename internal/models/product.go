package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Stock is a unit count that travels as a numeric string but may also arrive
// as a plain JSON number.
type Stock int

func (s Stock) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(s)))
}

func (s *Stock) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		*s = 0
		return nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return fmt.Errorf("invalid stock quantity %q", raw)
		}
		n = int(f)
	}

	*s = Stock(n)

	return nil
}

type Product struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity Stock   `json:"quantity"`
}

// Key identifies a product across catalog and cart. The reference service
// omits ids from its listing, so the name stands in when id is empty.
func (p *Product) Key() string {
	if p.ID != "" {
		return p.ID
	}

	return p.Name
}

type AddProductRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Category string  `json:"category" validate:"required,max=100"`
	Price    float64 `json:"price" validate:"gt=0"`
	Quantity int     `json:"quantity" validate:"gte=0"`
}
