package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrProductInvalidID           = errors.New("id must be an integer")
	ErrProductNameRequired        = errors.New("name is required")
	ErrProductDescriptionRequired = errors.New("description is required")
	ErrProductInvalidPrice        = errors.New("price must be a non-negative number")
	ErrProductInvalidQuantity     = errors.New("quantity must be a non-negative integer")
)

// ProductForm is the editable, textual state behind the add/edit form.
type ProductForm struct {
	ID          string
	Name        string
	Description string
	Price       string
	Quantity    string
}

func FormFromProduct(p Product) ProductForm {
	return ProductForm{
		ID:          strconv.FormatInt(p.ID, 10),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		Quantity:    p.Quantity.String(),
	}
}

func (f ProductForm) IsZero() bool {
	return f == ProductForm{}
}

// ToProduct coerces the numeric fields and validates the record.
func (f ProductForm) ToProduct() (Product, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(f.ID), 10, 64)
	if err != nil {
		return Product{}, ErrProductInvalidID
	}
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return Product{}, ErrProductNameRequired
	}
	description := strings.TrimSpace(f.Description)
	if description == "" {
		return Product{}, ErrProductDescriptionRequired
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return Product{}, ErrProductInvalidPrice
	}
	quantity, err := strconv.ParseInt(strings.TrimSpace(f.Quantity), 10, 64)
	if err != nil || quantity < 0 {
		return Product{}, ErrProductInvalidQuantity
	}
	return Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       NumberFromFloat(price),
		Quantity:    NumberFromInt(quantity),
	}, nil
}
