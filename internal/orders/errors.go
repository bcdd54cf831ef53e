package orders

import "errors"

var (
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrProductNotFound    = errors.New("product not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrSellerNotFound     = errors.New("seller not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrOrderExists        = errors.New("order already exists")
	ErrConcurrentConflict = errors.New("concurrent conflict")
)
