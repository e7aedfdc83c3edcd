package repositories

import "errors"

// ErrInsufficientStock is returned when a sale would drive a medicine's
// stock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")
