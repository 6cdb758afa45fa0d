package service

import "errors"

var (
	ErrEmptyCart     = errors.New("cart is empty, nothing to check out")
	ErrUnknownStatus = errors.New("unknown order status")
)
