package usecase

import (
	"errors"
	"fmt"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 存在しない・他人の注文・状態違いは全部同じ文言。
// 注文の存在を外から推測されないようにする。
const (
	msgInvalidOrder        = "Invalid order id."
	msgInvalidAddress      = "Invalid address."
	msgMissingAddress      = "Missing address."
	msgTransferNotComplete = "Transfer not complete."
	msgAlreadyPaid         = "Transfer already complete."
	msgDeliveryNotComplete = "Delivery not complete."
)
