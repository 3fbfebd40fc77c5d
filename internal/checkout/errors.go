package checkout

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FallbackMessage is shown when the order service gives no reason.
const FallbackMessage = "Failed to place order"

const MsgCartEmpty = "cart is empty"

// ValidationError is a local check that failed before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SubmissionError is a rejection or failure reported by the order boundary.
type SubmissionError struct {
	Message string
	Status  int
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// UserMessage is the text safe to show the customer.
func (e *SubmissionError) UserMessage() string {
	if e.Message == "" {
		return FallbackMessage
	}
	return e.Message
}

func asSubmissionError(err error) *SubmissionError {
	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return subErr
	}
	return &SubmissionError{Message: FallbackMessage, Err: err}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a payload the way the order boundary does. It reports the
// first failing field as a ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	return fieldMessage(fieldErrs[0])
}

func fieldMessage(fe validator.FieldError) *ValidationError {
	field := fe.Field()
	var msg string

	switch field {
	case "FulfillmentType":
		msg = "order type must be pickup, delivery or dine-in"
	case "Name":
		msg = "name is required"
	case "Phone":
		msg = "phone is required"
	case "Email":
		msg = "email is invalid"
	case "Address":
		msg = "address is required for delivery orders"
	case "Items":
		msg = MsgCartEmpty
	case "ItemID":
		msg = "item id is required"
	case "Quantity":
		msg = "quantity must be between 1 and 99"
	case "Price":
		msg = "price must not be negative"
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return &ValidationError{Field: field, Message: msg}
}
