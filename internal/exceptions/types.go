package exceptions

import "fmt"

type ServiceError struct {
	StatusCode int
	Cause      error
}

func (se *ServiceError) Error() string {
	return se.Cause.Error()
}

type RequestError interface {
	ToServiceError() *ServiceError
	Error() string
}

type ConflictError struct {
	Resource string
	Id       string
}

func (ce *ConflictError) Error() string {
	return fmt.Sprintf("Found conflicting %s with id: %s", ce.Resource, ce.Id)
}

func (ce *ConflictError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 409,
		Cause:      ce,
	}
}

func Conflict(resource string, id string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Id:       id,
	}
}

type NotFoundError struct {
	Resource string
	Id       string
}

func (nfe *NotFoundError) Error() string {
	return fmt.Sprintf("Could not find a %s with id: %s", nfe.Resource, nfe.Id)
}

func (nfe *NotFoundError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 404,
		Cause:      nfe,
	}
}

func NotFound(resource string, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Id:       id,
	}
}

type InvalidInputError struct {
	Message string
}

func (ie *InvalidInputError) Error() string {
	return ie.Message
}

func (ie *InvalidInputError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 400,
		Cause:      ie,
	}
}

func InvalidInput(message string) *InvalidInputError {
	return &InvalidInputError{
		Message: message,
	}
}

type InternalServerError struct {
	Message string
}

func (ise *InternalServerError) Error() string {
	return ise.Message
}

func (ise *InternalServerError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 500,
		Cause:      ise,
	}
}

func InternalServer(message string) *InternalServerError {
	return &InternalServerError{
		Message: message,
	}
}

// GenerationError signals that the upstream text-completion call itself
// failed. Malformed output is a FormatError, not a GenerationError.
type GenerationError struct {
	Cause error
}

func (ge *GenerationError) Error() string {
	return fmt.Sprintf("Generation service failure: %s", ge.Cause)
}

func (ge *GenerationError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 502,
		Cause:      ge,
	}
}

func GenerationFailure(cause error) *GenerationError {
	return &GenerationError{
		Cause: cause,
	}
}

// FormatError carries the raw generated text that failed to match the
// item grammar, so callers can diagnose what the model actually said.
type FormatError struct {
	Raw string
}

func (fe *FormatError) Error() string {
	return fmt.Sprintf("Generated text did not match the expected format: %s", fe.Raw)
}

func (fe *FormatError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 502,
		Cause:      fe,
	}
}

func BadFormat(raw string) *FormatError {
	return &FormatError{
		Raw: raw,
	}
}
