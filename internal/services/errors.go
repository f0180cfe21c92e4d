package services

import "fmt"

// Service errors
var (
	ErrInvalidDataSource = &ServiceError{Message: "data source must be auto, contract or subgraph"}
	ErrInvalidPaging     = &ServiceError{Message: "limit must be between 1 and 100 and offset must not be negative"}
	ErrBaseURLNotSet     = &ServiceError{Message: "base_url not configured"}
	ErrWidgetNotFound    = &ServiceError{Message: "widget not found"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidSettingError reports a playground setting with an unsupported value
type InvalidSettingError struct {
	Field string
	Value string
}

func (e *InvalidSettingError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}
