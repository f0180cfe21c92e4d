package handlers

import "github.com/abrezinsky/polydemo/internal/widget"

// CreatePollResponse is the response for poll creation
type CreatePollResponse struct {
	ID int64 `json:"id"`
}

// MountWidgetResponse is the response for a mounted widget
type MountWidgetResponse struct {
	WidgetID string      `json:"widget_id"`
	View     widget.View `json:"view"`
}

// DataSourceResponse is the response for the data source setting
type DataSourceResponse struct {
	DataSource string `json:"data_source"`
}

// CodeResponse is the response for the generated component snippet
type CodeResponse struct {
	Code string `json:"code"`
}
