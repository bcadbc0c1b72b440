package building_monitor

// ErrorResponse is the shared error envelope returned by all handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the shared success envelope for side-effect endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}
