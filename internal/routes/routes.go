package routes

const (
	// Health
	Health  = "/health"
	Metrics = "/metrics"

	// Application endpoints
	Applications         = "/api/v1/applications"
	ApplicationsValidate = "/api/v1/applications/validate"

	// Query parameter carrying the application ID on GET
	ApplicationIDParam = "id"
)
