package utils

const (
	OrganizationName                      = "Hugo"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"
)
