package utils

import (
	"strings"
)

const (
	RoleAdmin    = "admin"
	RoleMerchant = "merchant"
	RoleStaff    = "staff"
)

// ReportRoles are the roles allowed to log in to the reporting API.
var ReportRoles = map[string]bool{
	RoleAdmin:    true,
	RoleMerchant: true,
	RoleStaff:    true,
}

// ValidateAndNormalizeRole lowercases and trims a role string and reports
// whether it is one of ReportRoles.
func ValidateAndNormalizeRole(role string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(role))
	return normalized, ReportRoles[normalized]
}
