package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	// Admin permissions
	PermissionReadAdmin  = "admin:read"
	PermissionWriteAdmin = "admin:write"

	// Tax report permissions
	PermissionReportSubmit = "report:submit"
	PermissionReportRead   = "report:read"
	PermissionReportReview = "report:review"

	// Invoice permissions
	PermissionInvoiceRead = "invoice:read"
	PermissionInvoicePay  = "invoice:pay"

	// Settlement permissions
	PermissionSettlementRead = "settlement:read"

	// POS agent permissions
	PermissionAgentRead  = "agent:read"
	PermissionAgentWrite = "agent:write"

	// User management permissions
	PermissionUserRead       = "user:read"
	PermissionUserWrite      = "user:write"
	PermissionChangePassword = "user:change-password"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{
			PermissionReadAdmin,
			PermissionWriteAdmin,
			PermissionReportRead,
			PermissionReportReview,
			PermissionInvoiceRead,
			PermissionSettlementRead,
			PermissionAgentRead,
			PermissionUserRead,
			PermissionUserWrite,
			PermissionChangePassword,
		}
	case RoleBank:
		return []string{
			PermissionReportSubmit,
			PermissionReportRead,
			PermissionInvoiceRead,
			PermissionInvoicePay,
			PermissionAgentRead,
			PermissionAgentWrite,
			PermissionChangePassword,
		}
	case RoleGovernment:
		return []string{
			PermissionReportRead,
			PermissionInvoiceRead,
			PermissionSettlementRead,
			PermissionChangePassword,
		}
	case RoleAgent:
		return []string{
			PermissionReportRead,
			PermissionChangePassword,
		}
	default:
		return []string{}
	}
}
