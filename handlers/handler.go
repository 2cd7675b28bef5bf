package handlers

import (
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// checkRole verifies the Role header set by the JWT middleware against the
// allowed list.
func checkRole(r *http.Request, allowedRoles []string) error {
	userRole := r.Header.Get("Role")
	if userRole == "" {
		return fmt.Errorf("role is missing in request header")
	}

	for _, role := range allowedRoles {
		if role == userRole {
			return nil
		}
	}
	return fmt.Errorf("access forbidden: user does not have the required role")
}

// requestTenantID reads the Tenant-ID header set by the JWT middleware.
func requestTenantID(r *http.Request) (primitive.ObjectID, error) {
	tenantID, err := primitive.ObjectIDFromHex(r.Header.Get("Tenant-ID"))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid tenant in token")
	}
	return tenantID, nil
}
