package services_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestAdminPolicy(t *testing.T) {
	tests := []struct {
		name    string
		enforce bool
		caller  *services.Caller
		wantErr error
	}{
		{"no session", false, nil, services.ErrUnauthorized},
		{"empty user id", false, &services.Caller{Role: models.RoleAdmin}, services.ErrUnauthorized},
		{"customer without role check", false, &services.Caller{UserID: "u1", Role: models.RoleCustomer}, nil},
		{"customer with role check", true, &services.Caller{UserID: "u1", Role: models.RoleCustomer}, services.ErrForbidden},
		{"admin with role check", true, &services.Caller{UserID: "u1", Role: models.RoleAdmin}, nil},
		{"super admin with role check", true, &services.Caller{UserID: "u1", Role: models.RoleSuperAdmin}, nil},
		{"no session with role check", true, nil, services.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := services.AdminPolicy(tt.enforce)(tt.caller)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
