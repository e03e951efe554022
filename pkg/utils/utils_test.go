package utils

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMachineKey(t *testing.T) {
	tests := []struct {
		resource string
		action   string
		want     string
	}{
		{"User", "create", "user_create"},
		{"Form Template", "approve", "form_template_approve"},
		{"Report Center", "View", "report_center_view"},
		{"  audit  ", "manage", "audit_manage"},
	}
	for _, tt := range tests {
		if got := MachineKey(tt.resource, tt.action); got != tt.want {
			t.Errorf("MachineKey(%q, %q) = %q, want %q", tt.resource, tt.action, got, tt.want)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	SetSecret("test-secret")

	userID := primitive.NewObjectID()
	roleID := primitive.NewObjectID().Hex()

	token, err := GenerateToken(userID, roleID)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != userID.Hex() || claims.RoleID != roleID {
		t.Errorf("claims = %+v, want user %s role %s", claims, userID.Hex(), roleID)
	}

	// A token signed under a different secret must not validate.
	SetSecret("rotated-secret")
	if _, err := ValidateToken(token); err == nil {
		t.Errorf("ValidateToken() accepted token signed with old secret")
	}
}
