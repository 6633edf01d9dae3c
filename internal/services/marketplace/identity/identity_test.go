package identity

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"client", RoleClient},
		{"restaurant", RoleRestaurant},
		{"delivery_agent", RoleDeliveryAgent},
		{"admin", RoleAdmin},
		{" client ", RoleClient},
	}
	for _, tc := range tests {
		got, err := ParseRole(tc.raw)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.raw, tc.want, got)
		}
	}
}

func TestParseRoleRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "driver", "superadmin", "CLIENT"} {
		if _, err := ParseRole(raw); !errors.Is(err, ErrInvalidRole) {
			t.Fatalf("%q: expected invalid role error, got %v", raw, err)
		}
	}
}

func TestNormalizeProvisionInput(t *testing.T) {
	normalized, err := NormalizeProvisionInput(ProvisionInput{
		Email:          " Chef@Example.COM ",
		Password:       "secret",
		DisplayName:    "  Chef Ana  ",
		Phone:          " 555-0101 ",
		Role:           RoleRestaurant,
		RestaurantName: " Casa da Ana ",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if normalized.Email != "chef@example.com" {
		t.Fatalf("expected lowered email, got %q", normalized.Email)
	}
	if normalized.DisplayName != "Chef Ana" {
		t.Fatalf("expected trimmed name, got %q", normalized.DisplayName)
	}
	if normalized.Phone != "555-0101" {
		t.Fatalf("expected trimmed phone, got %q", normalized.Phone)
	}
	if normalized.RestaurantName != "Casa da Ana" {
		t.Fatalf("expected trimmed restaurant name, got %q", normalized.RestaurantName)
	}
}

func TestNormalizeProvisionInputValidation(t *testing.T) {
	valid := ProvisionInput{
		Email:       "user@example.com",
		Password:    "secret",
		DisplayName: "User",
		Role:        RoleClient,
	}

	tests := []struct {
		name    string
		mutate  func(*ProvisionInput)
		wantErr error
	}{
		{"missing email", func(in *ProvisionInput) { in.Email = "  " }, ErrEmailRequired},
		{"missing password", func(in *ProvisionInput) { in.Password = "" }, ErrPasswordRequired},
		{"missing name", func(in *ProvisionInput) { in.DisplayName = "" }, ErrNameRequired},
		{"missing role", func(in *ProvisionInput) { in.Role = "" }, ErrInvalidRole},
		{"bad role", func(in *ProvisionInput) { in.Role = "driver" }, ErrInvalidRole},
		{"restaurant without name", func(in *ProvisionInput) {
			in.Role = RoleRestaurant
			in.RestaurantName = ""
		}, ErrRestaurantNameRequired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			if _, err := NormalizeProvisionInput(input); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestNormalizeDefaultsCourierVehicle(t *testing.T) {
	normalized, err := NormalizeProvisionInput(ProvisionInput{
		Email:       "courier@example.com",
		Password:    "secret",
		DisplayName: "Courier",
		Role:        RoleDeliveryAgent,
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if normalized.VehicleType != DefaultVehicleType {
		t.Fatalf("expected default vehicle %q, got %q", DefaultVehicleType, normalized.VehicleType)
	}
}

func TestNormalizeKeepsSuppliedVehicle(t *testing.T) {
	normalized, err := NormalizeProvisionInput(ProvisionInput{
		Email:       "courier@example.com",
		Password:    "secret",
		DisplayName: "Courier",
		Role:        RoleDeliveryAgent,
		VehicleType: "bicycle",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if normalized.VehicleType != "bicycle" {
		t.Fatalf("expected supplied vehicle, got %q", normalized.VehicleType)
	}
}

func TestProfileForVariants(t *testing.T) {
	restaurant, ok := ProfileFor(ProvisionInput{Role: RoleRestaurant, RestaurantName: "Casa da Ana"})
	if !ok {
		t.Fatal("expected restaurant profile")
	}
	rp, isRestaurant := restaurant.(RestaurantProfile)
	if !isRestaurant {
		t.Fatalf("expected RestaurantProfile, got %T", restaurant)
	}
	if rp.Name != "Casa da Ana" || rp.Status != "approved" || rp.CommissionBps != DefaultCommissionBps {
		t.Fatalf("unexpected restaurant profile %+v", rp)
	}

	courier, ok := ProfileFor(ProvisionInput{Role: RoleDeliveryAgent, VehicleType: "motorcycle"})
	if !ok {
		t.Fatal("expected courier profile")
	}
	cp, isCourier := courier.(CourierProfile)
	if !isCourier {
		t.Fatalf("expected CourierProfile, got %T", courier)
	}
	if cp.VehicleType != "motorcycle" || cp.Status != "active" || cp.AccountState != "approved" {
		t.Fatalf("unexpected courier profile %+v", cp)
	}

	client, ok := ProfileFor(ProvisionInput{Role: RoleClient})
	if !ok {
		t.Fatal("expected client profile")
	}
	if clientProfile := client.(ClientProfile); clientProfile.Status != "active" {
		t.Fatalf("unexpected client profile %+v", clientProfile)
	}

	if profile, ok := ProfileFor(ProvisionInput{Role: RoleAdmin}); ok || profile != nil {
		t.Fatalf("expected no profile for admin, got %v", profile)
	}
}
