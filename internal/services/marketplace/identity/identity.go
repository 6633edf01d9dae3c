// Package identity provides marketplace account roles and provisioning input rules.
package identity

import (
	"strings"

	apperrors "github.com/mealgrid/mealgrid/internal/platform/errors"
)

// Role identifies the platform role attached to an identity.
type Role string

const (
	// RoleClient is an ordering customer.
	RoleClient Role = "client"
	// RoleRestaurant is a restaurant operator.
	RoleRestaurant Role = "restaurant"
	// RoleDeliveryAgent is a courier fulfilling deliveries.
	RoleDeliveryAgent Role = "delivery_agent"
	// RoleAdmin is a platform administrator.
	RoleAdmin Role = "admin"
)

const (
	// DefaultCommissionBps is the commission applied to new restaurants,
	// in basis points (1500 bps = 15%).
	DefaultCommissionBps = 1500

	// DefaultVehicleType is assigned to couriers that register without one.
	DefaultVehicleType = "motorcycle"
)

var (
	// ErrEmailRequired indicates a missing email address.
	ErrEmailRequired = apperrors.New(apperrors.CodeProvisionEmailRequired, "email is required")
	// ErrPasswordRequired indicates a missing password.
	ErrPasswordRequired = apperrors.New(apperrors.CodeProvisionPasswordRequired, "password is required")
	// ErrNameRequired indicates a missing display name.
	ErrNameRequired = apperrors.New(apperrors.CodeProvisionNameRequired, "display name is required")
	// ErrInvalidRole indicates a role outside the enumerated set.
	ErrInvalidRole = apperrors.New(apperrors.CodeProvisionInvalidRole, "role must be one of client, restaurant, delivery_agent, admin")
	// ErrRestaurantNameRequired indicates a restaurant registration without a restaurant name.
	ErrRestaurantNameRequired = apperrors.New(apperrors.CodeProvisionRestaurantNameRequired, "restaurant name is required")
)

// ParseRole validates a raw role tag.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.TrimSpace(raw)) {
	case RoleClient:
		return RoleClient, nil
	case RoleRestaurant:
		return RoleRestaurant, nil
	case RoleDeliveryAgent:
		return RoleDeliveryAgent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// ProvisionInput describes a request to create a new platform identity.
type ProvisionInput struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
	Role        Role
	Locale      string

	// Role-specific payload.
	RestaurantName string
	VehicleType    string
}

// NormalizeProvisionInput trims and validates input before any write.
//
// All preconditions are checked up front, including role-specific ones, so a
// violation short-circuits the whole provisioning run with zero side effects.
func NormalizeProvisionInput(input ProvisionInput) (ProvisionInput, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.RestaurantName = strings.TrimSpace(input.RestaurantName)
	input.VehicleType = strings.TrimSpace(input.VehicleType)

	if input.Email == "" {
		return ProvisionInput{}, ErrEmailRequired
	}
	if input.Password == "" {
		return ProvisionInput{}, ErrPasswordRequired
	}
	if input.DisplayName == "" {
		return ProvisionInput{}, ErrNameRequired
	}

	role, err := ParseRole(string(input.Role))
	if err != nil {
		return ProvisionInput{}, err
	}
	input.Role = role

	switch role {
	case RoleRestaurant:
		if input.RestaurantName == "" {
			return ProvisionInput{}, ErrRestaurantNameRequired
		}
	case RoleDeliveryAgent:
		if input.VehicleType == "" {
			input.VehicleType = DefaultVehicleType
		}
	}

	return input, nil
}

// Profile is the role-specific extension attached to a user record.
//
// Exactly one variant exists per provisioned identity; admins carry none.
// The closed set of variants is keyed by role so profile handling stays
// exhaustive at compile time.
type Profile interface {
	Role() Role
}

// RestaurantProfile extends a restaurant identity.
type RestaurantProfile struct {
	Name          string
	Status        string
	CommissionBps int
}

// Role identifies the restaurant variant.
func (RestaurantProfile) Role() Role { return RoleRestaurant }

// CourierProfile extends a delivery agent identity.
type CourierProfile struct {
	VehicleType  string
	Status       string
	AccountState string
}

// Role identifies the delivery agent variant.
func (CourierProfile) Role() Role { return RoleDeliveryAgent }

// ClientProfile extends a client identity.
type ClientProfile struct {
	Status string
}

// Role identifies the client variant.
func (ClientProfile) Role() Role { return RoleClient }

// ProfileFor builds the role profile variant for normalized input.
// Admin identities carry no profile; the second return reports presence.
func ProfileFor(input ProvisionInput) (Profile, bool) {
	switch input.Role {
	case RoleRestaurant:
		return RestaurantProfile{
			Name:          input.RestaurantName,
			Status:        "approved",
			CommissionBps: DefaultCommissionBps,
		}, true
	case RoleDeliveryAgent:
		return CourierProfile{
			VehicleType:  input.VehicleType,
			Status:       "active",
			AccountState: "approved",
		}, true
	case RoleClient:
		return ClientProfile{Status: "active"}, true
	default:
		return nil, false
	}
}
