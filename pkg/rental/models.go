// Package rental implements the game-rental store domain: accounts,
// catalog browsing, order placement, and shipment tracking.
package rental

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoSession is returned when login credentials match no user.
	ErrNoSession = errors.New("no session: login, password, and phone number must all match")

	// ErrWrongPassword is returned when the current password check fails.
	ErrWrongPassword = errors.New("wrong password")

	// ErrPermissionDenied is returned when the acting user's role lacks access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnknownGame is returned when an ordered game has no catalog entry.
	ErrUnknownGame = errors.New("no such game in catalog")

	// ErrInvalidRole is returned when a role value is outside the enum.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidStatus is returned when a shipment status is outside the enum.
	ErrInvalidStatus = errors.New("invalid shipment status")

	// ErrEmptyOrder is returned when an order contains no items.
	ErrEmptyOrder = errors.New("order must contain at least one game")
)

// Role is a user's access level. Stored as text but validated at every write.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// ParseRole validates a role string against the three-value enum.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleEmployee, RoleManager:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// CanUpdateTracking reports whether the role may edit tracking rows.
func (r Role) CanUpdateTracking() bool {
	return r == RoleEmployee || r == RoleManager
}

// CanManageUsers reports whether the role may edit other users and the catalog.
func (r Role) CanManageUsers() bool {
	return r == RoleManager
}

// ShipmentStatus is one of the eight tracking states. Transitions are
// unrestricted: any status may follow any other.
type ShipmentStatus string

const (
	StatusOrderReceived     ShipmentStatus = "Order Received"
	StatusPreparingShipment ShipmentStatus = "Preparing Shipment"
	StatusShipped           ShipmentStatus = "Shipped"
	StatusInTransit         ShipmentStatus = "In Transit"
	StatusOutForDelivery    ShipmentStatus = "Out for Delivery"
	StatusDelayed           ShipmentStatus = "Delayed"
	StatusDelivered         ShipmentStatus = "Delivered"
	StatusReturned          ShipmentStatus = "Returned"
)

// ShipmentStatuses lists every valid status, in menu order.
var ShipmentStatuses = []ShipmentStatus{
	StatusOrderReceived,
	StatusPreparingShipment,
	StatusShipped,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelayed,
	StatusDelivered,
	StatusReturned,
}

// ParseShipmentStatus validates a status string against the enum.
func ParseShipmentStatus(s string) (ShipmentStatus, error) {
	for _, status := range ShipmentStatuses {
		if ShipmentStatus(s) == status {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// User is an account row. Passwords are stored and compared as plain text;
// the store intentionally has no credential hashing.
type User struct {
	Login           string
	Password        string
	Role            Role
	FavoriteGames   string // comma-joined free text
	PhoneNum        string
	NumOverdueGames int
}

// Session identifies the logged-in user for the duration of a menu session.
// It is passed explicitly to every handler; there is no global current user.
type Session struct {
	Login string
	Role  Role
}

// CatalogEntry is a game available for rental.
type CatalogEntry struct {
	GameID   string
	GameName string
	Genre    string
	Price    float64
}

// RentalOrder is one placed order.
type RentalOrder struct {
	RentalOrderID  string
	Login          string
	NoOfGames      int
	TotalPrice     float64
	OrderTimestamp time.Time
	DueDate        time.Time
}

// OrderLine is one (game, quantity) pair inside an order. GameName is
// populated on reads that join the catalog.
type OrderLine struct {
	RentalOrderID string
	GameID        string
	GameName      string
	UnitsOrdered  int
}

// TrackingInfo is the shipment record attached to an order.
type TrackingInfo struct {
	TrackingID         string
	RentalOrderID      string
	Status             ShipmentStatus
	CurrentLocation    string
	CourierName        string
	LastUpdateDate     time.Time
	AdditionalComments string
}
