package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrderStatus     = errors.New("invalid order status")
	ErrInvalidOrderTransition = errors.New("invalid order status transition")
)

// progression ranks the non-cancelled statuses; a status may only move forward.
var progression = map[string]int{
	OrderStatusPending:       0,
	OrderStatusInPreparation: 1,
	OrderStatusInTransit:     2,
	OrderStatusDelivered:     3,
}

// IsValidOrderStatus reports whether s is one of OrderStatuses.
func IsValidOrderStatus(s string) bool {
	for _, status := range OrderStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// IsTerminalOrderStatus reports whether no further transition is allowed from s.
func IsTerminalOrderStatus(s string) bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CheckOrderTransition validates moving an order from one status to another.
// Setting the current status again is accepted as a no-op.
func CheckOrderTransition(from, to string) error {
	if !IsValidOrderStatus(to) {
		return fmt.Errorf("%w: %q", ErrInvalidOrderStatus, to)
	}
	if from == to {
		return nil
	}
	if IsTerminalOrderStatus(from) {
		return fmt.Errorf("%w: order is already %s", ErrInvalidOrderTransition, from)
	}
	if to == OrderStatusCancelled {
		return nil
	}
	if progression[to] < progression[from] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidOrderTransition, from, to)
	}
	return nil
}
