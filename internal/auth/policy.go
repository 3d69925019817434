package auth

import (
	"strings"

	"github.com/monocle-dev/bertostore/internal/models"
)

type Resource string

const (
	ResourceSession         Resource = "session"
	ResourceProduct         Resource = "product"
	ResourceInactiveProduct Resource = "inactive_product"
	ResourceOrder           Resource = "order"
	ResourceStats           Resource = "stats"
	ResourceFeed            Resource = "feed"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Allow is the single authorization policy. A nil identity is an anonymous
// caller. Admins are unrestricted; order reads by customers are further
// narrowed to their own orders by CanViewOrder.
func Allow(identity *Identity, resource Resource, action Action) bool {
	if identity.IsAdmin() {
		return true
	}

	switch resource {
	case ResourceSession:
		return true
	case ResourceProduct:
		return action == ActionRead || action == ActionList
	case ResourceOrder:
		switch action {
		case ActionCreate:
			return true
		case ActionRead, ActionList:
			return identity != nil && identity.Role == models.RoleCustomer
		}
	}

	return false
}

// CanViewOrder matches on the customer id, falling back to the shipping
// email so orders placed while signed out show up once the customer logs in.
func CanViewOrder(identity *Identity, order models.Order) bool {
	if identity == nil {
		return false
	}

	if identity.IsAdmin() {
		return true
	}

	if order.CustomerUserID != nil && *order.CustomerUserID == identity.ID {
		return true
	}

	email := strings.TrimSpace(identity.Email)

	return email != "" && strings.EqualFold(strings.TrimSpace(order.Shipping.Email), email)
}
