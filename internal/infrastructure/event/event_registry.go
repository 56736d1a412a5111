package event

import (
	"github.com/crm/backend/internal/domain/partner"
)

// RegisterAllEvents registers all domain event types with the serializer.
// EventHistory needs this to rebuild the events it stores.
func RegisterAllEvents(serializer *EventSerializer) {
	// Customer lifecycle
	serializer.Register(partner.EventTypeCustomerCreated, &partner.CustomerCreatedEvent{})
	serializer.Register(partner.EventTypeCustomerUpdated, &partner.CustomerUpdatedEvent{})
	serializer.Register(partner.EventTypeCustomerDeleted, &partner.CustomerDeletedEvent{})

	// Contract
	serializer.Register(partner.EventTypeContractSigned, &partner.ContractEvent{})
	serializer.Register(partner.EventTypeContractTerminated, &partner.ContractEvent{})
	serializer.Register(partner.EventTypeContractRenewed, &partner.ContractEvent{})

	// Purchases and payments
	serializer.Register(partner.EventTypePurchaseAdded, &partner.PurchaseAddedEvent{})
	serializer.Register(partner.EventTypePaymentAccepted, &partner.PaymentAcceptedEvent{})

	// Tier-specific
	serializer.Register(partner.EventTypeBonusPointsChanged, &partner.BonusPointsChangedEvent{})
	serializer.Register(partner.EventTypePersonalManagerAssigned, &partner.PersonalManagerAssignedEvent{})
	serializer.Register(partner.EventTypePaymentDeferralChanged, &partner.PaymentDeferralChangedEvent{})
	serializer.Register(partner.EventTypeMinimumOrderChanged, &partner.MinimumOrderChangedEvent{})
}
