package port

import "context"

type ChargeRequest struct {
	AmountMinor int64 // minor units, i.e. cents
	Currency    string
	Description string
	CustomerID  string
}

// PaymentGateway is the external charge boundary. Implementations classify
// failures as domain.ErrPaymentDeclined or domain.ErrGatewayUnavailable.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, email, cardToken string) (string, error)
	CreateCharge(ctx context.Context, charge ChargeRequest) (string, error)
}
