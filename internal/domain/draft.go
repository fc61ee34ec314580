package domain

import "time"

// OrderDraft is the transient result of checkout submission. It lives in
// the session store between checkout and the payment attempt and is never
// persisted to the durable store. The draft's total is what gets charged,
// even if the cart changes before payment.
type OrderDraft struct {
	OwnerID   string    `json:"owner_id"`
	Recipient Recipient `json:"recipient"`
	Total     Money     `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}
