package models

// DigestRequest asks for a class's overdue-fee digest to be sent to a recipient.
// An empty To falls back to the configured bursar.
type DigestRequest struct {
	To string `json:"to"`
}

// PaymentRequest applies a payment to a fee record. Amount must be present;
// its value is checked by FeeRecord.ApplyPayment.
type PaymentRequest struct {
	Fee    FeeRecord `json:"fee"`
	Amount *float64  `json:"amount" binding:"required"`
}
