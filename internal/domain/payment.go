package domain

// PaymentDetails is the user's payout record held by the payments service.
// Trading is gated on a complete record.
type PaymentDetails struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	IFSC          string `json:"ifsc"`
	UPIID         string `json:"upiId"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
}

// Complete reports whether every field required for trading is present.
// PhoneNumber is collected by the payments form but not required by the gate.
func (p *PaymentDetails) Complete() bool {
	if p == nil {
		return false
	}
	return p.BankName != "" && p.AccountNumber != "" && p.IFSC != "" && p.UPIID != ""
}
