package domain

type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentDigitalWallet PaymentMethod = "digital_wallet"
	PaymentBankTransfer  PaymentMethod = "bank_transfer"
)

// CashLimit is the largest order total payable in cash. Above it the
// checkout gate re-maps cash to a digital wallet instead of refusing.
const CashLimit = 1000.0

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentDigitalWallet, PaymentBankTransfer:
		return true
	}
	return false
}

// RequiresReceipt reports whether proof of payment must accompany the
// checkout payload for this method.
func (m PaymentMethod) RequiresReceipt() bool {
	return m == PaymentDigitalWallet || m == PaymentBankTransfer
}

func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentSubstitution records that the gate replaced the requested
// payment method. It is informational, not a failure.
type PaymentSubstitution struct {
	From PaymentMethod `json:"from"`
	To   PaymentMethod `json:"to"`
}
