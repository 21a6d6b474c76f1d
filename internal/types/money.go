// README: Common money value object used across modules.
package types

// DefaultCurrency is the Sierra Leonean leone.
const DefaultCurrency = "SLE"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func NewMoney(amount int64) Money {
	return Money{Amount: amount, Currency: DefaultCurrency}
}
