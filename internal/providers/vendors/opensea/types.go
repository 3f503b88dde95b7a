package opensea

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// NFT is the marketplace representation of one token.
// Every field is optional; the upstream omits or nulls them freely.
type NFT struct {
	Identifier  string    `json:"identifier"`
	Collection  string    `json:"collection"`
	Contract    string    `json:"contract"`
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	Creator     *Account  `json:"creator"`
	Owners      []Account `json:"owners"`
	LastSale    *Sale     `json:"last_sale"`
	Chain       string    `json:"chain,omitempty"`
}

// Account is a creator or owner. The upstream sends either a bare
// address string or a profile object.
type Account struct {
	Address       string `json:"address"`
	ProfileImgURL string `json:"profile_img_url"`
	Config        string `json:"config"`
	User          *User  `json:"user"`
}

// User holds the public profile of an account
type User struct {
	Username string `json:"username"`
}

// Sale is the most recent sale of a token
type Sale struct {
	// TotalPrice is expressed in the smallest unit of the payment token
	TotalPrice   decimal.Decimal `json:"total_price"`
	PaymentToken *PaymentToken   `json:"payment_token"`
}

// PaymentToken describes the currency of a sale
type PaymentToken struct {
	Symbol   string `json:"symbol"`
	Decimals *int32 `json:"decimals"`
}

// UnmarshalJSON accepts a bare address string or a profile object
func (a *Account) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.Address)
	}

	type plain Account
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Account(p)
	return nil
}

// Username returns the profile username, if any
func (a *Account) Username() string {
	if a == nil || a.User == nil {
		return ""
	}
	return a.User.Username
}

// Verified reports whether the marketplace marks the account as verified
func (a *Account) Verified() bool {
	return a != nil && a.Config == "verified"
}
