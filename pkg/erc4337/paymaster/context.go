package paymaster

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
)

const (
	ContextTypePayAsYouGo = "payg"
	ContextTypeERC20Token = "erc20token"
)

// Context is the third positional parameter of every pm_ call. It tells the
// paymaster how the operation is paid for.
type Context interface {
	Type() string
}

// PayAsYouGo sponsors the operation from the project's credit balance.
type PayAsYouGo struct {
	ChainID    *int64
	SponsorSig string
}

func (PayAsYouGo) Type() string { return ContextTypePayAsYouGo }

func (c PayAsYouGo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       string `json:"type"`
		ChainID    *int64 `json:"chainId,omitempty"`
		SponsorSig string `json:"sponsorSig"`
	}{ContextTypePayAsYouGo, c.ChainID, c.SponsorSig})
}

// ERC20Token lets the sender pay for gas in the given token.
type ERC20Token struct {
	Token common.Address
}

func (ERC20Token) Type() string { return ContextTypeERC20Token }

func (c ERC20Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string         `json:"type"`
		Token common.Address `json:"token"`
	}{ContextTypeERC20Token, c.Token})
}
