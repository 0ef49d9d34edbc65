package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mitchellh/mapstructure"

	"github.com/AvaProtocol/aa-provider/pkg/erc4337/paymaster"
)

type paymasterContextRaw struct {
	Type       string `mapstructure:"type"`
	ChainID    *int64 `mapstructure:"chainId"`
	SponsorSig string `mapstructure:"sponsorSig"`
	Token      string `mapstructure:"token"`
}

// decodePaymasterContext turns the free form context block of the config into
// a typed paymaster context. An empty block yields nil.
func decodePaymasterContext(raw map[string]interface{}) (paymaster.Context, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var ctxRaw paymasterContextRaw
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &ctxRaw,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid paymaster context: %w", err)
	}

	switch ctxRaw.Type {
	case paymaster.ContextTypePayAsYouGo:
		return paymaster.PayAsYouGo{ChainID: ctxRaw.ChainID, SponsorSig: ctxRaw.SponsorSig}, nil
	case paymaster.ContextTypeERC20Token:
		if !common.IsHexAddress(ctxRaw.Token) {
			return nil, fmt.Errorf("invalid paymaster context: token %q is not an address", ctxRaw.Token)
		}
		return paymaster.ERC20Token{Token: common.HexToAddress(ctxRaw.Token)}, nil
	default:
		return nil, fmt.Errorf("invalid paymaster context: unknown type %q", ctxRaw.Type)
	}
}
