package state

import (
	"errors"
	"fmt"

	"github.com/TEENet-io/claims-go/common"
	"github.com/spf13/viper"
)

var ErrInvalidGenesis = errors.New("invalid genesis file")

type genesisEntry struct {
	Address string `mapstructure:"address"`
	Balance interface{} `mapstructure:"balance"` // must be a string
}

type genesisFile struct {
	Claims []genesisEntry `mapstructure:"claims"`
}

// LoadGenesisFile reads the initial claims from a json, yaml or toml file
// shaped as
//
//	{"claims": [{"address": "0x..", "balance": "100"}]}
//
// Balances must be decimal strings. Numbers are rejected since the file
// decoders turn them into float64 and drop precision.
func LoadGenesisFile(path string) ([]*Claim, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read genesis file: %w", err)
	}

	var gf genesisFile
	if err := v.Unmarshal(&gf); err != nil {
		return nil, fmt.Errorf("decode genesis file: %w", err)
	}

	claims := make([]*Claim, 0, len(gf.Claims))
	for i, e := range gf.Claims {
		addr, err := common.HexStrToEthAddress(e.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: claim %d: address %q", ErrInvalidGenesis, i, e.Address)
		}
		str, isStr := e.Balance.(string)
		if !isStr {
			return nil, fmt.Errorf("%w: claim %d: balance %v is not a quoted decimal string", ErrInvalidGenesis, i, e.Balance)
		}
		balance, ok := common.ParseBalance(str)
		if !ok {
			return nil, fmt.Errorf("%w: claim %d: balance %q", ErrInvalidGenesis, i, e.Balance)
		}
		claims = append(claims, &Claim{Address: addr, Balance: balance})
	}

	return claims, nil
}
