package main

import (
	"fmt"
	"os"

	"github.com/TEENet-io/claims-go/cmd"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ENV_CONFIG_FILE_PATH = "CLAIM_USER_CONFIG"
)

var claimUser *cmd.ClaimUser

var rootCmd = &cobra.Command{
	Use:   "claim_user_cmd",
	Short: "Claimant CLI for the claims server",
	Long:  "Signs the claim message with an ethereum key and submits it to a claims server.",
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		if err := initializeViper(); err != nil {
			return err
		}

		cu, err := cmd.NewClaimUser(&cmd.ClaimUserConfig{
			EthPrivKey:  viper.GetString("ETH_PRIV_KEY"),
			Account:     viper.GetString("CLAIM_ACCOUNT"),
			ClaimPrefix: viper.GetString("CLAIM_PREFIX"),
			ServerIp:    viper.GetString("SERVER_IP"),
			ServerPort:  viper.GetString("SERVER_PORT"),
		})
		if err != nil {
			return fmt.Errorf("creating claim user: %w", err)
		}
		claimUser = cu

		fmt.Printf("Your ETH address: %s\n", cu.GetAddress().Hex())
		fmt.Printf("Account to credit: %s\n", cu.AccountHex())
		return nil
	},
}

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Print the message that gets signed",
	RunE: func(c *cobra.Command, args []string) error {
		fmt.Printf("Message to sign: %q\n", claimUser.Message())
		return nil
	},
}

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign the claim offline and print the signature",
	RunE: func(c *cobra.Command, args []string) error {
		sig, err := claimUser.Sign()
		if err != nil {
			return err
		}
		fmt.Printf("Signature: %s\n", sig.Hex())
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Query the claimable balance of the ETH address",
	RunE: func(c *cobra.Command, args []string) error {
		b, err := claimUser.Claimable()
		if err != nil {
			return err
		}
		fmt.Printf("Claimable: %s\n", b)
		return nil
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Sign and submit the claim",
	RunE: func(c *cobra.Command, args []string) error {
		amount, err := claimUser.Claim()
		if err != nil {
			return err
		}
		fmt.Printf("Claimed: %s\n", amount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(messageCmd, signCmd, balanceCmd, claimCmd)
}

// Env vars always work, a config file is optional.
func initializeViper() error {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_IP", "127.0.0.1")
	viper.SetDefault("SERVER_PORT", "8080")

	_config_file := viper.GetString(ENV_CONFIG_FILE_PATH)
	if _config_file == "" {
		return nil
	}
	if !cmd.FileExists(_config_file) {
		return fmt.Errorf("claim user configuration file not found: %s", _config_file)
	}
	viper.SetConfigFile(_config_file)
	return viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
