package main

import (
	"fmt"

	"github.com/TEENet-io/claims-go/cmd"
	"github.com/TEENet-io/claims-go/logconfig"
	"github.com/spf13/viper"
)

const (
	ENV_CONFIG_FILE_PATH = "CLAIMS_CONFIG"
)

func main() {
	// Tool to read environment variables
	viper.AutomaticEnv()

	// Accessing an environment variable of configuration file location.
	_config_file := viper.GetString(ENV_CONFIG_FILE_PATH)
	fmt.Printf("Claims server configuration file = %s\n", _config_file)

	// See if file exists
	if !cmd.FileExists(_config_file) {
		fmt.Printf("Claims server configuration file not found: %s\n", _config_file)
		return
	}

	// Read from config file.
	success := initializeViper(_config_file)
	if !success {
		return
	}

	logconfig.ConfigLoggerByLevel(viper.GetString("LOG_LEVEL"))

	// Make the configuration
	csc := PrepareClaimsServerConfig()

	fmt.Println("Starting claims server... press Ctrl+C to kill the server")
	// Start server and block.
	cmd.StartClaimsServerAndWait(csc)
}

func initializeViper(filePath string) bool {
	viper.SetConfigFile(filePath)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("Error reading configuration file, %s", err)
		return false
	}
	return true
}

// PrepareClaimsServerConfig reads configuration variables and returns a ClaimsServerConfig.
func PrepareClaimsServerConfig() *cmd.ClaimsServerConfig {
	viper.SetDefault("DB_FILE_PATH", "claims.db")
	viper.SetDefault("HTTP_IP", "127.0.0.1")
	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("CHANNEL_SIZE", cmd.CHANNEL_BUFFER_SIZE)

	return &cmd.ClaimsServerConfig{
		DbFilePath:  viper.GetString("DB_FILE_PATH"),
		GenesisFile: viper.GetString("GENESIS_FILE"),
		ClaimPrefix: viper.GetString("CLAIM_PREFIX"),
		HttpIp:      viper.GetString("HTTP_IP"),
		HttpPort:    viper.GetString("HTTP_PORT"),
		ChannelSize: viper.GetInt("CHANNEL_SIZE"),
	}
}
