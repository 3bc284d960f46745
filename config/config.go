package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	IRC      IRCConfig      `mapstructure:"irc"`
	OsuAPI   OsuAPIConfig   `mapstructure:"osu_api"`
	Bot      BotConfig      `mapstructure:"bot"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	HTTPAddress string `mapstructure:"http_address"`
	RPCAddress  string `mapstructure:"rpc_address"`
}

type IRCConfig struct {
	Server   string `mapstructure:"server"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// BotAccount relaxes the outgoing message rate limit.
	BotAccount bool `mapstructure:"bot_account"`
}

type OsuAPIConfig struct {
	Key string `mapstructure:"key"`
}

type BotConfig struct {
	CommandPrefix   string `mapstructure:"command_prefix"`
	PerformanceURL  string `mapstructure:"performance_url"`
	MetricNamespace string `mapstructure:"metric_namespace"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("irc.server", "irc.ppy.sh:6667")
	viper.SetDefault("bot.command_prefix", "!")
	viper.SetDefault("bot.metric_namespace", "autohost")
	viper.SetDefault("logging.level", "info")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
