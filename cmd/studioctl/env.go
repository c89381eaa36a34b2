package main

import (
	"github.com/ibheros/studio/internal/constants"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envDefaults 读取 STUDIO_* 环境变量作为参数默认值
func envDefaults() *viper.Viper {
	_ = godotenv.Load()
	v := viper.New()
	v.SetEnvPrefix("STUDIO")
	v.AutomaticEnv()
	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("token", "")
	v.SetDefault("lang", constants.LocaleZH)
	v.SetDefault("view", constants.ViewModeGrid)
	v.SetDefault("dir", ".")
	return v
}
