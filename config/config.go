// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers = []string{"sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.public_url", "host_public_url")

	v.BindEnv("jwt.secret", "jwt_secret")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("s3.endpoint", "s3_endpoint")
	v.BindEnv("s3.region", "s3_region")
	v.BindEnv("s3.access_key_id", "s3_access_key_id")
	v.BindEnv("s3.secret_access_key", "s3_secret_access_key")
	v.BindEnv("s3.bucket.images", "s3_bucket_images")
	v.BindEnv("s3.bucket.reels_private", "s3_bucket_reels_private")
	v.BindEnv("s3.bucket.reels_public", "s3_bucket_reels_public")

	v.BindEnv("openai.api_key", "openai_api_key")
	v.BindEnv("openai.base_url", "openai_base_url")
	v.BindEnv("openai.chat_model", "openai_chat_model")
	v.BindEnv("openai.image_model", "openai_image_model")

	v.BindEnv("render.ffmpeg_path", "render_ffmpeg_path")
	v.BindEnv("render.workers", "render_workers")
	v.BindEnv("render.max_jobs", "render_max_jobs")

	v.BindEnv("reel.stylize_budget", "reel_stylize_budget")

	v.BindEnv("upload.max_size", "upload_max_size")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.public_url", "http://localhost:8080")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "journal.db")

	v.SetDefault("s3.region", "auto")
	v.SetDefault("s3.bucket.images", "memory-images")
	v.SetDefault("s3.bucket.reels_private", "reels-private")
	v.SetDefault("s3.bucket.reels_public", "reels-public")

	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.chat_model", "gpt-4o")
	v.SetDefault("openai.image_model", "dall-e-3")

	v.SetDefault("render.ffmpeg_path", "ffmpeg")
	v.SetDefault("render.workers", 2)
	v.SetDefault("render.max_jobs", 8)

	v.SetDefault("reel.stylize_budget", 2)

	// In megabytes until the end of Setup
	v.SetDefault("upload.max_size", 25)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid db driver provided")
	}

	if v.GetString("db.driver") == "postgres" && v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty when using postgres")
	}

	if v.GetString("s3.access_key_id") == "" {
		return errors.New("s3 access key id can't be empty")
	}
	if v.GetString("s3.secret_access_key") == "" {
		return errors.New("s3 secret access key can't be empty")
	}
	for _, b := range []string{"s3.bucket.images", "s3.bucket.reels_private", "s3.bucket.reels_public"} {
		if v.GetString(b) == "" {
			return fmt.Errorf("%s can't be empty", b)
		}
	}

	if v.GetString("openai.api_key") == "" {
		return errors.New("openai api key can't be empty")
	}

	if v.GetInt("render.workers") <= 0 {
		return errors.New("render.workers must be bigger than 0")
	}
	if v.GetInt("render.max_jobs") <= 0 {
		return errors.New("render.max_jobs must be bigger than 0")
	}

	if v.GetInt("reel.stylize_budget") < 0 {
		return errors.New("reel.stylize_budget can't be negative")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}
