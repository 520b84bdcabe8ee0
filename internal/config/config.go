// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment は実行環境を表す。環境ごとの設定ファイル名に対応する。
type Environment string

const (
	EnvironmentLocal      Environment = "local"
	EnvironmentProduction Environment = "production"
)

// ParseEnvironment は文字列からEnvironmentを解析する。大文字小文字は区別しない。
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local":
		return EnvironmentLocal, nil
	case "production":
		return EnvironmentProduction, nil
	default:
		return "", fmt.Errorf("%q is not a supported environment, use either `local` or `production`", s)
	}
}

// Config はアプリケーション全体の設定を保持する。
// 起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	Environment Environment         `yaml:"-"`
	Application ApplicationSettings `yaml:"application"`
	Database    DatabaseSettings    `yaml:"database"`
	Log         LogSettings         `yaml:"log"`
	Metrics     MetricsSettings     `yaml:"metrics"`
}

// ApplicationSettings はHTTPサーバーの待ち受け設定。
type ApplicationSettings struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address は host:port 形式の待ち受けアドレスを返す。
func (a ApplicationSettings) Address() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// DatabaseSettings はPostgreSQLの接続設定。
type DatabaseSettings struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	DatabaseName string `yaml:"database_name"`
	RequireSSL   bool   `yaml:"require_ssl"`
}

// ConnectionString はデータベース名を含む接続URLを返す。
func (d DatabaseSettings) ConnectionString() string {
	u := d.baseURL()
	u.Path = "/" + d.DatabaseName
	return u.String()
}

// ConnectionStringWithoutDB はデータベース名を含まない管理用の接続URLを返す。
// CREATE DATABASE など特定のデータベースに依存しない操作に使用する。
func (d DatabaseSettings) ConnectionStringWithoutDB() string {
	u := d.baseURL()
	return u.String()
}

// WithDatabaseName はデータベース名のみを差し替えたコピーを返す。
func (d DatabaseSettings) WithDatabaseName(name string) DatabaseSettings {
	d.DatabaseName = name
	return d
}

func (d DatabaseSettings) baseURL() *url.URL {
	sslMode := "disable"
	if d.RequireSSL {
		sslMode = "require"
	}
	return &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.Username, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
}

// LogSettings はログ出力の設定。
type LogSettings struct {
	Level string `yaml:"level"`
}

// SlogLevel はLevelをslog.Levelに変換する。
func (l LogSettings) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}

// MetricsSettings はPrometheusメトリクス公開用リスナーの設定。
// Portが0の場合はメトリクスを公開しない。
type MetricsSettings struct {
	Port int `yaml:"port"`
}

// Enabled はメトリクス公開が有効かどうかを返す。
func (m MetricsSettings) Enabled() bool {
	return m.Port != 0
}

// Default は組み込みのデフォルト設定を返す。
func Default() *Config {
	return &Config{
		Environment: EnvironmentLocal,
		Application: ApplicationSettings{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Database: DatabaseSettings{
			Username:     "postgres",
			Password:     "password",
			Host:         "localhost",
			Port:         5432,
			DatabaseName: "newsletter",
		},
		Log: LogSettings{Level: "info"},
	}
}

// Load は設定を読み込む。後に読み込んだものが優先される。
//
//	デフォルト値 → <dir>/base.yaml → <dir>/<APP_ENVIRONMENT>.yaml → .env → APP_* 環境変数
//
// 設定ファイルが存在しない場合は読み飛ばす。
func Load() (*Config, error) {
	// .envは既存の環境変数を上書きしない
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	env, err := ParseEnvironment(getEnvString("APP_ENVIRONMENT", string(EnvironmentLocal)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse APP_ENVIRONMENT: %w", err)
	}

	dir := getEnvString("APP_CONFIG_DIR", "configuration")

	cfg := Default()
	cfg.Environment = env

	for _, name := range []string{"base.yaml", string(env) + ".yaml"} {
		if err := loadFile(filepath.Join(dir, name), cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile はYAMLファイルをcfgに上書きで読み込む。ファイルが無い場合は何もしない。
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnv はAPP_*環境変数で設定を上書きする。
func applyEnv(cfg *Config) {
	cfg.Application.Host = getEnvString("APP_APPLICATION_HOST", cfg.Application.Host)
	cfg.Application.Port = getEnvInt("APP_APPLICATION_PORT", cfg.Application.Port)

	cfg.Database.Username = getEnvString("APP_DATABASE_USERNAME", cfg.Database.Username)
	cfg.Database.Password = getEnvString("APP_DATABASE_PASSWORD", cfg.Database.Password)
	cfg.Database.Host = getEnvString("APP_DATABASE_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("APP_DATABASE_PORT", cfg.Database.Port)
	cfg.Database.DatabaseName = getEnvString("APP_DATABASE_NAME", cfg.Database.DatabaseName)
	cfg.Database.RequireSSL = getEnvBool("APP_DATABASE_REQUIRE_SSL", cfg.Database.RequireSSL)

	cfg.Log.Level = getEnvString("APP_LOG_LEVEL", cfg.Log.Level)

	cfg.Metrics.Port = getEnvInt("APP_METRICS_PORT", cfg.Metrics.Port)
}

// Validate は設定値の整合性を検証する。
func (c *Config) Validate() error {
	var problems []string

	if c.Application.Host == "" {
		problems = append(problems, "application.host is empty")
	}
	if !validPort(c.Application.Port) {
		problems = append(problems, fmt.Sprintf("application.port %d is out of range", c.Application.Port))
	}
	if c.Database.Host == "" {
		problems = append(problems, "database.host is empty")
	}
	if !validPort(c.Database.Port) {
		problems = append(problems, fmt.Sprintf("database.port %d is out of range", c.Database.Port))
	}
	if c.Database.Username == "" {
		problems = append(problems, "database.username is empty")
	}
	if c.Database.DatabaseName == "" {
		problems = append(problems, "database.database_name is empty")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Metrics.Enabled() && !validPort(c.Metrics.Port) {
		problems = append(problems, fmt.Sprintf("metrics.port %d is out of range", c.Metrics.Port))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %v", problems)
	}
	return nil
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
