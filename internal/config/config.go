package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート
	PostgresSSLMode  string

	JWTSecret string // JWT署名シークレット

	// 初回起動で作るownerアカウント
	OwnerEmail    string
	OwnerPassword string

	// エスクロー（全部そろったときだけ有効）
	EthRPCURL          string // チェーンのRPCエンドポイント
	OwnerPrivateKey    string // ownerの署名キー（hex）
	EscrowBytecodePath string // コンパイル済みコントラクトのbinファイル
	EthChainID         int64
	EscrowCallTimeout  time.Duration

	// 注文イベント配信（空なら無効）
	AMQPURL string
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		OwnerEmail:    os.Getenv("OWNER_EMAIL"),
		OwnerPassword: os.Getenv("OWNER_PASSWORD"),

		EthRPCURL:          os.Getenv("ETH_RPC_URL"),
		OwnerPrivateKey:    os.Getenv("OWNER_PRIVATE_KEY"),
		EscrowBytecodePath: os.Getenv("ESCROW_BYTECODE_PATH"),

		AMQPURL: os.Getenv("AMQP_URL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.OwnerEmail == "" {
		return Config{}, fmt.Errorf("OWNER_EMAIL is required")
	}
	if cfg.OwnerPassword == "" {
		return Config{}, fmt.Errorf("OWNER_PASSWORD is required")
	}

	if v := os.Getenv("ETH_CHAIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("ETH_CHAIN_ID must be number: %w", err)
		}
		cfg.EthChainID = id
	}

	cfg.EscrowCallTimeout = 30 * time.Second
	if v := os.Getenv("ESCROW_CALL_TIMEOUT_SECONDS"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec <= 0 {
			return Config{}, fmt.Errorf("ESCROW_CALL_TIMEOUT_SECONDS must be positive number")
		}
		cfg.EscrowCallTimeout = time.Duration(sec) * time.Second
	}

	return cfg, nil
}

// エスクロー連携に必要な設定がそろっているか
func (c Config) EscrowConfigured() bool {
	return c.EthRPCURL != "" && c.OwnerPrivateKey != "" && c.EscrowBytecodePath != ""
}

// gormとpgxの両方で使うDSN
func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
