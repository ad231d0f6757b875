package main

import (
	"context"
	"errors"
	"log"
	"time"

	"shop/internal/config"
	"shop/internal/domain/model"
	"shop/internal/handler"
	"shop/internal/infra/db"
	"shop/internal/infra/events"
	"shop/internal/infra/ledger"
	infraRepo "shop/internal/infra/repository"
	"shop/internal/repository"
	"shop/internal/server"
	"shop/internal/usecase"
	auth "shop/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(email string, role model.Role, forename string, surname string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":      email,
		"role":     string(role),
		"forename": forename,
		"surname":  surname,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// 起動のたびにownerアカウントを確認して、無ければ作る
func seedOwner(ctx context.Context, users repository.UserRepository, hasher auth.PasswordHasher, email string, password string) error {
	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}

	return users.Create(ctx, &model.User{
		Forename:     "Shop",
		Surname:      "Owner",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleOwner,
		CreatedAt:    time.Now(),
	})
}

func main() {
	//.envは無ければ環境変数だけで動く
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg.PostgresDSN())
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.Category{},
		&model.ProductCategory{},
		&model.Order{},
		&model.OrderItem{},
		&model.CourierAssignment{},
	); err != nil {
		panic(err)
	}

	//集計用のpgxプール（レポート系はGORMを通さない）
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN())
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	//Repository（GORM実装）生成
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	statsRepo := infraRepo.NewStatsPgxRepository(pool)

	//エスクロークライアント（設定がそろっていなければ無効モード）
	var escrowClient usecase.EscrowClient
	if cfg.EscrowConfigured() {
		ethClient, err := ledger.NewEthEscrowClient(ledger.Config{
			RPCURL:       cfg.EthRPCURL,
			OwnerKeyHex:  cfg.OwnerPrivateKey,
			BytecodePath: cfg.EscrowBytecodePath,
			ChainID:      cfg.EthChainID,
			CallTimeout:  cfg.EscrowCallTimeout,
		})
		if err != nil {
			panic(err)
		}
		escrowClient = ethClient
	} else {
		log.Printf("escrow not configured, chain features disabled")
		escrowClient = ledger.NewDisabledClient()
	}

	//注文イベント（AMQP_URLが無ければno-op）
	var publisher usecase.EventPublisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, "shop.orders")
		if err != nil {
			panic(err)
		}
		defer amqpPub.Close()
		publisher = amqpPub
	}

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := &jwtIssuer{secret: []byte(cfg.JWTSecret), accessTTL: time.Hour}
	refreshTTL := 14 * 24 * time.Hour

	//owner seed
	if err := seedOwner(ctx, userRepo, hasher, cfg.OwnerEmail, cfg.OwnerPassword); err != nil {
		panic(err)
	}

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher)
	loginUC := auth.NewLoginUsecase(userRepo, rtRepo, verifier, issuer, idGen, clock, refreshTTL)
	refreshUC := auth.NewRefreshUsecase(userRepo, rtRepo, issuer, idGen, clock, refreshTTL)
	deleteUC := auth.NewDeleteAccountUsecase(txManager)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, productRepo, escrowClient, publisher)
	courierUC := usecase.NewCourierUsecase(txManager, orderRepo, escrowClient, publisher)
	catalogUC := usecase.NewCatalogUsecase(txManager, productRepo, categoryRepo)
	statsUC := usecase.NewStatsUsecase(statsRepo)

	//Handler生成
	h := server.Handlers{
		Auth:    handler.NewAuthHandler(registerUC, loginUC, refreshUC, deleteUC, refreshTTL),
		Order:   handler.NewOrderHandler(orderUC),
		Courier: handler.NewCourierHandler(courierUC),
		Catalog: handler.NewCatalogHandler(catalogUC),
		Stats:   handler.NewStatsHandler(statsUC),
	}

	//Server起動
	if err := server.Start(cfg, h); err != nil {
		panic(err)
	}
}
