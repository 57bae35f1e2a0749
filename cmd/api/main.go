package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Tiendas-api/internal/application/auth"
	"github.com/jhoicas/Tiendas-api/internal/application/inventory"
	"github.com/jhoicas/Tiendas-api/internal/application/usecase"
	"github.com/jhoicas/Tiendas-api/internal/domain/repository"
	"github.com/jhoicas/Tiendas-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Tiendas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Tiendas-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Tiendas-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Tiendas-api/internal/interfaces/http"
	"github.com/jhoicas/Tiendas-api/pkg/config"
	"github.com/jhoicas/Tiendas-api/pkg/logger"
)

// storage adaptadores de persistencia elegidos por APP_STORAGE.
type storage struct {
	txRunner inventory.TxRunner
	repos    inventory.TxRepos
	users    repository.UserRepository
	seq      inventory.SequenceGenerator
	// lastSeq último consecutivo persistido; nil si el almacenamiento no lo conserva.
	lastSeq func(ctx context.Context, name string) (int64, error)
	close   func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	// Consecutivos e idempotencia: Redis si está configurado; si no, el respaldo local.
	var (
		seq  = st.seq
		idem inventory.IdempotencyGuard
	)
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		redisSeq, err := seededSequence(ctx, rdb, cfg.Redis.Prefix, st.lastSeq)
		if err != nil {
			log.Fatal().Err(err).Msg("sembrar consecutivos en Redis")
		}
		seq = redisSeq
		idem = infraredis.NewIdempotency(rdb, cfg.Redis.Prefix, cfg.Movements.IdempotencyTTL)
	} else {
		idem = memory.NewIdempotency(cfg.Movements.IdempotencyTTL)
	}

	movementSvc := inventory.NewMovementService(st.txRunner, seq, idem, log.Component("movements"), inventory.ServiceConfig{
		Timeout:              cfg.Movements.Timeout,
		SaleNumberPrefix:     cfg.Movements.SaleNumberPrefix,
		TransferNumberPrefix: cfg.Movements.TransferNumberPrefix,
		Locale:               cfg.Movements.Locale,
	})

	authUC := auth.NewAuthUseCase(st.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.App.AdminEmail != "" {
		created, err := authUC.EnsureAdmin(ctx, cfg.App.AdminEmail, cfg.App.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("crear usuario admin inicial")
		}
		if created {
			log.Info().Str("email", cfg.App.AdminEmail).Msg("usuario admin inicial creado")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Tiendas API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.Storage})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		ProductUC:  usecase.NewProductUseCase(st.repos.Products),
		LocationUC: usecase.NewLocationUseCase(st.repos.Locations),
		InvoiceUC:  usecase.NewInvoiceUseCase(st.txRunner, st.repos.Invoices),
		MovementUC: usecase.NewMovementUseCase(movementSvc),
		StockUC: usecase.NewStockUseCase(
			st.repos.Stock, st.repos.Locations, st.repos.Activities,
			st.repos.Transfers, st.repos.Sales, log.Component("stock"),
		),
		ReceiptUC: usecase.NewReceiptUseCase(
			st.repos.Sales, st.repos.Locations, st.repos.Products, infrapdf.NewReceiptGenerator(),
		),
		JWTSecret: cfg.JWT.Secret,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("servidor HTTP escuchando")
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("servidor HTTP finalizado")
	}
	log.Info().Msg("aplicación detenida")
}

// openStorage abre PostgreSQL (con migración opcional) o el almacenamiento en memoria.
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.App.Storage == "memory" {
		store := memory.NewStore()
		return &storage{
			txRunner: store,
			repos:    store.Repos(),
			users:    store.Users(),
			seq:      memory.NewSequence(),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	seq := postgres.NewSequence(pool)
	return &storage{
		txRunner: postgres.NewTxRunner(pool, cfg.DB.LockTimeoutMs),
		repos:    postgres.Repos(pool),
		users:    postgres.NewUserRepository(pool),
		seq:      seq,
		lastSeq:  seq.Last,
		close:    pool.Close,
	}, nil
}

// seededSequence consecutivos en Redis que continúan desde el último valor persistido.
func seededSequence(ctx context.Context, rdb *goredis.Client, prefix string, last func(context.Context, string) (int64, error)) (*infraredis.Sequence, error) {
	seq := infraredis.NewSequence(rdb, prefix)
	if last == nil {
		return seq, nil
	}
	for _, name := range inventory.SequenceNames {
		n, err := last(ctx, name)
		if err != nil {
			return nil, err
		}
		if err := seq.Seed(ctx, name, n); err != nil {
			return nil, err
		}
	}
	return seq, nil
}
