package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/globetrotter/trip-planner-api/internal/adapters/httpapi"
	memcityrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/cityrepo"
	memidempotency "github.com/globetrotter/trip-planner-api/internal/adapters/memory/idempotency"
	memitineraryrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/itineraryrepo"
	mempackingrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/packingrepo"
	memtravelerrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/travelerrepo"
	memtriprepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/triprepo"
	postgres "github.com/globetrotter/trip-planner-api/internal/adapters/postgres"
	pgcityrepo "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/cityrepo"
	pgidempotency "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/idempotency"
	pgitineraryrepo "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/itineraryrepo"
	pgpackingrepo "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/packingrepo"
	pgtravelerrepo "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/travelerrepo"
	pgtriprepo "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/triprepo"
	redisadapter "github.com/globetrotter/trip-planner-api/internal/adapters/redis"
	redisidempotency "github.com/globetrotter/trip-planner-api/internal/adapters/redis/idempotency"
	"github.com/globetrotter/trip-planner-api/internal/app/destinations"
	"github.com/globetrotter/trip-planner-api/internal/app/packing"
	"github.com/globetrotter/trip-planner-api/internal/app/planner"
	"github.com/globetrotter/trip-planner-api/internal/app/travelers"
	"github.com/globetrotter/trip-planner-api/internal/app/trips"
	"github.com/globetrotter/trip-planner-api/internal/itinerary"
	"github.com/globetrotter/trip-planner-api/internal/platform/auth/jwtverifier"
	platformclock "github.com/globetrotter/trip-planner-api/internal/platform/clock"
	"github.com/globetrotter/trip-planner-api/internal/platform/config"
	"github.com/globetrotter/trip-planner-api/internal/platform/logging"
	cityrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/cityrepo"
	clockport "github.com/globetrotter/trip-planner-api/internal/ports/out/clock"
	idempotencyport "github.com/globetrotter/trip-planner-api/internal/ports/out/idempotency"
	itineraryrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/itineraryrepo"
	packingrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/packingrepo"
	travelerrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/travelerrepo"
	triprepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/triprepo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("api exited")
	}
}

type repositories struct {
	travelers  travelerrepoport.Repository
	trips      triprepoport.Repository
	itinerary  itineraryrepoport.Repository
	packing    packingrepoport.Repository
	cities     cityrepoport.Repository
	idem       idempotencyport.Store
	closeFuncs []func()
}

func (r *repositories) close() {
	for i := len(r.closeFuncs) - 1; i >= 0; i-- {
		r.closeFuncs[i]()
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	var (
		authMW     func(http.Handler) http.Handler
		authIssuer string
	)
	switch cfg.Auth.Mode {
	case config.AuthModeDev:
		log.Warn("dev auth enabled: X-Debug-Subject is trusted")
		authMW = httpapi.NewDevAuthMiddleware(cfg.Auth.DevSubject)
		authIssuer = "dev"
	default:
		authMW = httpapi.NewAuthMiddleware(jwtverifier.New(cfg.Auth.JWT()))
		authIssuer = cfg.Auth.Issuer
	}

	clk := platformclock.NewSystemClock()
	repos, err := openRepositories(ctx, cfg, authIssuer, clk, log)
	if err != nil {
		return err
	}
	defer repos.close()

	policy := itinerary.Policy{
		Limit:       cfg.Budget.Limit,
		NightlyRate: cfg.Budget.NightlyRate,
		Transport:   itinerary.PerLegTransport{Rate: cfg.Budget.PerLegRate},
	}

	tripSvc := trips.NewService(repos.trips, repos.travelers, repos.itinerary, repos.packing, clk)
	tripSvc.Policy = policy
	tripSvc.ShareBaseURL = cfg.Sharing.PublicBaseURL
	plannerSvc := planner.NewService(repos.trips, repos.itinerary, repos.cities, clk)
	plannerSvc.Policy = policy

	api := httpapi.NewServer(httpapi.Services{
		Travelers:    travelers.NewService(repos.travelers, clk),
		Trips:        tripSvc,
		Planner:      plannerSvc,
		Packing:      packing.NewService(repos.trips, repos.packing, clk),
		Destinations: destinations.NewService(repos.cities),
	}, repos.idem, log)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           httpapi.NewRouter(api, httpapi.RouterOptions{AuthMiddleware: authMW, Logger: log}),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"storage": cfg.Storage.Backend,
			"auth":    cfg.Auth.Mode,
		}).Info("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openRepositories(ctx context.Context, cfg *config.Config, issuer string, clk clockport.Clock, log *logrus.Logger) (*repositories, error) {
	repos := &repositories{}

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		repos.closeFuncs = append(repos.closeFuncs, pool.Close)
		if cfg.Database.AutoMigrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				repos.close()
				return nil, err
			}
			log.WithField("versions", applied).Info("migrations applied")
		}
		repos.travelers = pgtravelerrepo.NewRepo(pool)
		repos.trips = pgtriprepo.NewRepo(pool)
		repos.itinerary = pgitineraryrepo.NewRepo(pool)
		repos.packing = pgpackingrepo.NewRepo(pool)
		repos.cities = pgcityrepo.NewRepo(pool)
		idem := pgidempotency.NewStore(pool, issuer)
		idem.MaxAge = cfg.Storage.IdempotencyTTL
		repos.idem = idem
	default:
		repos.travelers = memtravelerrepo.NewRepo()
		memTrips := memtriprepo.NewRepo()
		repos.trips = memTrips
		repos.itinerary = memitineraryrepo.NewRepoWithTrips(memTrips)
		repos.packing = mempackingrepo.NewRepo()
		repos.cities = memcityrepo.NewRepo(memcityrepo.DefaultCatalog()...)
		repos.idem = memidempotency.NewStoreWithTTL(clk, cfg.Storage.IdempotencyTTL)
	}

	if cfg.Storage.RedisIdempotency {
		client, err := redisadapter.NewClient(ctx, cfg.Redis)
		if err != nil {
			repos.close()
			return nil, err
		}
		repos.closeFuncs = append(repos.closeFuncs, func() { _ = client.Close() })
		repos.idem = redisidempotency.NewStore(client, cfg.Storage.IdempotencyTTL)
		log.WithField("addr", cfg.Redis.Addr).Info("idempotency records stored in redis")
	}

	return repos, nil
}
