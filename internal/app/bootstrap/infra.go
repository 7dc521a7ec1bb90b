package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/config"
	"github.com/praneeth552/Jobfinder/internal/infra/httpclient"
	"github.com/praneeth552/Jobfinder/internal/infra/mailer"
	mongoinfra "github.com/praneeth552/Jobfinder/internal/infra/mongo"
	"github.com/praneeth552/Jobfinder/internal/infra/queue"
	mongorepo "github.com/praneeth552/Jobfinder/internal/repo/mongo"
	pgrepo "github.com/praneeth552/Jobfinder/internal/repo/postgres"
	redrepo "github.com/praneeth552/Jobfinder/internal/repo/redis"
)

// Infra holds the shared connections. Mongo is required; Postgres, Redis
// and the mail queue are optional and left nil when unavailable.
type Infra struct {
	Mongo     *mongodrv.Client
	DB        *mongodrv.Database
	Postgres  *pgxpool.Pool
	Redis     *goredis.Client
	Publisher *queue.Publisher
}

func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Infra, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	client, err := mongoinfra.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return nil, err
	}
	infra := &Infra{
		Mongo: client,
		DB:    client.Database(cfg.Mongo.Database),
	}
	if err := mongorepo.EnsureIndexes(ctx, infra.DB); err != nil {
		log.Warn("ensure mongo indexes failed", zap.Error(err))
	}

	if cfg.Postgres.DSN != "" {
		if pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
			log.Warn("postgres init failed, continuing without billing journal", zap.Error(err))
		} else {
			infra.Postgres = pool
		}
	}

	if cfg.Redis.Addr != "" {
		if rc, err := redrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			log.Warn("redis init failed, continuing without locks and reminder dedupe", zap.Error(err))
		} else {
			infra.Redis = rc
		}
	}

	return infra, nil
}

// Sender picks the mail transport named by mail.delivery.
func (i *Infra) Sender(cfg config.Config, log *zap.Logger) mailer.Sender {
	switch cfg.Mail.Delivery {
	case "queue":
		if i.Publisher == nil {
			i.Publisher = queue.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		}
		return i.Publisher
	case "direct":
		return DirectSender(cfg)
	default:
		return mailer.NewLogSender(log)
	}
}

func DirectSender(cfg config.Config) mailer.Sender {
	return mailer.NewPostmarkSender(
		cfg.Mail.PostmarkToken,
		cfg.Mail.PostmarkURL,
		cfg.Mail.From,
		httpclient.New(cfg.Mail.Timeout),
	)
}

func (i *Infra) Close(ctx context.Context) error {
	var errs []error
	if i.Publisher != nil {
		errs = append(errs, i.Publisher.Close())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.Postgres != nil {
		i.Postgres.Close()
	}
	if i.Mongo != nil {
		errs = append(errs, i.Mongo.Disconnect(ctx))
	}
	return errors.Join(errs...)
}
