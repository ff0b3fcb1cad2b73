package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sngm3741/webform-relay/internal/config"
	mongodoc "github.com/sngm3741/webform-relay/internal/infrastructure/mongo"
	"github.com/sngm3741/webform-relay/internal/message/application"
	"github.com/sngm3741/webform-relay/internal/relay"
	"go.mongodb.org/mongo-driver/mongo"
)

// Relay は永続化側。MongoDB クライアントを1つだけ保持し、設定されたトランスポート経由で届いた投稿を保存する。
type Relay struct {
	cfg     config.Config
	logger  *log.Logger
	client  *mongo.Client
	handler *relay.MessageHandler
}

// NewRelay はリポジトリ、永続化サービス、コーデックを接続する。
func NewRelay(cfg config.Config, client *mongo.Client) (*Relay, error) {
	codec, err := relay.NewCodec(cfg.RelayCodec)
	if err != nil {
		return nil, err
	}
	repo := mongodoc.NewMessageRepository(client.Database(cfg.MongoDatabase), cfg.MessageCollection)
	persist := application.NewPersistService(repo, cfg.Location)

	return &Relay{
		cfg:     cfg,
		logger:  cfg.ServerLog,
		client:  client,
		handler: relay.NewMessageHandler(codec, persist, cfg.ServerLog, cfg.Timeout),
	}, nil
}

// Run は ctx がキャンセルされるまで受信を続け、処理中の保存が終わってから MongoDB を切断する。
func (r *Relay) Run(ctx context.Context) error {
	defer r.shutdown()

	switch r.cfg.RelayTransport {
	case config.TransportNATS:
		nc, err := nats.Connect(r.cfg.NatsURL)
		if err != nil {
			return fmt.Errorf("connect NATS at %s: %w", r.cfg.NatsURL, err)
		}
		defer nc.Close()
		r.logger.Printf("Connected to NATS server at %s", nc.ConnectedUrl())
		return relay.NewSubscriber(nc, r.cfg.NatsSubject, r.handler, r.logger).Run(ctx)
	default:
		return relay.NewListener(relay.ListenerConfig{
			Addr:       r.cfg.RelayListenAddr,
			Handler:    r.handler,
			ReadBuffer: r.cfg.RelayReadBuffer,
			Logger:     r.logger,
		}).ListenAndServe(ctx)
	}
}

func (r *Relay) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Disconnect(ctx); err != nil {
		r.logger.Printf("error disconnecting from MongoDB: %v", err)
	}
}

// NewSender は設定されたトランスポート用の送信側を作る。
// 返す close 関数でトランスポートの接続を解放する。
func NewSender(cfg config.Config) (relay.Sender, func(), error) {
	codec, err := relay.NewCodec(cfg.RelayCodec)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.RelayTransport {
	case config.TransportNATS:
		nc, err := nats.Connect(cfg.NatsURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect NATS at %s: %w", cfg.NatsURL, err)
		}
		return relay.NewNATSSender(nc, cfg.NatsSubject, codec, cfg.RelayDialTimeout), nc.Close, nil
	default:
		return relay.NewTCPSender(cfg.RelayAddr, codec, cfg.RelayDialTimeout), func() {}, nil
	}
}
