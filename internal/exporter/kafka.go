package exporter

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
)

type KafkaConfig struct {
	Brokers     string
	Username    string
	Password    string
	TopicPrefix string
}

// KafkaExporter publishes every item as a JSON record to a topic per item
// type. Produce errors are reported by the next Export or by Close.
type KafkaExporter struct {
	cfg KafkaConfig

	mu       sync.RWMutex
	client   *kgo.Client
	inflight sync.WaitGroup

	errMu    sync.Mutex
	firstErr error
}

func NewKafkaExporter(cfg KafkaConfig) *KafkaExporter {
	return &KafkaExporter{cfg: cfg}
}

func (e *KafkaExporter) Open(ctx context.Context, schemas ...*common.Schema) error {
	if e.cfg.Brokers == "" {
		return fmt.Errorf("%w: no kafka brokers configured", common.ErrConfiguration)
	}
	brokers := strings.Split(e.cfg.Brokers, ",")
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ClientID("ethereumetl"),
		kgo.MaxBufferedRecords(1_000_000),
		kgo.ProducerBatchMaxBytes(16_000_000),
		kgo.MetadataMaxAge(60 * time.Second),
		kgo.DialTimeout(10 * time.Second),
	}
	if e.cfg.Username != "" && e.cfg.Password != "" {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: e.cfg.Username,
			Pass: e.cfg.Password,
		}.AsMechanism()))
		tlsDialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: 10 * time.Second}}
		opts = append(opts, kgo.Dialer(tlsDialer.DialContext))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return fmt.Errorf("failed to create Kafka client: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}

	e.mu.Lock()
	e.client = client
	e.mu.Unlock()
	return nil
}

func (e *KafkaExporter) Export(ctx context.Context, item common.Item) error {
	record, err := KafkaRecord(e.cfg.TopicPrefix, item)
	if err != nil {
		return err
	}

	if err := e.produceErr(); err != nil {
		return err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.client == nil {
		return fmt.Errorf("exporter is not open")
	}
	e.inflight.Add(1)
	e.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		defer e.inflight.Done()
		if err != nil {
			log.Error().Err(err).Str("topic", r.Topic).Msg("Failed to publish item to Kafka")
			e.errMu.Lock()
			if e.firstErr == nil {
				e.firstErr = fmt.Errorf("failed to publish to %s: %w", r.Topic, err)
			}
			e.errMu.Unlock()
		}
	})
	return nil
}

func (e *KafkaExporter) Close(ctx context.Context) error {
	e.mu.Lock()
	client := e.client
	e.client = nil
	e.mu.Unlock()
	if client == nil {
		return nil
	}

	flushErr := client.Flush(ctx)
	e.inflight.Wait()
	client.Close()
	log.Debug().Msg("Kafka exporter closed")

	if err := e.produceErr(); err != nil {
		return err
	}
	if flushErr != nil {
		return fmt.Errorf("failed to flush Kafka producer: %w", flushErr)
	}
	return nil
}

func (e *KafkaExporter) produceErr() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.firstErr
}

// KafkaRecord builds the record for an item: topic <prefix><type>s, keyed by
// the item hash.
func KafkaRecord(topicPrefix string, item common.Item) (*kgo.Record, error) {
	value, err := MarshalItemJSON(item)
	if err != nil {
		return nil, err
	}
	return &kgo.Record{
		Topic: fmt.Sprintf("%s%ss", topicPrefix, item.Type()),
		Key:   []byte(recordKey(item)),
		Value: value,
	}, nil
}

func recordKey(item common.Item) string {
	for _, name := range []string{"hash", "transaction_hash"} {
		if v, ok := item.Get(name); ok {
			if s, ok := v.(string); ok {
				if item.Type() == common.ItemTypeLog {
					if idx, ok := item.Get("log_index"); ok && idx != nil {
						return fmt.Sprintf("%s-%v", s, idx)
					}
				}
				return s
			}
		}
	}
	return ""
}
