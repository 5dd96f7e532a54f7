package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/fitaccess/gymgate/internal/config"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
	"github.com/fitaccess/gymgate/internal/logging"
)

// commandEnvelope is the wire shape published to the device topic.
type commandEnvelope struct {
	CommandID   string `json:"command_id"`
	CommandType string `json:"command_type"`
	Payload     string `json:"payload,omitempty"`
	IssuedAt    string `json:"issued_at"`
}

// MQTTTransport publishes commands to per-device topics on a broker.
// Publishes go through a circuit breaker so a dead broker fails fast
// instead of stacking up blocked dispatch requests.
type MQTTTransport struct {
	cfg     config.MQTTConfig
	client  mqtt.Client
	breaker *gobreaker.CircuitBreaker[interface{}]
}

func NewMQTTTransport(cfg config.MQTTConfig) *MQTTTransport {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetOrderMatters(false).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	breaker := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:    "mqtt-publish",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &MQTTTransport{
		cfg:     cfg,
		client:  mqtt.NewClient(opts),
		breaker: breaker,
	}
}

// Serve connects to the broker and holds the connection until ctx is
// canceled. Connection attempts back off exponentially; paho handles
// reconnects after the first successful connect.
func (t *MQTTTransport) Serve(ctx context.Context) error {
	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)

	err := backoff.Retry(func() error {
		token := t.client.Connect()
		if token.Wait() && token.Error() != nil {
			logging.Warn().Err(token.Error()).Str("broker", t.cfg.BrokerURL).Msg("mqtt connect failed, retrying")
			return token.Error()
		}
		return nil
	}, policy)
	if err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	logging.Info().Str("broker", t.cfg.BrokerURL).Str("client_id", t.cfg.ClientID).Msg("connected to mqtt broker")

	<-ctx.Done()
	t.client.Disconnect(250)
	return ctx.Err()
}

func (t *MQTTTransport) String() string { return "mqtt-transport" }

func (t *MQTTTransport) topicFor(deviceID string) string {
	return fmt.Sprintf("%s/devices/%s/commands", t.cfg.TopicPrefix, deviceID)
}

func (t *MQTTTransport) PublishCommand(ctx context.Context, cmd types.DeviceCommand) error {
	env := commandEnvelope{
		CommandID:   cmd.ID,
		CommandType: string(cmd.Type),
		Payload:     cmd.Payload,
		IssuedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}

	timeout := t.cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	_, err = t.breaker.Execute(func() (interface{}, error) {
		token := t.client.Publish(t.topicFor(cmd.DeviceID), 1, false, data)
		if !token.WaitTimeout(timeout) {
			return nil, fmt.Errorf("publish to %s timed out", t.topicFor(cmd.DeviceID))
		}
		if err := token.Error(); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("publish command %s: %w", cmd.ID, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}
