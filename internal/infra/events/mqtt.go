package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
)

// MQTTConfig holds broker settings for the MQTT publisher.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher pushes dashboard events to an MQTT topic.
type MQTTPublisher struct {
	client mqttPublisher
	topic  string
	qos    byte
	close  func()
}

// DialMQTT connects to the broker and returns a publisher.
func DialMQTT(cfg MQTTConfig, logger *slog.Logger) (*MQTTPublisher, error) {
	log := logger.With("component", "events.mqtt")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info("mqtt connected", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt broker: %w", token.Error())
	}
	pub := NewMQTTPublisher(client, cfg.Topic, cfg.QoS)
	pub.close = func() { client.Disconnect(250) }
	return pub, nil
}

// NewMQTTPublisher wraps an already connected client.
func NewMQTTPublisher(client mqttPublisher, topic string, qos byte) *MQTTPublisher {
	if qos > 2 {
		qos = 1
	}
	return &MQTTPublisher{client: client, topic: topic, qos: qos}
}

// Publish implements dashboard.EventPublisher.
func (p *MQTTPublisher) Publish(ctx context.Context, event dashboard.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal dashboard event: %w", err)
	}
	token := p.client.Publish(p.topic, p.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish dashboard event: %w", err)
	}
	return nil
}

// Close disconnects from the broker when the publisher owns the client.
func (p *MQTTPublisher) Close() error {
	if p.close != nil {
		p.close()
	}
	return nil
}

var _ dashboard.EventPublisher = (*MQTTPublisher)(nil)
