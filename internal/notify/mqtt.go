package notify

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// MQTTPublisher publishes to an actual MQTT broker.
type MQTTPublisher struct {
	client paho.Client
	topic  string
}

// ConnectTimeout bounds the initial connection attempt.
var ConnectTimeout = 3 * time.Second

// NewMQTTPublisher connects to broker and returns a publisher for topic.
//
// The first connection is attempted once. A broker that is down at start-up
// yields an error and leaves nothing running; once connected, dropped
// connections are re-established automatically.
func NewMQTTPublisher(broker, clientID, topic string) (*MQTTPublisher, error) {
	if topic == "" {
		return nil, fmt.Errorf("notify: empty topic")
	}
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(ConnectTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(false)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(ConnectTimeout + time.Second) {
		client.Disconnect(0)
		return nil, fmt.Errorf("notify: connection timeout after %s", ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("notify: connect to broker: %w", err)
	}

	return &MQTTPublisher{client: client, topic: topic}, nil
}

// Publish sends a reading event, QoS 0 and not retained.
func (p *MQTTPublisher) Publish(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("notify: format payload: %w", err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("notify: publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("notify: publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
