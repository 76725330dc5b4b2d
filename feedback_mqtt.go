package main

import (
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	mqttConnectTimeout    = 5 * time.Second
	mqttDisconnectQuiesce = 250 // ms
)

// mqttPublisher sends every feedback frame as JSON to an MQTT topic, so a
// renderer can run as a separate process. Publishing never waits for the
// broker; frames sent while disconnected are dropped.
type mqttPublisher struct {
	client pahomqtt.Client
	topic  string
	qos    byte
}

func statusTopic(topic string) string {
	return topic + "/status"
}

// newMQTTPublisher connects to the configured broker.
func newMQTTPublisher(cfg MQTTConfig) (*mqttPublisher, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(mqttConnectTimeout).
		SetWill(statusTopic(cfg.Topic), "offline", cfg.QoS, true)

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "broker", cfg.Broker, "err", err)
	})

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("connect %s: timeout after %v", cfg.Broker, mqttConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}

	client.Publish(statusTopic(cfg.Topic), cfg.QoS, true, "online")
	return &mqttPublisher{client: client, topic: cfg.Topic, qos: cfg.QoS}, nil
}

func (p *mqttPublisher) Publish(fb *Feedback) error {
	if !p.client.IsConnectionOpen() {
		return nil
	}
	payload, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	p.client.Publish(p.topic, p.qos, false, payload)
	return nil
}

func (p *mqttPublisher) Close() error {
	if p.client.IsConnectionOpen() {
		p.client.Publish(statusTopic(p.topic), p.qos, true, "offline").WaitTimeout(time.Second)
	}
	p.client.Disconnect(mqttDisconnectQuiesce)
	return nil
}
