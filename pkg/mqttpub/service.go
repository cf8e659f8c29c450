// Package mqttpub republishes live updates on an MQTT broker.
package mqttpub

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	QoS            = 0
	DefaultPrefix  = "microgrid"
	publishTimeout = 5 * time.Second
)

// publisher is the part of mqtt.Client used here.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type Publisher struct {
	client publisher
	prefix string
}

// Connect dials the broker and returns a publisher on it.
func Connect(broker, clientId, prefix string) (*Publisher, mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientId).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return New(client, prefix), client, nil
}

func New(client publisher, prefix string) *Publisher {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Publisher{client: client, prefix: prefix}
}

// Topic is {prefix}/{channel}/live, or {prefix}/demo/live without a channel.
func (p *Publisher) Topic(u types.LiveUpdate) string {
	channel := u.ChannelID
	if channel == "" {
		channel = "demo"
	}
	return p.prefix + "/" + channel + "/live"
}

func (p *Publisher) Publish(u types.LiveUpdate) error {
	token := p.client.Publish(p.Topic(u), QoS, false, u.ToJsonBytes())
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish: timed out after %s", publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	return nil
}

// Handle is a poller subscriber. Failures are logged, not returned.
func (p *Publisher) Handle(u types.LiveUpdate) {
	if err := p.Publish(u); err != nil {
		log.Printf("mqttpub: %v", err)
	}
}
