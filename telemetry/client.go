// Package telemetry subscribes to the robots' battery feed over MQTT and
// writes reported levels into the store. The feed is optional; when disabled
// the sweep's rate model is the only source of battery progress.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"fleet-charging/config"
	"fleet-charging/database"
	"fleet-charging/repositories/base"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const batteryTopic = "fleet/v1/robots/+/battery"

// batteryReport is the payload robots publish on their battery topic.
type batteryReport struct {
	BatteryLevel float64 `json:"battery_level"`
	Timestamp    string  `json:"timestamp"`
}

// Client wraps the PAHO MQTT client and applies battery reports to the store.
type Client struct {
	client mqtt.Client
	db     *database.Database
	logger *slog.Logger
}

// NewClient creates and connects a new telemetry client.
func NewClient(cfg *config.Config, db *database.Database, logger *slog.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetUsername(cfg.MQTTUsername).
		SetPassword(cfg.MQTTPassword).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(1 * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(10 * time.Second).
		SetCleanSession(true)

	c := &Client{
		db:     db,
		logger: logger.With("component", "telemetry_client"),
	}

	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	c.client = mqtt.NewClient(opts)

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return c, nil
}

// Disconnect gracefully disconnects the client.
func (c *Client) Disconnect() {
	if c.client.IsConnected() {
		c.client.Disconnect(250)
		c.logger.Info("Telemetry client disconnected")
	}
}

func (c *Client) onConnect(client mqtt.Client) {
	c.logger.Info("Connected to MQTT broker, subscribing to battery feed")
	if token := c.client.Subscribe(batteryTopic, 1, c.handleBatteryMessage); token.Wait() && token.Error() != nil {
		c.logger.Error("Failed to subscribe to battery topic", "topic", batteryTopic, slog.Any("error", token.Error()))
	} else {
		c.logger.Info("Subscribed to battery topic", "topic", batteryTopic)
	}
}

func (c *Client) onConnectionLost(client mqtt.Client, err error) {
	c.logger.Error("Connection lost. Reconnecting...", slog.Any("error", err))
}

func (c *Client) handleBatteryMessage(client mqtt.Client, msg mqtt.Message) {
	robotID, err := robotIDFromTopic(msg.Topic())
	if err != nil {
		c.logger.Error("Failed to parse battery topic", "topic", msg.Topic(), slog.Any("error", err))
		return
	}
	logger := c.logger.With("robot_id", robotID)

	var report batteryReport
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		logger.Error("Failed to unmarshal battery report", slog.Any("error", err))
		return
	}
	if report.BatteryLevel < 0 || report.BatteryLevel > 100 {
		logger.Warn("Battery report out of range, dropped", "battery_level", report.BatteryLevel)
		return
	}

	if _, err := c.db.RobotRepo.Update(robotID, map[string]interface{}{
		"battery_level": report.BatteryLevel,
	}); err != nil {
		if base.IsEntityNotFound(err) {
			logger.Warn("Battery report for unknown robot, dropped")
			return
		}
		logger.Error("Failed to apply battery report", slog.Any("error", err))
		return
	}

	logger.Debug("Battery level updated", "battery_level", report.BatteryLevel)
}

func robotIDFromTopic(topic string) (uint, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 5 {
		return 0, fmt.Errorf("invalid topic structure: %s", topic)
	}
	id, err := strconv.ParseUint(parts[3], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid robot id in topic %s: %w", topic, err)
	}
	return uint(id), nil
}
