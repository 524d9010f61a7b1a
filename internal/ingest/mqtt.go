package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/shenikar/rescue_radar_system/internal/config"
	"github.com/shenikar/rescue_radar_system/internal/models"
	"github.com/shenikar/rescue_radar_system/internal/service"
	"github.com/sirupsen/logrus"
)

// mqttPayload - показание, опубликованное устройством в топик.
// Формат совпадает с HTTP-запросом: числа могут приходить строками.
type mqttPayload struct {
	VictimID     string         `json:"victim_id"`
	DistanceCM   *models.Number `json:"distance_cm"`
	TemperatureC *models.Number `json:"temperature_c"`
	HumidityPct  *models.Number `json:"humidity_pct"`
	GasPPM       *models.Number `json:"gas_ppm"`
	BearingDeg   *models.Number `json:"bearing_deg"`
	Confidence   *models.Number `json:"confidence"`
	Latitude     *models.Number `json:"latitude"`
	Longitude    *models.Number `json:"longitude"`
	Detected     *bool          `json:"detected"`
}

// MQTTSource - опциональный источник показаний из MQTT-брокера.
// Создаётся только при заданном MQTT_BROKER_URL; показания проходят
// ту же политику дедупликации, что и HTTP-запросы. Ошибки разбора и
// отклонённые показания логируются и отбрасываются.
type MQTTSource struct {
	client         mqtt.Client
	readingService service.ReadingService
	logger         *logrus.Logger
	cfg            *config.Config
}

func NewMQTTSource(readingService service.ReadingService, logger *logrus.Logger, cfg *config.Config) *MQTTSource {
	return &MQTTSource{
		readingService: readingService,
		logger:         logger,
		cfg:            cfg,
	}
}

// Start подключается к брокеру и подписывается на топик показаний
func (s *MQTTSource) Start(ctx context.Context) error {
	clientID := fmt.Sprintf("rescue-radar-%d", time.Now().UnixNano())
	opts := mqtt.NewClientOptions().
		AddBroker(s.cfg.MQTTBrokerURL).
		SetClientID(clientID).
		SetOrderMatters(false).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			s.logger.WithError(err).Warn("MQTT connection lost, reconnecting")
		})

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(ctx, msg)
	}
	if token := s.client.Subscribe(s.cfg.MQTTTopic, 0, handler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %q: %w", s.cfg.MQTTTopic, token.Error())
	}

	s.logger.WithFields(logrus.Fields{
		"broker": s.cfg.MQTTBrokerURL,
		"topic":  s.cfg.MQTTTopic,
	}).Info("MQTT reading source started")
	return nil
}

// Stop отключает клиента от брокера
func (s *MQTTSource) Stop() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
		s.logger.Info("MQTT reading source stopped")
	}
}

func (s *MQTTSource) handleMessage(ctx context.Context, msg mqtt.Message) {
	log := s.logger.WithField("topic", msg.Topic())

	var payload mqttPayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		log.WithError(err).Warn("Failed to parse MQTT reading payload")
		return
	}

	input := service.SubmitInput{
		VictimID:         payload.VictimID,
		Distance:         payload.DistanceCM.Float(),
		DistanceProvided: payload.DistanceCM != nil && payload.DistanceCM.Present,
		TemperatureC:     payload.TemperatureC.Float(),
		HumidityPct:      payload.HumidityPct.Float(),
		GasPPM:           payload.GasPPM.Float(),
		BearingDeg:       payload.BearingDeg.Float(),
		Confidence:       payload.Confidence.Float(),
		Latitude:         payload.Latitude.Float(),
		Longitude:        payload.Longitude.Float(),
		Detected:         payload.Detected,
	}

	decision, reading, err := s.readingService.SubmitReading(ctx, input)
	if err != nil {
		log.WithError(err).Warn("MQTT reading rejected")
		return
	}
	log.WithFields(logrus.Fields{
		"victim_id": reading.VictimID,
		"action":    decision,
	}).Debug("MQTT reading processed")
}
