package mqtt

import (
	"fmt"
)

// maxPayloadSize caps message bodies at 1MB. The bridge's payloads are
// small JSON objects; anything larger is a caller bug, and typical
// broker limits sit around this size anyway.
const maxPayloadSize = 1 << 20

// Publish sends one message. Retained is for state topics
// (availability, registry, system status) where late subscribers need
// the current value; events and datapoint updates go unretained.
//
// Returns ErrInvalidTopic, ErrInvalidQoS, ErrNotConnected, or a
// wrapped ErrPublishFailed.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishRetained publishes a retained message with the configured
// default QoS. Used for state topics (availability, registry) so late
// subscribers immediately see the current value.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}
