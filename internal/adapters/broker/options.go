package broker

import "github.com/tkarimi/residual/pkg/logger"

// settings collects construction-time options shared by publisher and
// subscriber.
type settings struct {
	brokers []string
	groupID string
	mode    Mode
	log     logger.Logger
}

func defaultSettings() settings {
	return settings{
		brokers: []string{"localhost:9092"},
		groupID: "residual-correlator",
		mode:    AtMostOnce,
		log:     logger.Get(),
	}
}

// Option applies a configuration option to a publisher or subscriber.
type Option func(*settings)

// WithBrokers sets the bootstrap addresses.
func WithBrokers(brokers []string) Option {
	return func(s *settings) {
		if len(brokers) > 0 {
			s.brokers = brokers
		}
	}
}

// WithGroupID sets the consumer group for subscriptions.
func WithGroupID(groupID string) Option {
	return func(s *settings) {
		if groupID != "" {
			s.groupID = groupID
		}
	}
}

// WithMode sets the subscription delivery contract.
func WithMode(mode Mode) Option {
	return func(s *settings) {
		s.mode = mode
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}
