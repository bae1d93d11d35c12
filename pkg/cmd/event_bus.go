package cmd

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/clipline/clipline/pkg/channels/gochannel"
	"github.com/clipline/clipline/pkg/eventbus"
)

// NewEventBus creates the in-process event bus shared by the API and the
// automation loop.
func NewEventBus(logger *slog.Logger) eventbus.EventBus {
	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
	if err != nil {
		panic("failed to create event channel: " + err.Error())
	}

	return eventbus.NewWatermillEventBus(pub, sub)
}
