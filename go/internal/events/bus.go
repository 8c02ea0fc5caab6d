package events

import "context"

// Bus is the publish side of the realtime channel. The websocket hub
// implements it directly; the NATS bridge implements it for
// multi-process deployments.
type Bus interface {
	Publish(ctx context.Context, event Event) error
}
