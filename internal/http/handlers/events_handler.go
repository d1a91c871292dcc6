// Server-sent events handler.
//
// This file exposes GET /events, a long-lived SSE stream that notifies
// clients when the week, window, options, tally, or menu changes. Payloads
// carry only the topic and week; clients re-fetch the affected resource.
// That keeps the stream cheap and makes missed events harmless: the next
// event or a reconnect converges the client.
package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// sseKeepAlive is how often a comment line is written to hold intermediaries'
// idle timeouts open.
const sseKeepAlive = 25 * time.Second

// EventPayload is the JSON body of one SSE message.
type EventPayload struct {
	Topic string `json:"topic"`
	Week  string `json:"week,omitempty"`
}

// StreamEvents godoc
// @ID          streamEvents
// @Summary     Change event stream
// @Description SSE stream of change notifications. Event name is "change"; data is {"topic","week"}.
// @Tags        Events
// @Produce     text/event-stream
//
// @Success     200  {string}  string  "event stream"
// @Router      /events [get]
func (h *Handlers) StreamEvents(c *gin.Context) {
	ch, cancel := h.Hub.Subscribe() // all topics
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("change", EventPayload{Topic: ev.Topic, Week: ev.Week})
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().UTC().Unix())
			return true
		}
	})
}
