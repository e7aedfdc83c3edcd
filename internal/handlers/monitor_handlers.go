package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/broadcast"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/common"

	"github.com/labstack/echo/v4"
)

// MonitorHandlers exposes the live inventory monitor stream.
type MonitorHandlers struct {
	broadcaster *broadcast.Broadcaster
}

func NewMonitorHandlers(broadcaster *broadcast.Broadcaster) *MonitorHandlers {
	return &MonitorHandlers{broadcaster: broadcaster}
}

// sseSink frames JSON events for the event-stream wire format. Sends are
// serialized: the scan loop and Publish write concurrently.
type sseSink struct {
	mu       sync.Mutex
	response *echo.Response
}

func (s *sseSink) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.response, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.response.Flush()
	return nil
}

// Stream handles GET /v1/monitor/:subdomain/stream. The connection stays
// open until the client goes away; an unknown tenant gets a JSON 404 before
// any stream bytes are written.
func (h *MonitorHandlers) Stream(c echo.Context) error {
	subdomain := c.Param("subdomain")
	if subdomain == "" {
		return common.SendClientError(c, "subdomain is required")
	}

	// Headers must be in place before Subscribe: its connection_established
	// write commits the response. On failure nothing has been written yet,
	// so they are unset again for the JSON error body.
	header := c.Response().Header()
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set(echo.HeaderCacheControl, "no-cache")
	header.Set(echo.HeaderConnection, "keep-alive")
	header.Set(echo.HeaderAccessControlAllowOrigin, "*")

	sink := &sseSink{response: c.Response()}
	connID, err := h.broadcaster.Subscribe(c.Request().Context(), subdomain, sink)
	if err != nil {
		header.Del(echo.HeaderContentType)
		header.Del(echo.HeaderCacheControl)
		header.Del(echo.HeaderConnection)
		header.Del(echo.HeaderAccessControlAllowOrigin)
		if errors.Is(err, broadcast.ErrTenantNotFound) {
			return common.SendNotFoundError(c, "Tenant")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open monitor stream")
	}

	<-c.Request().Context().Done()
	h.broadcaster.Unsubscribe(connID)
	return nil
}
