package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/services"
)

// OriginHeader names the client that sent the request
const OriginHeader = "X-From"

const channelKey = "origin_channel"

// OriginChannel records which client channel the request came from
func OriginChannel() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(channelKey, services.ChannelFromHeader(c.GetHeader(OriginHeader)))
		c.Next()
	}
}

// GetChannel returns the request's channel. Requests that did not pass
// through OriginChannel are treated as web.
func GetChannel(c *gin.Context) services.Channel {
	if v, ok := c.Get(channelKey); ok {
		if ch, ok := v.(services.Channel); ok {
			return ch
		}
	}
	return services.ChannelFromHeader(c.GetHeader(OriginHeader))
}
