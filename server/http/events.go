package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opdss/vent/contracts/event"
	ventevent "github.com/opdss/vent/event"
	"github.com/opdss/vent/iterator"
)

// MountRegistry 挂载事件注册中心的只读调试接口
//
//	GET /debug/events                 所有存在订阅的事件及订阅数
//	GET /debug/events/count?identity= 单个事件的订阅数
func MountRegistry(router gin.IRouter, r *ventevent.Registry) {
	g := router.Group("/debug/events")
	g.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"events": iterator.Collect(r.Inspect())})
	})
	g.GET("/count", func(c *gin.Context) {
		id := c.Query("identity")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identity is required"})
			return
		}
		c.JSON(http.StatusOK, ventevent.Info{
			Identity:    event.Identity(id),
			Subscribers: r.Len(event.Identity(id)),
		})
	})
}
