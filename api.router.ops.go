package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
)

// SetupOpsRoutes injects internal operations related endpoints.
func (api *APIHandler) SetupOpsRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/ops/configs", m.ops(api.GetConfigs))
	router.GET("/ops/stats", m.ops(api.GetStatistics))
	router.GET("/ops/debug/vars", m.ops(GetMemStats))
	router.GET("/ops/activities", m.ops(api.ListActivities))
	router.GET("/ops/activities/:id", m.ops(api.GetOneActivity))
	router.DELETE("/ops/activities/:id", m.ops(api.DeleteActivity))

	if api.config.ProfilerEnable {
		router.GET("/ops/debug/pprof/", m.ops(OpsHandlerWrapper(http.HandlerFunc(pprof.Index))))
		router.GET("/ops/debug/pprof/profile", m.ops(OpsHandlerWrapper(http.HandlerFunc(pprof.Profile))))
		router.GET("/ops/debug/pprof/trace", m.ops(OpsHandlerWrapper(http.HandlerFunc(pprof.Trace))))
		router.GET("/ops/debug/pprof/symbol", m.ops(OpsHandlerWrapper(http.HandlerFunc(pprof.Symbol))))
		router.GET("/ops/debug/pprof/cmdline", m.ops(OpsHandlerWrapper(http.HandlerFunc(pprof.Cmdline))))
		for _, profile := range []string{"heap", "allocs", "goroutine", "threadcreate", "block", "mutex"} {
			router.GET("/ops/debug/pprof/"+profile, m.ops(OpsHandlerWrapper(pprof.Handler(profile))))
		}
	}
	return router
}
