package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupConsoleRoutes injects the console screens endpoints.
func (api *APIHandler) SetupConsoleRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))

	router.GET("/console", m.public(api.ListScreens))
	router.GET("/console/:screen", m.public(api.GetScreen))
	router.POST("/console/:screen/mount", m.public(api.MountScreen))
	router.POST("/console/:screen/reload", m.public(api.ReloadScreen))
	router.POST("/console/:screen/session", m.public(api.OpenSession))
	router.PATCH("/console/:screen/session", m.public(api.PatchDraft))
	router.DELETE("/console/:screen/session", m.public(api.CancelSession))
	router.POST("/console/:screen/session/submit", m.public(api.SubmitSession))
	router.DELETE("/console/:screen/items/:id", m.public(api.DeleteItem))
	return router
}
