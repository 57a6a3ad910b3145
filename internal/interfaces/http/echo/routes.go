package echo

import e "github.com/labstack/echo/v4"

type Handlers struct {
	Import    *ImportHandler
	Progress  *ProgressHandler
	Household *HouseholdHandler
}

func RegisterRoutes(server *e.Echo, h Handlers) {
	api := server.Group("/api/v1", RequireUser)

	if h.Import != nil {
		api.POST("/imports/households", h.Import.StartImport)
		api.POST("/imports/households/upload", h.Import.UploadImport)
	}
	if h.Progress != nil {
		api.GET("/imports/households/progress", h.Progress.Current)
		api.DELETE("/imports/households/progress", h.Progress.Dismiss)
		api.GET("/imports/households/progress/ws", h.Progress.Stream)
		api.POST("/imports/households/cancel", h.Progress.Cancel)
		api.GET("/imports/households/runs", h.Progress.Runs)
	}
	if h.Household != nil {
		api.GET("/households/:id", h.Household.GetHouseholdByID)
	}
}
