package internal

import (
	"felixrec/internal/controllers"
	"felixrec/internal/providers"
	"net/http"
)

func InitRoutes(jobsController *controllers.JobsController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/jobs", http.HandlerFunc(jobsController.List))
	routers.Get("/job", http.HandlerFunc(jobsController.Get))
	return routers
}
