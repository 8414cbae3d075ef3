// @title           Job Portal Admin API
// @version         1.0
// @description     Административный API портала вакансий (документация Swagger).
// @host            localhost:4000
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	_ "jobportal_backend/docs"
	"jobportal_backend/internal/app"
)

func main() {
	app.Run()
}
