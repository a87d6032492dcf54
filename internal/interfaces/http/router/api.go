package router

import (
	"github.com/calculation/backend/internal/application/export"
	"github.com/calculation/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers groups the handlers of the calculation API
type Handlers struct {
	Auth             *handler.AuthHandler
	Captcha          *handler.CaptchaHandler
	Calculation      *handler.CalculationHandler
	CalculationState *handler.CalculationStateHandler
	Group            *handler.GroupHandler
	Category         *handler.CategoryHandler
	Product          *handler.ProductHandler
	Task             *handler.TaskHandler
	GlobalMargin     *handler.GlobalMarginHandler
	Customer         *handler.CustomerHandler
	User             *handler.UserHandler
	Setting          *handler.SettingHandler
	Report           *handler.ReportHandler
	Export           *handler.ExportHandler
	Contact          *handler.ContactHandler
	Health           *handler.HealthHandler
}

// Guards are the access middleware of the API groups
type Guards struct {
	// Authenticated validates the bearer token
	Authenticated gin.HandlerFunc
	// Admin requires the administrator role, after Authenticated
	Admin gin.HandlerFunc
	// PublicRateLimit throttles the unauthenticated endpoints, optional
	PublicRateLimit gin.HandlerFunc
}

// APIGroups returns the route groups of the calculation API
func APIGroups(h Handlers, g Guards) []*DomainGroup {
	groups := []*DomainGroup{
		NewDomainGroup("health", "/health").GET("", h.Health.Check),

		NewDomainGroup("auth", "/auth").Use(g.PublicRateLimit).
			POST("/login", h.Auth.Login).
			POST("/refresh", h.Auth.RefreshToken).
			POST("/password/forgot", h.Auth.ForgotPassword).
			POST("/password/reset", h.Auth.ResetPassword),
		NewDomainGroup("session", "/auth").Use(g.Authenticated).
			POST("/logout", h.Auth.Logout).
			GET("/me", h.Auth.GetCurrentUser).
			PUT("/password", h.Auth.ChangePassword),

		NewDomainGroup("captcha", "/captcha").Use(g.PublicRateLimit).
			GET("", h.Captcha.Issue),

		calculationGroup(h, g),

		crud("calculation-states", g, h.CalculationState.List, h.CalculationState.GetByID,
			h.CalculationState.Create, h.CalculationState.Update, h.CalculationState.Delete),
		crud("groups", g, h.Group.List, h.Group.GetByID, h.Group.Create, h.Group.Update, h.Group.Delete),
		crud("categories", g, h.Category.List, h.Category.GetByID, h.Category.Create, h.Category.Update, h.Category.Delete),
		crud("products", g, h.Product.List, h.Product.GetByID, h.Product.Create, h.Product.Update, h.Product.Delete),
		crud("tasks", g, h.Task.List, h.Task.GetByID, h.Task.Create, h.Task.Update, h.Task.Delete).
			POST("/:id/compute", h.Task.Compute),
		crud("global-margins", g, h.GlobalMargin.List, h.GlobalMargin.GetByID,
			h.GlobalMargin.Create, h.GlobalMargin.Update, h.GlobalMargin.Delete).
			PUT("", h.GlobalMargin.ReplaceAll),
		crud("customers", g, h.Customer.List, h.Customer.GetByID, h.Customer.Create, h.Customer.Update, h.Customer.Delete),

		NewDomainGroup("users", "/users").Use(g.Authenticated, g.Admin).
			GET("", h.User.List).
			POST("", h.User.Create).
			GET("/:id", h.User.GetByID).
			PUT("/:id", h.User.Update).
			DELETE("/:id", h.User.Delete).
			PATCH("/:id/enabled", h.User.SetEnabled).
			PUT("/:id/password", h.User.SetPassword).
			POST("/:id/image", h.User.UploadImage).
			DELETE("/:id/image", h.User.DeleteImage),

		NewDomainGroup("settings", "/settings").Use(g.Authenticated).
			GET("", h.Setting.Get).
			PUT("", g.Admin, h.Setting.Update),

		NewDomainGroup("reports", "/reports").Use(g.Authenticated).
			GET("/pivot", h.Report.Pivot).
			GET("/by-month", h.Report.ByMonth).
			GET("/by-state", h.Report.ByState),

		NewDomainGroup("export", "/export").Use(g.Authenticated).
			GET("/formats", h.Export.Formats),

		NewDomainGroup("contact", "/contact").Use(g.Authenticated).
			POST("", h.Contact.Send),
	}

	for _, group := range groups {
		if entity := exportedEntity(group.Prefix()); entity != "" {
			group.GET("/export/:format", h.Export.List(entity))
		}
	}
	return groups
}

func calculationGroup(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("calculations", "/calculations").Use(g.Authenticated).
		GET("", h.Calculation.List).
		POST("", h.Calculation.Create).
		POST("/totals", h.Calculation.PreviewTotals).
		GET("/below-margin", h.Calculation.BelowMargin).
		GET("/empty-items", h.Calculation.EmptyItems).
		GET("/duplicate-items", h.Calculation.DuplicateItems).
		POST("/update-all", g.Admin, h.Calculation.UpdateAll).
		POST("/archive", g.Admin, h.Calculation.Archive).
		GET("/:id", h.Calculation.GetByID).
		PUT("/:id", h.Calculation.Update).
		DELETE("/:id", h.Calculation.Delete).
		POST("/:id/duplicate", h.Calculation.Duplicate).
		PATCH("/:id/state", h.Calculation.ChangeState).
		GET("/:id/totals", h.Calculation.Totals).
		GET("/:id/export/:format", h.Calculation.Export)
}

// crud registers the list, read, write and delete routes of a resource
func crud(name string, g Guards, list, get, create, update, remove gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup(name, "/"+name).Use(g.Authenticated).
		GET("", list).
		POST("", create).
		GET("/:id", get).
		PUT("/:id", update).
		DELETE("/:id", remove)
}

// exportedEntity returns the export entity served under a group prefix
func exportedEntity(prefix string) string {
	switch entity := prefix[1:]; entity {
	case export.EntityCalculations, export.EntityStates, export.EntityGroups, export.EntityCategories,
		export.EntityProducts, export.EntityTasks, export.EntityCustomers, export.EntityGlobalMargins:
		return entity
	}
	return ""
}
