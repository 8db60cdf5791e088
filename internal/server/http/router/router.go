package router

import (
	"fmt"
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/polkiloo/parceltrack/internal/logger"
	"github.com/polkiloo/parceltrack/internal/server/http/dto"
	"github.com/polkiloo/parceltrack/internal/server/http/handlers"
	"github.com/polkiloo/parceltrack/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.ParcelFacade, log *slog.Logger) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("register validators: %w", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger.Component(log, "http")))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	bookmarkHandler := handlers.NewBookmarkHandler(facade)
	archiveHandler := handlers.NewArchiveHandler(facade)
	invoiceHandler := handlers.NewInvoiceHandler(facade)
	referralHandler := handlers.NewReferralHandler(facade)
	trackHandler := handlers.NewTrackHandler(facade)
	settingsHandler := handlers.NewSettingsHandler(facade)

	api := engine.Group("/api")
	api.GET("/settings", settingsHandler.Get)
	api.GET("/settings/global-bonus", settingsHandler.GlobalBonus)

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	userAuth := user.Group("")
	userAuth.Use(middleware.AuthRequired(facade))
	userAuth.GET("/profile", authHandler.Profile)
	userAuth.GET("/auth", authHandler.Refresh)
	userAuth.PUT("/password", authHandler.ChangePassword)
	userAuth.POST("/bookmarks", bookmarkHandler.Add)
	userAuth.GET("/bookmarks", bookmarkHandler.List)
	userAuth.DELETE("/bookmarks/:trackNumber", bookmarkHandler.Delete)
	userAuth.GET("/archive/candidates", bookmarkHandler.Candidates)
	userAuth.POST("/archive", archiveHandler.Migrate)
	userAuth.GET("/archive", archiveHandler.List)
	userAuth.DELETE("/archive/:trackNumber", archiveHandler.Delete)
	userAuth.GET("/invoices", invoiceHandler.List)
	userAuth.GET("/invoices/current", invoiceHandler.Current)
	userAuth.POST("/invoices", invoiceHandler.AddItems)
	userAuth.GET("/referrals", referralHandler.MyReferrals)
	userAuth.GET("/bonus-percentage", referralHandler.BonusPercentage)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(facade), middleware.AdminRequired())
	admin.GET("/users", authHandler.Users)
	admin.GET("/tracks", trackHandler.List)
	admin.POST("/tracks", trackHandler.Save)
	admin.GET("/statuses", trackHandler.Statuses)
	admin.POST("/statuses", trackHandler.CreateStatus)
	admin.GET("/bookmarks/without-status", bookmarkHandler.WithoutStatus)
	admin.GET("/partners", referralHandler.Partners)
	admin.GET("/partners/:userID/referrals", referralHandler.Referrals)
	admin.PUT("/partners/:userID/percent", referralHandler.SetPercent)
	admin.PUT("/partners/:userID/bonuses", referralHandler.SetBonuses)
	admin.PUT("/users/:userID/personal-rate", referralHandler.SetPersonalRate)
	admin.POST("/users/:userID/invoices/:invoiceID/confirm", invoiceHandler.Confirm)
	admin.POST("/users/:userID/archive/:trackNumber", archiveHandler.ArchiveTrack)
	admin.PUT("/settings", settingsHandler.Update)
	admin.PUT("/settings/global-bonus", settingsHandler.SetGlobalBonus)

	return engine, nil
}
