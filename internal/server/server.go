package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	boardbillingdomain "github.com/coachdesk/coachdesk/internal/boardbilling/domain"
	catalogdomain "github.com/coachdesk/coachdesk/internal/catalog/domain"
	"github.com/coachdesk/coachdesk/internal/config"
	leaddomain "github.com/coachdesk/coachdesk/internal/lead/domain"
	obsmiddleware "github.com/coachdesk/coachdesk/internal/observability/logger"
	obsmetrics "github.com/coachdesk/coachdesk/internal/observability/metrics"
	paymentdomain "github.com/coachdesk/coachdesk/internal/payment/domain"
	"github.com/coachdesk/coachdesk/internal/providers/pdf"
	studentdomain "github.com/coachdesk/coachdesk/internal/student/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           !cfg.IsProduction(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, httpMetrics)
}

func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	genID  *snowflake.Node

	leadSvc      leaddomain.Service
	studentSvc   studentdomain.Service
	catalogSvc   catalogdomain.Service
	admissionSvc admissiondomain.Service
	boardSvc     boardbillingdomain.Service
	paymentSvc   paymentdomain.Service
	pdfProvider  pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	GenID *snowflake.Node

	LeadSvc      leaddomain.Service
	StudentSvc   studentdomain.Service
	CatalogSvc   catalogdomain.Service
	AdmissionSvc admissiondomain.Service
	BoardSvc     boardbillingdomain.Service
	PaymentSvc   paymentdomain.Service
	PDFProvider  pdf.Provider
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		genID:  p.GenID,

		leadSvc:      p.LeadSvc,
		studentSvc:   p.StudentSvc,
		catalogSvc:   p.CatalogSvc,
		admissionSvc: p.AdmissionSvc,
		boardSvc:     p.BoardSvc,
		paymentSvc:   p.PaymentSvc,
		pdfProvider:  p.PDFProvider,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func registerRoutes(s *Server) {
	v1 := s.engine.Group("/v1", s.APIKeyAuth(), s.BranchContext())

	leads := v1.Group("/leads")
	leads.POST("", s.CreateLead)
	leads.GET("", s.ListLeads)
	leads.GET("/:id", s.GetLead)
	leads.PATCH("/:id/status", s.UpdateLeadStatus)
	leads.POST("/:id/followups", s.AddLeadFollowUp)
	leads.GET("/:id/followups", s.ListLeadFollowUps)
	leads.POST("/:id/convert", s.ConvertLead)

	students := v1.Group("/students")
	students.POST("", s.CreateStudent)
	students.GET("", s.ListStudents)
	students.GET("/:id", s.GetStudent)
	students.PATCH("/:id", s.UpdateStudent)

	courses := v1.Group("/courses")
	courses.POST("", s.CreateCourse)
	courses.GET("", s.ListCourses)
	courses.GET("/:id", s.GetCourse)
	courses.DELETE("/:id", s.DisableCourse)
	courses.POST("/:id/fee-line-items", s.AddFeeLineItem)
	courses.GET("/:id/fee-line-items", s.ListFeeLineItems)
	courses.POST("/:id/subjects", s.AddSubject)
	courses.GET("/:id/subjects", s.ListSubjects)

	admissions := v1.Group("/admissions")
	admissions.POST("/one-time", s.CreateOneTimeAdmission)
	admissions.POST("/board", s.CreateBoardAdmission)
	admissions.GET("", s.ListAdmissions)
	admissions.GET("/:id", s.GetAdmission)
	admissions.POST("/:id/installments/:no/payments", s.RecordInstallmentPayment)
	admissions.GET("/:id/months", s.ListMonths)
	admissions.POST("/:id/months/:no/open", s.OpenMonth)
	admissions.PUT("/:id/months/:no/subjects", s.SelectMonthSubjects)
	admissions.POST("/:id/months/:no/payments", s.RecordMonthlyBillPayment)
	admissions.GET("/:id/receipts", s.ListReceipts)

	receipts := v1.Group("/receipts")
	receipts.GET("/:id", s.GetReceipt)
	receipts.GET("/:id/pdf", s.DownloadReceiptPDF)
	receipts.POST("/:id/confirm-clearance", s.ConfirmClearance)
	receipts.POST("/:id/bounce", s.BounceCheque)
}

func run(lc fx.Lifecycle, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", s.cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
