package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

func NewRouter(ja *jwtauth.JWTAuth, opts RouterOptions, payrollHandler PayrollHandler, attendanceHandler AttendanceHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll-engine"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(ja))
			r.Use(middleware.AuthRequired)

			r.Route("/attendances", func(r chi.Router) {
				r.With(chiMiddleware.AllowContentType("application/json")).Post("/clock-in", attendanceHandler.ClockIn)
				r.With(chiMiddleware.AllowContentType("application/json")).Post("/{id}/clock-out", attendanceHandler.ClockOut)
				r.With(middleware.RequireManager).Post("/{id}/recalculate", attendanceHandler.Recalculate)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Use(middleware.RequireManager)

				r.Route("/runs", func(r chi.Router) {
					r.With(chiMiddleware.AllowContentType("application/json")).Post("/", payrollHandler.GenerateRun)
					r.Get("/{id}", payrollHandler.GetRun)
					r.Get("/{id}/register.xlsx", payrollHandler.ExportRegister)
				})
				r.Get("/payslips/{id}/pdf", payrollHandler.ExportPayslipPDF)
				r.Get("/configs", payrollHandler.GetConfig)
				r.With(chiMiddleware.AllowContentType("application/json")).Post("/preview", payrollHandler.Preview)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})
	return r
}
