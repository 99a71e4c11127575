package app

import (
	"context"
	"fmt"
	"strings"

	"talenthub/internal/config"
	"talenthub/internal/database/migration"
	"talenthub/internal/delivery/http/handler"
	"talenthub/internal/delivery/http/middleware"
	"talenthub/internal/delivery/http/routes"
	v1 "talenthub/internal/delivery/http/routes/v1"
	"talenthub/internal/domain/candidate"
	"talenthub/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"go.uber.org/zap"
)

// multipart overhead on top of the largest accepted upload
const bodyLimitSlack = 1 << 20

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	cfg := c.Config
	f := fiber.New(fiber.Config{
		AppName:   cfg.App.AppName,
		BodyLimit: int(cfg.Storage.MaxUploadBytes) + bodyLimitSlack,
	})

	registerGlobalMiddleware(f, cfg, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container, applies pending migrations when configured
// and starts background workers bound to ctx.
func Bootstrap(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Migrations.RunOnStart {
		runner := migration.Runner{Dir: cfg.Migrations.Dir, Logger: c.Logger}
		n, err := runner.Run(ctx, c.DB.SQLDB())
		if err != nil {
			_ = c.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		c.Logger.Info("migrations applied", zap.Int("count", n))
	}

	c.Start(ctx)
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, cfg config.Config, log *zap.Logger) {
	if app == nil {
		return
	}

	errMw := middleware.NewErrorMiddleware(log)
	accessLog := middleware.NewAccessLogMiddleware(log)

	app.Use(accessLog.Middleware())
	app.Use(errMw.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: splitOrigins(cfg.App.CORSOrigins),
		AllowHeaders: []string{fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept, fiber.HeaderAuthorization},
	}))
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	uc := c.Usecases
	authMw := middleware.NewAuthMiddleware(c.JWT)
	guards := handler.Guards{Auth: authMw.Middleware(), Optional: authMw.Optional()}

	api := v1.Handlers{
		Auth:          handler.NewAuthHandler(uc.Auth),
		Users:         handler.NewUserHandler(uc.Users),
		Skills:        handler.NewSkillHandler(uc.Skills),
		Profile:       handler.NewProfileHandler(uc.Profile),
		Organizations: handler.NewOrganizationHandler(uc.Organizations),
		Jobs:          handler.NewJobHandler(uc.Jobs),
		Applications:  handler.NewApplicationHandler(uc.Applications),
		Match:         handler.NewMatchHandler(uc.Matching),
		Files:         handler.NewFileHandler(uc.Files),
		CV:            handler.NewCVHandler(uc.CV, c.Config.Storage.MaxUploadBytes),
		MIS:           handler.NewMISHandler(uc.Dashboard, uc.Users),
		Sections: v1.Sections{
			WorkExperiences: handler.NewSectionHandler[candidate.WorkExperience](uc.Sections.WorkExperiences),
			Educations:      handler.NewSectionHandler[candidate.Education](uc.Sections.Educations),
			Skills:          handler.NewSectionHandler[candidate.Skill](uc.Sections.Skills),
			Certificates:    handler.NewSectionHandler[candidate.Certificate](uc.Sections.Certificates),
			Projects:        handler.NewSectionHandler[candidate.Project](uc.Sections.Projects),
			Awards:          handler.NewSectionHandler[candidate.Award](uc.Sections.Awards),
			Volunteering:    handler.NewSectionHandler[candidate.Volunteering](uc.Sections.Volunteering),
		},
	}

	registry := routes.NewRegistry(
		handler.NewHealthHandler(uc.Dashboard),
		ws.NewHandler(c.Hub, c.Logger),
		api,
		guards,
	)
	registry.Register(app)
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
