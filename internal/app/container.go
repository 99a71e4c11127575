package app

import (
	"context"
	"errors"
	"time"

	"talenthub/internal/config"
	"talenthub/internal/database"
	dbpostgres "talenthub/internal/database/postgres"
	"talenthub/internal/domain/candidate"
	"talenthub/internal/infrastructure/cache"
	"talenthub/internal/infrastructure/llm/gemini"
	"talenthub/internal/infrastructure/mail"
	"talenthub/internal/infrastructure/otp"
	"talenthub/internal/infrastructure/storage"
	"talenthub/internal/pkg/jwt"
	"talenthub/internal/pkg/logger"
	"talenthub/internal/repository"
	"talenthub/internal/usecase"
	ucauth "talenthub/internal/usecase/auth"
	"talenthub/internal/worker"
	"talenthub/internal/ws"

	"go.uber.org/zap"
)

// Container owns every long lived dependency of the server.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Redis  *cache.Redis
	Store  *storage.MinioStore
	LLM    *gemini.Generator
	Mail   *worker.Pool
	Hub    *ws.Hub
	JWT    jwt.Service

	Usecases Usecases
}

type Usecases struct {
	Auth          *usecase.Auth
	AuthService   *ucauth.Service
	Users         *usecase.User
	Skills        *usecase.Skill
	Profile       *usecase.Profile
	Sections      Sections
	Organizations *usecase.Organization
	Jobs          *usecase.JobPosting
	Matching      *usecase.Matching
	Applications  *usecase.Application
	Files         *usecase.Files
	CV            *usecase.CVExtraction
	Dashboard     *usecase.Dashboard
}

type Sections struct {
	WorkExperiences *usecase.Section[candidate.WorkExperience]
	Educations      *usecase.Section[candidate.Education]
	Skills          *usecase.Section[candidate.Skill]
	Certificates    *usecase.Section[candidate.Certificate]
	Projects        *usecase.Section[candidate.Project]
	Awards          *usecase.Section[candidate.Award]
	Volunteering    *usecase.Section[candidate.Volunteering]
}

// NewContainer connects to postgres and wires the rest. Redis, object
// storage and the LLM are optional: the server starts without them and the
// features that need them degrade.
func NewContainer(ctx context.Context, cfg config.Config, log *zap.Logger) (*Container, error) {
	log = logger.OrNop(log)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: log,
		DB:     db,
		Redis:  cache.NewRedis(connectCtx, cfg.Redis, log.Named("redis")),
		Hub:    ws.NewHub(log),
		JWT: jwt.NewHMACService(
			cfg.JWT.AccessSecret,
			cfg.JWT.RefreshSecret,
			cfg.JWT.AccessExpiresIn,
			cfg.JWT.RefreshExpiresIn,
			jwt.WithIssuer(cfg.App.AppName),
		),
	}

	store, err := storage.NewMinioStore(cfg.Storage, log.Named("storage"))
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		log.Warn("object storage not configured, uploads disabled")
	case err != nil:
		_ = c.Close()
		return nil, err
	default:
		if err := store.EnsureBucket(connectCtx); err != nil {
			log.Warn("object storage bucket check failed", zap.Error(err))
		}
		c.Store = store
	}

	gen, err := gemini.NewGenerator(ctx, cfg.LLM, log.Named("llm"))
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		log.Warn("llm not configured, cv extraction disabled")
	case err != nil:
		log.Warn("llm init failed, cv extraction disabled", zap.Error(err))
	default:
		c.LLM = gen
	}

	c.Mail = worker.NewPool(cfg.Mail.Workers, 256, log.Named("mail"))
	c.Mail.SetRateLimit(cfg.Mail.RatePerSecond)
	c.Usecases = c.buildUsecases()
	return c, nil
}

func (c *Container) buildUsecases() Usecases {
	log := c.Logger
	db := c.DB

	users := repository.NewPostgresUserRepository(db)
	skills := repository.NewPostgresSkillRepository(db)
	files := repository.NewPostgresFileRepository(db)
	orgs := repository.NewPostgresOrganizationRepository(db)
	jobs := repository.NewPostgresJobPostingRepository(db)
	apps := repository.NewPostgresApplicationRepository(db)
	profiles := repository.NewPostgresCandidateProfileRepository(db)
	candidateSkills := repository.NewPostgresCandidateSkillRepository(db)

	sections := usecase.ProfileSections{
		WorkExperiences: repository.NewWorkExperienceRepository(db),
		Educations:      repository.NewEducationRepository(db),
		Skills:          candidateSkills,
		Certificates:    repository.NewCertificateRepository(db),
		Projects:        repository.NewProjectRepository(db),
		Awards:          repository.NewAwardRepository(db),
		Volunteering:    repository.NewVolunteeringRepository(db),
	}

	var sender mail.Sender = mail.NewLogSender(log.Named("mail"))
	if c.Config.Mail.Host != "" {
		sender = mail.NewSMTPSender(c.Config.Mail)
	}
	mailer := mail.NewMailer(sender, c.Mail, c.Config.App.AppName)
	otps := otp.NewRedisStore(c.Redis.Client(), c.Config.OTP)

	authSvc := ucauth.NewService(users, otps, mailer, c.Config.OTP.TTL, log)

	var store usecase.ObjectStore
	var storePinger usecase.Pinger
	if c.Store != nil {
		store = c.Store
		storePinger = c.Store
	}
	var generator usecase.JSONGenerator
	if c.LLM != nil {
		generator = c.LLM
	}

	jobsUC := usecase.NewJobPostingUsecase(jobs, orgs, skills, c.Redis, ws.NewNotifier(c.Hub), log)
	filesUC := usecase.NewFileUsecase(files, store, c.Config.Storage.MaxUploadBytes, log)

	return Usecases{
		Auth:        usecase.NewAuthUsecase(authSvc, users, c.JWT),
		AuthService: authSvc,
		Users:       usecase.NewUserUsecase(users, files),
		Skills:      usecase.NewSkillUsecase(skills),
		Profile:     usecase.NewProfileUsecase(db, profiles, sections, skills, files, log),
		Sections: Sections{
			WorkExperiences: usecase.NewSection(sections.WorkExperiences),
			Educations:      usecase.NewSection(sections.Educations),
			Skills:          usecase.NewSkillSection(sections.Skills, skills),
			Certificates:    usecase.NewCertificateSection(sections.Certificates, files),
			Projects:        usecase.NewSection(sections.Projects),
			Awards:          usecase.NewSection(sections.Awards),
			Volunteering:    usecase.NewSection(sections.Volunteering),
		},
		Organizations: usecase.NewOrganizationUsecase(orgs, files),
		Jobs:          jobsUC,
		Matching:      usecase.NewMatchingUsecase(jobs, candidateSkills),
		Applications:  usecase.NewApplicationUsecase(apps, jobs, jobsUC, profiles, candidateSkills, files, log),
		Files:         filesUC,
		CV:            usecase.NewCVExtractionUsecase(filesUC, generator, log),
		Dashboard:     usecase.NewDashboardUsecase(repository.NewPostgresDashboardRepository(db), db, c.Redis, storePinger, log),
	}
}

// Start launches the background workers. They stop when ctx is done.
func (c *Container) Start(ctx context.Context) {
	c.Mail.Start(ctx)
	go c.Hub.Run(ctx)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Mail != nil {
		c.Mail.Close()
	}
	var errs []error
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
