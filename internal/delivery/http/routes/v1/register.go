package v1

import (
	"talenthub/internal/delivery/http/handler"
	"talenthub/internal/domain/candidate"

	"github.com/gofiber/fiber/v3"
)

// Handlers groups every versioned API handler.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Skills        *handler.SkillHandler
	Profile       *handler.ProfileHandler
	Organizations *handler.OrganizationHandler
	Jobs          *handler.JobHandler
	Applications  *handler.ApplicationHandler
	Match         *handler.MatchHandler
	Files         *handler.FileHandler
	CV            *handler.CVHandler
	MIS           *handler.MISHandler
	Sections      Sections
}

type Sections struct {
	WorkExperiences *handler.SectionHandler[candidate.WorkExperience]
	Educations      *handler.SectionHandler[candidate.Education]
	Skills          *handler.SectionHandler[candidate.Skill]
	Certificates    *handler.SectionHandler[candidate.Certificate]
	Projects        *handler.SectionHandler[candidate.Project]
	Awards          *handler.SectionHandler[candidate.Award]
	Volunteering    *handler.SectionHandler[candidate.Volunteering]
}

func Register(r fiber.Router, h Handlers, g handler.Guards) {
	if r == nil {
		return
	}

	h.Auth.RegisterRoutes(r.Group("/auth"), g)
	h.Users.RegisterRoutes(r.Group("/users"), g)
	h.Skills.RegisterRoutes(r.Group("/skills"), g)
	h.Files.RegisterRoutes(r.Group("/files"), g)
	h.MIS.RegisterRoutes(r.Group("/mis"), g)

	h.Organizations.RegisterRoutes(r, g)
	h.Jobs.RegisterRoutes(r, g)
	h.Applications.RegisterRoutes(r, g)
	h.Match.RegisterRoutes(r, g)
	h.CV.RegisterRoutes(r, g)

	me := r.Group("/candidates/me")
	h.Profile.RegisterRoutes(me, g)
	h.Sections.WorkExperiences.RegisterRoutes(me.Group("/work-experiences"), g)
	h.Sections.Educations.RegisterRoutes(me.Group("/educations"), g)
	h.Sections.Skills.RegisterRoutes(me.Group("/skills"), g)
	h.Sections.Certificates.RegisterRoutes(me.Group("/certificates"), g)
	h.Sections.Projects.RegisterRoutes(me.Group("/projects"), g)
	h.Sections.Awards.RegisterRoutes(me.Group("/awards"), g)
	h.Sections.Volunteering.RegisterRoutes(me.Group("/volunteering"), g)
}
