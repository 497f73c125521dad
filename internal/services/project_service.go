package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"timetrack/internal/domain"
	"timetrack/internal/errors"
	"timetrack/internal/repository/sqlite"
	"timetrack/internal/validation"
)

// projectServiceImpl implements the ProjectService interface
type projectServiceImpl struct {
	repo         sqlite.Repository
	mapper       *domain.Mapper
	validator    *validation.Validator
	queryTimeout time.Duration
}

// NewProjectService creates a new ProjectService instance
func NewProjectService(repo sqlite.Repository, validator *validation.Validator, queryTimeout time.Duration) ProjectService {
	if validator == nil {
		validator = validation.NewValidator()
	}
	return &projectServiceImpl{
		repo:         repo,
		mapper:       domain.NewMapper(),
		validator:    validator,
		queryTimeout: queryTimeout,
	}
}

// CreateProject creates a new project with the given name
func (p *projectServiceImpl) CreateProject(ctx context.Context, organizationID int64, name string) (*domain.Project, error) {
	if err := p.validator.ValidateProject(organizationID, name); err != nil {
		return nil, errors.NewValidationError("invalid project", err)
	}

	ctx, cancel := withTimeout(ctx, p.queryTimeout)
	defer cancel()

	dbProject := p.mapper.Project.ToDatabase(domain.NewProject(organizationID, strings.TrimSpace(name)))
	if err := p.repo.CreateProject(ctx, &dbProject); err != nil {
		return nil, contextError("create project", ctx, err)
	}

	project := p.mapper.Project.FromDatabase(dbProject)
	return &project, nil
}

// GetProject retrieves a project of the organization by its ID
func (p *projectServiceImpl) GetProject(ctx context.Context, organizationID int64, id int64) (*domain.Project, error) {
	if err := p.validator.ValidateID("project_id", id); err != nil {
		return nil, errors.NewValidationError("invalid project id", err)
	}

	ctx, cancel := withTimeout(ctx, p.queryTimeout)
	defer cancel()

	dbProject, err := findProject(ctx, p.repo, organizationID, id)
	if err != nil {
		return nil, contextError("get project", ctx, err)
	}

	project := p.mapper.Project.FromDatabase(*dbProject)
	return &project, nil
}

// ListProjects lists the organization's projects by name
func (p *projectServiceImpl) ListProjects(ctx context.Context, organizationID int64) ([]domain.Project, error) {
	ctx, cancel := withTimeout(ctx, p.queryTimeout)
	defer cancel()

	dbProjects, err := p.repo.ListProjects(ctx, organizationID)
	if err != nil {
		return nil, contextError("list projects", ctx, err)
	}
	return p.mapper.Project.FromDatabaseSlice(dbProjects), nil
}

// ResolveProject finds a project by numeric id, falling back to a
// case-insensitive name match
func (p *projectServiceImpl) ResolveProject(ctx context.Context, organizationID int64, ref string) (*domain.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.NewInvalidInputError("project", ref, "project cannot be empty")
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return p.GetProject(ctx, organizationID, id)
	}

	projects, err := p.ListProjects(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	for _, project := range projects {
		if strings.EqualFold(project.Name, ref) {
			return &project, nil
		}
	}
	return nil, errors.NewNotFoundError("project", ref)
}
