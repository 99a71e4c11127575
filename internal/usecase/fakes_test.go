package usecase

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"talenthub/internal/database"
	"talenthub/internal/domain/application"
	"talenthub/internal/domain/candidate"
	"talenthub/internal/domain/file"
	"talenthub/internal/domain/job"
	"talenthub/internal/domain/organization"
	"talenthub/internal/repository"

	"github.com/google/uuid"
)

type fakeJobRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]job.Posting
	listCalls int
	lastList  job.ListFilter
	listErr   error
}

func newFakeJobRepo(items ...job.Posting) *fakeJobRepo {
	r := &fakeJobRepo{items: map[uuid.UUID]job.Posting{}}
	for _, p := range items {
		r.items[p.ID] = p
	}
	return r
}

func (r *fakeJobRepo) Create(_ context.Context, p job.Posting) (job.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	r.items[p.ID] = p
	return p, nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id uuid.UUID) (job.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return job.Posting{}, repository.ErrJobNotFound
	}
	return p, nil
}

func (r *fakeJobRepo) Update(_ context.Context, p job.Posting) (job.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return job.Posting{}, repository.ErrJobNotFound
	}
	r.items[p.ID] = p
	return p, nil
}

func (r *fakeJobRepo) SetStatus(_ context.Context, id uuid.UUID, status job.Status, publishedAt *time.Time) (job.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return job.Posting{}, repository.ErrJobNotFound
	}
	p.Status = status
	if publishedAt != nil {
		p.PublishedAt = publishedAt
	}
	r.items[id] = p
	return p, nil
}

func (r *fakeJobRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrJobNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeJobRepo) List(_ context.Context, f job.ListFilter) ([]job.Posting, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	r.lastList = f
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	out := []job.Posting{}
	for _, p := range r.items {
		if len(f.Statuses) > 0 && p.Status != f.Statuses[0] {
			continue
		}
		if f.EmployerID != nil && p.EmployerID != *f.EmployerID {
			continue
		}
		if f.CreatedBy != nil && p.CreatedBy != *f.CreatedBy {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

type fakeOrgRepo struct {
	orgs    map[uuid.UUID]organization.Organization
	clients map[[2]uuid.UUID]bool
}

func newFakeOrgRepo(orgs ...organization.Organization) *fakeOrgRepo {
	r := &fakeOrgRepo{orgs: map[uuid.UUID]organization.Organization{}, clients: map[[2]uuid.UUID]bool{}}
	for _, o := range orgs {
		r.orgs[o.ID] = o
	}
	return r
}

func (r *fakeOrgRepo) GetByID(_ context.Context, id uuid.UUID) (organization.Organization, error) {
	o, ok := r.orgs[id]
	if !ok {
		return organization.Organization{}, repository.ErrOrganizationNotFound
	}
	return o, nil
}

func (r *fakeOrgRepo) GetByOwner(_ context.Context, ownerID uuid.UUID) (organization.Organization, error) {
	for _, o := range r.orgs {
		if o.OwnerUserID != nil && *o.OwnerUserID == ownerID {
			return o, nil
		}
	}
	return organization.Organization{}, repository.ErrOrganizationNotFound
}

func (r *fakeOrgRepo) Create(_ context.Context, o organization.Organization) (organization.Organization, error) {
	o.ID = uuid.New()
	r.orgs[o.ID] = o
	return o, nil
}

func (r *fakeOrgRepo) Update(_ context.Context, o organization.Organization) (organization.Organization, error) {
	if _, ok := r.orgs[o.ID]; !ok {
		return organization.Organization{}, repository.ErrOrganizationNotFound
	}
	r.orgs[o.ID] = o
	return o, nil
}

func (r *fakeOrgRepo) SetVerified(_ context.Context, id uuid.UUID, verified bool) (organization.Organization, error) {
	o, ok := r.orgs[id]
	if !ok {
		return organization.Organization{}, repository.ErrOrganizationNotFound
	}
	o.IsVerified = verified
	r.orgs[id] = o
	return o, nil
}

func (r *fakeOrgRepo) List(_ context.Context, f organization.ListFilter) ([]organization.Organization, int, error) {
	out := []organization.Organization{}
	for _, o := range r.orgs {
		if f.Kind != "" && o.Kind != f.Kind {
			continue
		}
		out = append(out, o)
	}
	return out, len(out), nil
}

func (r *fakeOrgRepo) LinkAgencyClient(_ context.Context, agencyID, employerID uuid.UUID) error {
	k := [2]uuid.UUID{agencyID, employerID}
	if r.clients[k] {
		return repository.ErrAgencyClientExists
	}
	r.clients[k] = true
	return nil
}

func (r *fakeOrgRepo) IsAgencyClient(_ context.Context, agencyID, employerID uuid.UUID) (bool, error) {
	return r.clients[[2]uuid.UUID{agencyID, employerID}], nil
}

func (r *fakeOrgRepo) ListAgencyClients(_ context.Context, agencyID uuid.UUID) ([]organization.Organization, error) {
	out := []organization.Organization{}
	for k := range r.clients {
		if k[0] == agencyID {
			out = append(out, r.orgs[k[1]])
		}
	}
	return out, nil
}

// fakeSkillRepo resolves known names and ids; unknown names are added to the
// catalog like the postgres implementation does.
type fakeSkillRepo struct {
	mu     sync.Mutex
	skills map[uuid.UUID]repository.Skill
}

func newFakeSkillRepo(names ...string) *fakeSkillRepo {
	r := &fakeSkillRepo{skills: map[uuid.UUID]repository.Skill{}}
	for _, n := range names {
		id := uuid.New()
		r.skills[id] = repository.Skill{ID: id, Name: n}
	}
	return r
}

func (r *fakeSkillRepo) byName(name string) (repository.Skill, bool) {
	for _, s := range r.skills {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return repository.Skill{}, false
}

func (r *fakeSkillRepo) SearchSkills(_ context.Context, query string, limit int) ([]repository.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []repository.Skill{}
	for _, s := range r.skills {
		if strings.Contains(strings.ToLower(s.Name), strings.ToLower(query)) && len(out) < limit {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSkillRepo) GetSkillByID(_ context.Context, id uuid.UUID) (repository.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.skills[id]
	if !ok {
		return repository.Skill{}, repository.ErrSkillNotFound
	}
	return s, nil
}

func (r *fakeSkillRepo) CreateSkill(_ context.Context, name string, category *string) (repository.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName(name); ok {
		return repository.Skill{}, repository.ErrSkillExists
	}
	s := repository.Skill{ID: uuid.New(), Name: name, Category: category}
	r.skills[s.ID] = s
	return s, nil
}

func (r *fakeSkillRepo) ResolveSkill(_ context.Context, _ database.Querier, id uuid.UUID, name string) (repository.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != uuid.Nil {
		s, ok := r.skills[id]
		if !ok {
			return repository.Skill{}, repository.ErrSkillNotFound
		}
		return s, nil
	}
	if s, ok := r.byName(name); ok {
		return s, nil
	}
	s := repository.Skill{ID: uuid.New(), Name: strings.TrimSpace(name)}
	r.skills[s.ID] = s
	return s, nil
}

type fakeCache struct {
	mu             sync.Mutex
	data           map[string][]byte
	sets           int
	patternDeletes []string
	// onLockWait runs when a lock is already held; tests use it to fill the
	// cache as if the lock holder had finished.
	onLockWait func(c *fakeCache)
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	c.sets++
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) SetIfNotExists(_ context.Context, key string, value string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	if _, ok := c.data[key]; ok {
		hook := c.onLockWait
		c.mu.Unlock()
		if hook != nil {
			hook(c)
		}
		return false, nil
	}
	c.data[key] = []byte(value)
	c.mu.Unlock()
	return true, nil
}

func (c *fakeCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patternDeletes = append(c.patternDeletes, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type publishedEvent struct {
	Type  string
	JobID uuid.UUID
}

type fakeEvents struct {
	events []publishedEvent
}

func (e *fakeEvents) PublishJobEvent(eventType string, p job.Posting) {
	e.events = append(e.events, publishedEvent{Type: eventType, JobID: p.ID})
}

type fakeFileRepo struct {
	mu        sync.Mutex
	files     map[uuid.UUID]file.File
	createErr error
}

func newFakeFileRepo(files ...file.File) *fakeFileRepo {
	r := &fakeFileRepo{files: map[uuid.UUID]file.File{}}
	for _, f := range files {
		r.files[f.ID] = f
	}
	return r
}

func (r *fakeFileRepo) Create(_ context.Context, f file.File) (file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return file.File{}, r.createErr
	}
	r.files[f.ID] = f
	return f, nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, id uuid.UUID) (file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return file.File{}, repository.ErrFileNotFound
	}
	return f, nil
}

func (r *fakeFileRepo) GetByKey(_ context.Context, key string) (file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.ObjectKey == key {
			return f, nil
		}
	}
	return file.File{}, repository.ErrFileNotFound
}

func (r *fakeFileRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return repository.ErrFileNotFound
	}
	delete(r.files, id)
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	s.types[key] = contentType
	return nil
}

func (s *fakeStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) URL(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

type fakeGenerator struct {
	resp   string
	err    error
	prompt string
}

func (g *fakeGenerator) GenerateJSON(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.resp, g.err
}

type fakeAppRepo struct {
	items map[uuid.UUID]application.Application
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{items: map[uuid.UUID]application.Application{}}
}

func (r *fakeAppRepo) Create(_ context.Context, a application.Application) (application.Application, error) {
	for _, existing := range r.items {
		if existing.JobID == a.JobID && existing.CandidateID == a.CandidateID {
			return application.Application{}, repository.ErrAlreadyApplied
		}
	}
	a.ID = uuid.New()
	r.items[a.ID] = a
	return a, nil
}

func (r *fakeAppRepo) GetByID(_ context.Context, id uuid.UUID) (application.Application, error) {
	a, ok := r.items[id]
	if !ok {
		return application.Application{}, repository.ErrApplicationNotFound
	}
	return a, nil
}

func (r *fakeAppRepo) ListByCandidate(_ context.Context, candidateID uuid.UUID) ([]application.Application, error) {
	out := []application.Application{}
	for _, a := range r.items {
		if a.CandidateID == candidateID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) ListByJob(_ context.Context, jobID uuid.UUID, status application.Status) ([]application.Application, error) {
	out := []application.Application{}
	for _, a := range r.items {
		if a.JobID == jobID && (status == "" || a.Status == status) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) SetStatus(_ context.Context, id uuid.UUID, status application.Status) (application.Application, error) {
	a, ok := r.items[id]
	if !ok {
		return application.Application{}, repository.ErrApplicationNotFound
	}
	a.Status = status
	r.items[id] = a
	return a, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]candidate.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uuid.UUID]candidate.Profile{}}
}

func (r *fakeProfileRepo) GetProfile(_ context.Context, userID uuid.UUID) (candidate.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return candidate.Profile{UserID: userID}, nil
	}
	return p, nil
}

func (r *fakeProfileRepo) UpsertProfile(_ context.Context, _ database.Querier, p candidate.Profile) (candidate.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = p
	return p, nil
}

type fakeSectionRepo[T any] struct {
	mu      sync.Mutex
	items   map[uuid.UUID][]T
	replace error
}

func newFakeSectionRepo[T any]() *fakeSectionRepo[T] {
	return &fakeSectionRepo[T]{items: map[uuid.UUID][]T{}}
}

func (r *fakeSectionRepo[T]) List(_ context.Context, userID uuid.UUID) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T{}, r.items[userID]...), nil
}

func (r *fakeSectionRepo[T]) Create(_ context.Context, userID uuid.UUID, item T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[userID] = append(r.items[userID], item)
	return item, nil
}

func (r *fakeSectionRepo[T]) Update(_ context.Context, _, _ uuid.UUID, item T) (T, error) {
	return item, nil
}

func (r *fakeSectionRepo[T]) Delete(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func (r *fakeSectionRepo[T]) Replace(_ context.Context, _ database.Querier, userID uuid.UUID, items []T) ([]T, error) {
	if r.replace != nil {
		return nil, r.replace
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[userID] = append([]T{}, items...)
	return items, nil
}

type fakeTx struct {
	db *fakeDB
}

func (t fakeTx) Exec(context.Context, string, ...any) (int64, error) { return 0, nil }
func (t fakeTx) Query(context.Context, string, ...any) (database.Rows, error) {
	return nil, errors.New("not supported")
}
func (t fakeTx) QueryRow(context.Context, string, ...any) database.Row { return nil }
func (t fakeTx) Commit(context.Context) error                          { t.db.commits++; return nil }
func (t fakeTx) Rollback(context.Context) error                        { t.db.rollbacks++; return nil }

// fakeDB only tracks transaction outcomes.
type fakeDB struct {
	fakeTx
	commits   int
	rollbacks int
}

func newFakeDB() *fakeDB {
	db := &fakeDB{}
	db.fakeTx = fakeTx{db: db}
	return db
}

func (d *fakeDB) Ping(context.Context) error                 { return nil }
func (d *fakeDB) Close() error                               { return nil }
func (d *fakeDB) Begin(context.Context) (database.Tx, error) { return fakeTx{db: d}, nil }
func (d *fakeDB) SQLDB() *sql.DB                             { return nil }
