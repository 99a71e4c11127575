package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"talenthub/internal/search"
)

const (
	jobsSearchPrefix = "jobs:search:"
	jobsLockPrefix   = "jobs:lock:"
	jobsCachePattern = "jobs:search:*"
)

type SearchCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	DeleteByPattern(ctx context.Context, pattern string) error
}

type jobSearchCacheKeyInput struct {
	Query          string   `json:"q"`
	Location       string   `json:"location"`
	EmploymentType string   `json:"employment_type"`
	WorkMode       string   `json:"work_mode"`
	Skills         []string `json:"skills"`
	EmployerID     string   `json:"employer_id"`
	Limit          int      `json:"limit"`
	Offset         int      `json:"offset"`
}

func normalizeSearchValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// JobsSearchCacheKey hashes the normalized listing parameters, so equivalent
// queries share one cache entry.
func JobsSearchCacheKey(params JobListParams) string {
	skills := make([]string, 0, len(params.Skills))
	for _, s := range params.Skills {
		s = normalizeSearchValue(s)
		if s == "" {
			continue
		}
		skills = append(skills, s)
	}
	sort.Strings(skills)

	in := jobSearchCacheKeyInput{
		Query:          search.NormalizeQuery(params.Query),
		Location:       normalizeSearchValue(params.Location),
		EmploymentType: normalizeSearchValue(params.EmploymentType),
		WorkMode:       normalizeSearchValue(params.WorkMode),
		Skills:         skills,
		Limit:          params.Limit,
		Offset:         params.Offset,
	}
	if params.EmployerID != nil {
		in.EmployerID = params.EmployerID.String()
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return jobsSearchPrefix + hex.EncodeToString(sum[:])
}

func JobsSearchLockKey(searchKey string) string {
	searchKey = strings.TrimSpace(searchKey)
	if strings.HasPrefix(searchKey, jobsSearchPrefix) {
		return jobsLockPrefix + strings.TrimPrefix(searchKey, jobsSearchPrefix)
	}
	return jobsLockPrefix + searchKey
}
