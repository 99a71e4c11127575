package application

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusReviewing   Status = "reviewing"
	StatusShortlisted Status = "shortlisted"
	StatusRejected    Status = "rejected"
	StatusHired       Status = "hired"
	StatusWithdrawn   Status = "withdrawn"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusReviewing, StatusShortlisted, StatusRejected, StatusHired, StatusWithdrawn:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusSubmitted:   {StatusReviewing, StatusRejected, StatusWithdrawn},
	StatusReviewing:   {StatusShortlisted, StatusRejected, StatusWithdrawn},
	StatusShortlisted: {StatusHired, StatusRejected, StatusWithdrawn},
}

func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Application struct {
	ID            uuid.UUID `json:"id"`
	JobID         uuid.UUID `json:"job_id"`
	JobTitle      string    `json:"job_title"`
	CandidateID   uuid.UUID `json:"candidate_id"`
	CandidateName string    `json:"candidate_name"`
	Status        Status    `json:"status"`
	CoverLetter   *string   `json:"cover_letter"`
	CVFileKey     *string   `json:"cv_file_key"`
	MatchScore    *int      `json:"match_score"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
