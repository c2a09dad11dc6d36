// Package service implements the turn orchestrator: the externally
// visible start/turn/confirm/reset operations over reflection sessions.
package service

import (
	"context"
	"sync"

	"github.com/teaminsight/reflection/domain"
	"github.com/teaminsight/reflection/policy"
	"github.com/teaminsight/reflection/reflection"
	"github.com/teaminsight/reflection/store"
)

// Gateway is the language-model boundary the orchestrator depends on.
type Gateway interface {
	RunController(ctx context.Context, input domain.ControllerInput, fallback domain.ControllerResult) domain.ControllerResult
	RunInterviewer(ctx context.Context, messages []domain.ChatMessage, intent domain.NextIntent) string
	RunFinalSummary(ctx context.Context, answers []domain.Answer, runningSummary string) (string, error)
	RunEvaluation(ctx context.Context, summary string, answers []domain.Answer, policy domain.PolicyPayload) domain.Evaluation
}

// Service glues the store, policy resolver, conversation controller and
// model gateway into the reflection operations.
type Service struct {
	store      store.Store
	gw         Gateway
	resolver   *policy.Resolver
	controller *reflection.Controller

	// Operations for one team are serialized; the uniqueness invariant
	// relies on query-then-act.
	mu        sync.Mutex
	teamLocks map[string]*sync.Mutex
}

// New creates a service with the given collaborators.
func New(st store.Store, gw Gateway, resolver *policy.Resolver, maxTurns int) *Service {
	return &Service{
		store:      st,
		gw:         gw,
		resolver:   resolver,
		controller: reflection.NewController(gw, maxTurns),
		teamLocks:  make(map[string]*sync.Mutex),
	}
}

// lockTeam acquires the per-team mutex and returns its unlock func.
func (s *Service) lockTeam(teamID string) func() {
	s.mu.Lock()
	l, ok := s.teamLocks[teamID]
	if !ok {
		l = &sync.Mutex{}
		s.teamLocks[teamID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
