// Package report implements the read-only management surface: a
// consistency sweep over the whole user population looking for group
// memberships that disagree with professions. It mutates nothing.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/internal/repository"
)

type Service struct {
	users  repository.UserRepository
	logger *zerolog.Logger
}

func NewService(users repository.UserRepository, logger *zerolog.Logger) *Service {
	return &Service{
		users:  users,
		logger: logger,
	}
}

// Consistency lists every user whose role context is internally
// inconsistent: missing the group their profession implies, carrying a
// profession group that is not theirs, holding management membership
// while deactivated, or having no recognizable profession at all.
func (s *Service) Consistency(ctx context.Context) (*model.ConsistencyReport, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load user population: %w", err)
	}

	report := &model.ConsistencyReport{
		GeneratedAt: time.Now().UTC(),
		UsersTotal:  len(users),
	}

	for _, user := range users {
		report.Issues = append(report.Issues, s.inspect(user)...)
	}

	s.logger.Info().Int("users", report.UsersTotal).Int("issues", len(report.Issues)).
		Msg("consistency report generated")
	return report, nil
}

func (s *Service) inspect(user *model.User) []model.ConsistencyIssue {
	var issues []model.ConsistencyIssue

	issue := func(kind model.ConsistencyIssueKind, group, detail string) model.ConsistencyIssue {
		return model.ConsistencyIssue{
			UserID:     user.ID,
			Email:      user.Email,
			Profession: user.Profession.String(),
			Group:      group,
			Kind:       kind,
			Detail:     detail,
		}
	}

	expected := model.ExpectedGroup(user.Profession)
	if expected == "" {
		issues = append(issues, issue(model.IssueUnknownProfession, "",
			"profession does not map to any group"))
		return issues
	}

	if user.IsActive && !user.InGroup(expected) {
		issues = append(issues, issue(model.IssueMissingProfessionGroup, expected,
			fmt.Sprintf("active %s missing group %q", user.Profession, expected)))
	}

	for _, group := range model.ProfessionGroups() {
		if group != expected && user.InGroup(group) {
			issues = append(issues, issue(model.IssueForeignProfessionGroup, group,
				fmt.Sprintf("%s holds foreign profession group %q", user.Profession, group)))
		}
	}

	if !user.IsActive && user.InGroup(model.GroupPatientManagers) {
		issues = append(issues, issue(model.IssueInactiveManager, model.GroupPatientManagers,
			"deactivated account retains management membership"))
	}

	return issues
}
